package railfence

import (
	"math"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/railfence/pkg/errors"
)

func TestAssign(t *testing.T) {
	tests := []struct {
		name  string
		n     int
		rails int
		want  Pattern
	}{
		{"empty", 0, 3, Pattern{}},
		{"single", 1, 5, Pattern{0}},
		{"two rails alternate", 6, 2, Pattern{0, 1, 0, 1, 0, 1}},
		{"three rails bounce", 9, 3, Pattern{0, 1, 2, 1, 0, 1, 2, 1, 0}},
		{"four rails", 10, 4, Pattern{0, 1, 2, 3, 2, 1, 0, 1, 2, 3}},
		{"rails equal length", 4, 4, Pattern{0, 1, 2, 3}},
		{"rails exceed length", 3, 10, Pattern{0, 1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Assign(tt.n, tt.rails)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAssignInvalidRails(t *testing.T) {
	for _, r := range []int{-3, 0, 1} {
		_, err := Assign(5, r)
		require.Error(t, err, "rails=%d", r)
		assert.True(t, errors.Is(err, errors.ErrCodeInvalidRails), "rails=%d: got %v", r, err)
	}
}

func TestAssignNegativeLength(t *testing.T) {
	_, err := Assign(-1, 3)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
}

func TestPatternCounts(t *testing.T) {
	p, err := Assign(25, 3)
	require.NoError(t, err)
	assert.Equal(t, []int{7, 12, 6}, p.Counts(3))
	assert.Equal(t, []int{0, 7, 19}, p.Offsets(3))

	short, err := Assign(2, 5)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 1}, short.Counts(5))
	assert.Equal(t, []int{0, 1}, short.Offsets(5))

	empty, err := Assign(0, 3)
	require.NoError(t, err)
	assert.Empty(t, empty.Counts(3))
}

func TestHugeRailCountIsIdentity(t *testing.T) {
	tests := []struct {
		name  string
		rails int
	}{
		{"max int", math.MaxInt},
		{"2^60", 1 << 60},
		{"1e9", 1_000_000_000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc, err := EncodeString("AB", tt.rails)
			require.NoError(t, err)
			assert.Equal(t, "AB", enc)

			dec, err := DecodeString("AB", tt.rails)
			require.NoError(t, err)
			assert.Equal(t, "AB", dec)

			g, err := RenderString("AB", tt.rails)
			require.NoError(t, err)
			assert.Equal(t, tt.rails, g.Rails())
			assert.Equal(t, Pattern{0, 1}, g.Pattern())
		})
	}
}

func TestEncodeKnownVectors(t *testing.T) {
	tests := []struct {
		plain  string
		rails  int
		cipher string
	}{
		{"WEAREDISCOVEREDFLEEATONCE", 3, "WECRLTEERDSOEEFEAOCAIVDEN"},
		{"HELLO", 2, "HLOEL"},
		{"WEAREDISCOVERED", 3, "WECRERDSOEEAIVD"},
		{"", 3, ""},
		{"X", 2, "X"},
		{"ABC", 3, "ABC"},
		{"ABC", 7, "ABC"},
		{"héllo wörld", 3, "horél öllwd"},
	}

	for _, tt := range tests {
		t.Run(tt.plain, func(t *testing.T) {
			got, err := EncodeString(tt.plain, tt.rails)
			require.NoError(t, err)
			assert.Equal(t, tt.cipher, got)

			back, err := DecodeString(tt.cipher, tt.rails)
			require.NoError(t, err)
			assert.Equal(t, tt.plain, back)
		})
	}
}

func TestEncodeBytesDegenerate(t *testing.T) {
	in := []byte{10, 20, 30, 40}

	enc, err := EncodeBytes(in, 4)
	require.NoError(t, err)
	assert.Equal(t, []byte{10, 20, 30, 40}, enc)

	dec, err := DecodeBytes(in, 4)
	require.NoError(t, err)
	assert.Equal(t, []byte{10, 20, 30, 40}, dec)
}

func TestEncodeDoesNotMutateInput(t *testing.T) {
	in := []int{1, 2, 3, 4, 5, 6, 7}
	orig := slices.Clone(in)

	_, err := Encode(in, 3)
	require.NoError(t, err)
	_, err = Decode(in, 3)
	require.NoError(t, err)
	assert.Equal(t, orig, in)
}

func TestInvalidRails(t *testing.T) {
	_, err := EncodeString("HELLO", 1)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidRails))

	_, err = DecodeString("HELLO", 0)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidRails))

	_, err = Render([]byte{1, 2}, -2)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidRails))
}

func TestEmptyInput(t *testing.T) {
	for _, r := range []int{2, 3, 50} {
		enc, err := Encode([]byte{}, r)
		require.NoError(t, err)
		assert.Empty(t, enc)

		dec, err := Decode([]byte(nil), r)
		require.NoError(t, err)
		assert.Empty(t, dec)
	}
}

// TestProperties checks round-trip, length, permutation and the degenerate
// identity over random inputs.
func TestProperties(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))

	for iter := 0; iter < 500; iter++ {
		n := rng.IntN(200)
		rails := 2 + rng.IntN(20)
		seq := make([]byte, n)
		for i := range seq {
			seq[i] = byte(rng.IntN(256))
		}

		enc, err := Encode(seq, rails)
		require.NoError(t, err)
		require.Len(t, enc, n)

		dec, err := Decode(enc, rails)
		require.NoError(t, err)
		require.Equal(t, seq, dec, "decode(encode) n=%d rails=%d", n, rails)

		inv, err := Decode(seq, rails)
		require.NoError(t, err)
		require.Len(t, inv, n)
		again, err := Encode(inv, rails)
		require.NoError(t, err)
		require.Equal(t, seq, again, "encode(decode) n=%d rails=%d", n, rails)

		sortedIn, sortedOut := slices.Clone(seq), slices.Clone(enc)
		slices.Sort(sortedIn)
		slices.Sort(sortedOut)
		require.Equal(t, sortedIn, sortedOut, "multiset n=%d rails=%d", n, rails)

		if n >= 1 && rails >= n {
			require.Equal(t, seq, enc, "identity n=%d rails=%d", n, rails)
		}
	}
}

func TestMismatchedRailsIsNotAnError(t *testing.T) {
	enc, err := EncodeString("WEAREDISCOVEREDFLEEATONCE", 3)
	require.NoError(t, err)

	dec, err := DecodeString(enc, 4)
	require.NoError(t, err)
	assert.Len(t, []rune(dec), 25)
	assert.NotEqual(t, "WEAREDISCOVEREDFLEEATONCE", dec)
}

func TestRender(t *testing.T) {
	g, err := RenderString("HELLO", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, g.Rails())
	assert.Equal(t, 5, g.Width())

	sym, ok := g.At(0, 0)
	assert.True(t, ok)
	assert.Equal(t, 'H', sym)

	_, ok = g.At(1, 0)
	assert.False(t, ok)

	sym, ok = g.At(1, 3)
	assert.True(t, ok)
	assert.Equal(t, 'L', sym)

	_, ok = g.At(5, 0)
	assert.False(t, ok, "out of range rail")
	_, ok = g.At(0, 99)
	assert.False(t, ok, "out of range index")

	row := g.Row(0)
	require.Len(t, row, 5)
	var top []rune
	for _, c := range row {
		if c.Occupied {
			top = append(top, c.Symbol)
		}
	}
	assert.Equal(t, "HLO", string(top))
}

func TestRenderEmpty(t *testing.T) {
	g, err := Render([]rune{}, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, g.Rails())
	assert.Equal(t, 0, g.Width())
	rows := g.Rows()
	require.Len(t, rows, 4)
	for _, r := range rows {
		assert.Empty(t, r)
	}
}

// TestRenderMatchesCipher reads the rendered grid rail by rail and checks
// that it reproduces Encode, and that the occupied cells are exactly the
// pattern used by the cipher.
func TestRenderMatchesCipher(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))

	for iter := 0; iter < 100; iter++ {
		n := rng.IntN(60)
		rails := 2 + rng.IntN(8)
		seq := make([]int, n)
		for i := range seq {
			seq[i] = rng.IntN(1000)
		}

		g, err := Render(seq, rails)
		require.NoError(t, err)

		p, err := Assign(n, rails)
		require.NoError(t, err)
		require.Equal(t, p, g.Pattern())

		occupied := g.Occupied()
		require.Len(t, occupied, n)
		for j, pos := range occupied {
			require.Equal(t, Position{Rail: p[j], Index: j}, pos)
		}

		var readOut []int
		for _, row := range g.Rows() {
			for _, c := range row {
				if c.Occupied {
					readOut = append(readOut, c.Symbol)
				}
			}
		}
		enc, err := Encode(seq, rails)
		require.NoError(t, err)
		if n == 0 {
			require.Empty(t, readOut)
			continue
		}
		require.Equal(t, enc, readOut)
	}
}

func TestRenderCopiesInput(t *testing.T) {
	seq := []rune("ABCD")
	g, err := Render(seq, 2)
	require.NoError(t, err)

	seq[0] = 'Z'
	sym, ok := g.At(0, 0)
	require.True(t, ok)
	assert.Equal(t, 'A', sym)

	p := g.Pattern()
	p[0] = 1
	assert.Equal(t, Pattern{0, 1, 0, 1}, g.Pattern())
}

package pipeline

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/railfence/pkg/cache"
	"github.com/matzehuels/railfence/pkg/errors"
	"github.com/matzehuels/railfence/pkg/imaging"
	"github.com/matzehuels/railfence/pkg/render"
)

// memCache is an in-memory cache.Cache for tests.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	sets int
}

func newMemCache() *memCache { return &memCache{data: make(map[string][]byte)} }

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.data[key]
	return d, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, data []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
	c.sets++
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *memCache) Close() error { return nil }

var _ cache.Cache = (*memCache)(nil)

func TestNewRunnerDefaults(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	if r.Cache == nil || r.Keyer == nil || r.Logger == nil {
		t.Fatal("NewRunner should fill nil dependencies")
	}
	if err := r.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestExecuteText(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	ctx := context.Background()

	tests := []struct {
		op, in, want string
		rails        int
	}{
		{OpEncode, "WEAREDISCOVEREDFLEEATONCE", "WECRLTEERDSOEEFEAOCAIVDEN", 3},
		{OpDecode, "WECRLTEERDSOEEFEAOCAIVDEN", "WEAREDISCOVEREDFLEEATONCE", 3},
		{OpEncode, "HELLO", "HLOEL", 2},
		{OpEncode, "", "", 5},
		{OpDecode, "abc", "abc", 10},
	}

	for _, tt := range tests {
		res, err := r.Execute(ctx, Options{Operation: tt.op, Rails: tt.rails, Text: tt.in})
		if err != nil {
			t.Fatalf("%s(%q, %d): %v", tt.op, tt.in, tt.rails, err)
		}
		if res.Text != tt.want {
			t.Errorf("%s(%q, %d) = %q, want %q", tt.op, tt.in, tt.rails, res.Text, tt.want)
		}
		if res.Length != len([]rune(tt.in)) {
			t.Errorf("Length = %d, want %d", res.Length, len([]rune(tt.in)))
		}
		if res.Rails != tt.rails || res.Operation != tt.op || res.Mode != ModeText {
			t.Errorf("result metadata = %s/%s/%d", res.Mode, res.Operation, res.Rails)
		}
		if res.Grid != nil {
			t.Error("Grid should be nil without Visualize")
		}
	}
}

func TestExecuteInvalidRails(t *testing.T) {
	c := newMemCache()
	r := NewRunner(c, nil, nil)

	_, err := r.Execute(context.Background(), Options{Operation: OpEncode, Rails: 1, Text: "abc"})
	if !errors.Is(err, errors.ErrCodeInvalidRails) {
		t.Fatalf("error = %v, want INVALID_RAILS", err)
	}
	if c.sets != 0 {
		t.Errorf("nothing should be cached on error, got %d sets", c.sets)
	}
}

func TestExecuteCaching(t *testing.T) {
	c := newMemCache()
	r := NewRunner(c, nil, nil)
	ctx := context.Background()
	opts := Options{Operation: OpEncode, Rails: 3, Text: "WEAREDISCOVERED"}

	first, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheHit {
		t.Error("first call should miss")
	}

	second, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheHit {
		t.Error("second call should hit")
	}
	if second.Text != first.Text || second.Length != first.Length {
		t.Errorf("cached result = %+v, want %+v", second, first)
	}

	opts.Refresh = true
	third, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if third.CacheHit {
		t.Error("refresh should bypass the cache")
	}
	if c.sets != 2 {
		t.Errorf("sets = %d, want 2", c.sets)
	}
}

func TestExecuteCorruptCacheEntry(t *testing.T) {
	c := newMemCache()
	r := NewRunner(c, nil, nil)
	opts := Options{Operation: OpEncode, Rails: 2, Text: "HELLO"}
	_ = c.Set(context.Background(), r.Keyer.ResultKey(opts.ResultKeyOpts()), []byte("not json"), 0)

	res, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if res.CacheHit || res.Text != "HLOEL" {
		t.Errorf("result = %+v, want fresh HLOEL", res)
	}
}

func TestExecuteVisualizePlaintextSide(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	ctx := context.Background()

	enc, err := r.Execute(ctx, Options{Operation: OpEncode, Rails: 2, Text: "HELLO", Visualize: true})
	if err != nil {
		t.Fatal(err)
	}
	dec, err := r.Execute(ctx, Options{Operation: OpDecode, Rails: 2, Text: "HLOEL", Visualize: true})
	if err != nil {
		t.Fatal(err)
	}

	for _, res := range []*Result{enc, dec} {
		if res.Grid == nil {
			t.Fatal("Grid should be set with Visualize")
		}
		got := render.Text(*res.Grid, render.TextOptions{Placeholder: "."})
		if got != "H.L.O\n.E.L.\n" {
			t.Errorf("%s grid = %q", res.Operation, got)
		}
	}
}

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 3; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(10 * x), G: uint8(40 * y), B: uint8(x + y), A: uint8(100 + 50*x)})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestExecuteImageRoundTrip(t *testing.T) {
	r := NewRunner(newMemCache(), nil, nil)
	ctx := context.Background()
	src := testPNG(t)

	enc, err := r.Execute(ctx, Options{Mode: ModeImage, Operation: OpEncode, Rails: 3, Image: src})
	if err != nil {
		t.Fatal(err)
	}
	if enc.Width != 3 || enc.Height != 2 || enc.Channels != 4 {
		t.Errorf("shape = %dx%dx%d, want 3x2x4", enc.Width, enc.Height, enc.Channels)
	}
	if enc.Pixels != 24 {
		t.Errorf("Pixels = %d, want 24", enc.Pixels)
	}

	dec, err := r.Execute(ctx, Options{Mode: ModeImage, Operation: OpDecode, Rails: 3, Image: enc.Image})
	if err != nil {
		t.Fatal(err)
	}

	want, _, err := imaging.DecodeBytes(src)
	if err != nil {
		t.Fatal(err)
	}
	got, _, err := imaging.DecodeBytes(dec.Image)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got.Pix, want.Pix) {
		t.Errorf("round trip pixels = %v, want %v", got.Pix, want.Pix)
	}

	again, err := r.Execute(ctx, Options{Mode: ModeImage, Operation: OpEncode, Rails: 3, Image: src})
	if err != nil {
		t.Fatal(err)
	}
	if !again.CacheHit || !bytes.Equal(again.Image, enc.Image) {
		t.Error("repeated image encode should come from the cache")
	}
}

func TestExecuteImageInvalid(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	_, err := r.Execute(context.Background(), Options{Mode: ModeImage, Operation: OpEncode, Rails: 3, Image: []byte("not an image")})
	if !errors.Is(err, errors.ErrCodeInvalidImage) {
		t.Errorf("error = %v, want INVALID_IMAGE", err)
	}
}

func TestVisualize(t *testing.T) {
	c := newMemCache()
	r := NewRunner(c, nil, nil)
	ctx := context.Background()

	out, hit, err := r.Visualize(ctx, "HELLO", 2, render.FormatText)
	if err != nil {
		t.Fatal(err)
	}
	if hit {
		t.Error("first render should miss")
	}
	if string(out) != "Rail 1: H·L·O\nRail 2: ·E·L·\n" {
		t.Errorf("Visualize = %q", out)
	}

	again, hit, err := r.Visualize(ctx, "HELLO", 2, render.FormatText)
	if err != nil {
		t.Fatal(err)
	}
	if !hit || !bytes.Equal(again, out) {
		t.Error("second render should come from the cache")
	}

	if _, _, err := r.Visualize(ctx, "HELLO", 2, "gif"); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("bad format error = %v", err)
	}
	if _, _, err := r.Visualize(ctx, "HELLO", 0, render.FormatText); !errors.Is(err, errors.ErrCodeInvalidRails) {
		t.Errorf("bad rails error = %v", err)
	}
}

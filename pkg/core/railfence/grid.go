package railfence

// Position is an occupied cell of a [Grid].
type Position struct {
	Rail  int `json:"rail"`
	Index int `json:"index"`
}

// Grid is the rails x n layout of a sequence on the fence.
// Column j holds exactly one symbol, on rail pattern[j]; every other cell in
// the column is empty. A Grid is immutable once built.
type Grid[S any] struct {
	rails   int
	symbols []S
	pattern Pattern
}

// Render lays seq out on rails rails. It uses the same [Assign] rule as
// [Encode] and [Decode]. An empty seq yields a grid with no columns.
func Render[S any](seq []S, rails int) (Grid[S], error) {
	p, err := Assign(len(seq), rails)
	if err != nil {
		return Grid[S]{}, err
	}
	symbols := make([]S, len(seq))
	copy(symbols, seq)
	return Grid[S]{rails: rails, symbols: symbols, pattern: p}, nil
}

// RenderString lays out the code points of s.
func RenderString(s string, rails int) (Grid[rune], error) {
	return Render([]rune(s), rails)
}

// Rails returns the number of rows.
func (g Grid[S]) Rails() int { return g.rails }

// Width returns the number of columns, the length of the rendered sequence.
func (g Grid[S]) Width() int { return len(g.symbols) }

// At returns the symbol at (rail, index) and whether the cell is occupied.
// Out-of-range coordinates report an empty cell.
func (g Grid[S]) At(rail, index int) (S, bool) {
	var zero S
	if index < 0 || index >= len(g.symbols) || rail < 0 || rail >= g.rails {
		return zero, false
	}
	if g.pattern[index] != rail {
		return zero, false
	}
	return g.symbols[index], true
}

// Row returns one rail as a slice of cells, one per column.
func (g Grid[S]) Row(rail int) []Cell[S] {
	row := make([]Cell[S], len(g.symbols))
	for j := range row {
		row[j].Symbol, row[j].Occupied = g.At(rail, j)
	}
	return row
}

// Rows returns every rail in order.
func (g Grid[S]) Rows() [][]Cell[S] {
	rows := make([][]Cell[S], g.rails)
	for i := range rows {
		rows[i] = g.Row(i)
	}
	return rows
}

// Occupied returns the (rail, index) of every symbol in index order.
func (g Grid[S]) Occupied() []Position {
	out := make([]Position, len(g.pattern))
	for j, k := range g.pattern {
		out[j] = Position{Rail: k, Index: j}
	}
	return out
}

// Pattern returns a copy of the rail assignment behind the grid.
func (g Grid[S]) Pattern() Pattern {
	p := make(Pattern, len(g.pattern))
	copy(p, g.pattern)
	return p
}

// Cell is one grid cell.
type Cell[S any] struct {
	Symbol   S
	Occupied bool
}

// Package render turns a rail-fence grid into displayable output.
//
// # Overview
//
// Every renderer consumes a [railfence.Grid] of runes, so what is drawn is
// exactly the pattern the cipher uses. Supported formats:
//
//   - text: one line per rail with a placeholder glyph in empty cells
//   - html: the rail-row markup used by the web front end
//   - json: rails, width, pattern and a row-major cell matrix
//   - dot:  a Graphviz graph of the zig-zag path
//   - svg, png: the DOT graph laid out by Graphviz
//   - pdf: the SVG converted with rsvg-convert
//
// # Usage
//
//	g, _ := railfence.RenderString("WEAREDISCOVERED", 3)
//	fmt.Print(render.Text(g, render.TextOptions{Labels: true}))
//
//	svg, err := render.Render(ctx, g, render.FormatSVG)
//
// Control characters are drawn with their Unicode control-picture glyphs
// (for example a newline becomes "␊") so every column stays one cell wide.
//
// [railfence.Grid]: https://pkg.go.dev/github.com/matzehuels/railfence/pkg/core/railfence#Grid
package render

package render

import (
	"html"
	"strings"

	"github.com/matzehuels/railfence/pkg/core/railfence"
)

// HTML renders the fence as rail-row markup. Occupied cells become
// rail-char spans and empty cells rail-space spans holding the placeholder.
// Symbols are HTML-escaped.
func HTML(g railfence.Grid[rune]) string {
	var b strings.Builder
	for i := 0; i < g.Rails(); i++ {
		b.WriteString(`<div class="rail-row">`)
		b.WriteString(RailLabel(i))
		for _, c := range g.Row(i) {
			if !c.Occupied {
				b.WriteString(`<span class="rail-space">` + DefaultPlaceholder + `</span>`)
				continue
			}
			b.WriteString(`<span class="rail-char">`)
			b.WriteString(html.EscapeString(Glyph(c.Symbol)))
			b.WriteString(`</span>`)
		}
		b.WriteString(`</div>`)
	}
	return b.String()
}

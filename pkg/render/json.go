package render

import (
	"encoding/json"

	"github.com/matzehuels/railfence/pkg/core/railfence"
)

// jsonGrid is the JSON document written by [JSON].
type jsonGrid struct {
	Rails   int         `json:"rails"`
	Width   int         `json:"width"`
	Pattern []int       `json:"pattern"`
	Rows    [][]*string `json:"rows"`
}

// JSON renders the fence as a row-major matrix. Empty cells are null.
func JSON(g railfence.Grid[rune]) ([]byte, error) {
	doc := jsonGrid{
		Rails:   g.Rails(),
		Width:   g.Width(),
		Pattern: g.Pattern(),
		Rows:    make([][]*string, g.Rails()),
	}
	for i := range doc.Rows {
		row := make([]*string, g.Width())
		for j, c := range g.Row(i) {
			if c.Occupied {
				s := string(c.Symbol)
				row[j] = &s
			}
		}
		doc.Rows[i] = row
	}
	return json.MarshalIndent(doc, "", "  ")
}

package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/railfence/pkg/core/railfence"
	"github.com/matzehuels/railfence/pkg/errors"
)

// MaxGraphCells caps rails x width for Graphviz layout.
const MaxGraphCells = 20000

// DOT converts a fence to Graphviz DOT format.
//
// Columns are laid out left to right as ranks and each rail is a row held
// straight by invisible edges. Occupied cells are boxed and joined in
// position order, tracing the zig-zag; empty cells show the placeholder.
func DOT(g railfence.Grid[rune]) string {
	var buf bytes.Buffer
	buf.WriteString("digraph fence {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  nodesep=0.15;\n")
	buf.WriteString("  ranksep=0.25;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontname=\"monospace\", fontsize=18, width=0.4, height=0.4, fixedsize=true];\n")
	buf.WriteString("  edge [arrowhead=none];\n")
	buf.WriteString("\n")

	rails, width := g.Rails(), g.Width()
	for j := 0; j < width; j++ {
		buf.WriteString("  { rank=same;")
		for k := 0; k < rails; k++ {
			fmt.Fprintf(&buf, " %s;", nodeID(k, j))
		}
		buf.WriteString(" }\n")
	}

	buf.WriteString("\n")
	for k := 0; k < rails; k++ {
		fmt.Fprintf(&buf, "  %s [shape=plaintext, style=\"\", label=%q, fontcolor=grey40];\n", labelID(k), RailLabel(k))
		for j, c := range g.Row(k) {
			if c.Occupied {
				fmt.Fprintf(&buf, "  %s [label=%q];\n", nodeID(k, j), Glyph(c.Symbol))
			} else {
				fmt.Fprintf(&buf, "  %s [shape=plaintext, style=\"\", label=%q, fontcolor=grey70];\n", nodeID(k, j), DefaultPlaceholder)
			}
		}
	}

	buf.WriteString("\n")
	for k := 0; k < rails; k++ {
		prev := labelID(k)
		for j := 0; j < width; j++ {
			fmt.Fprintf(&buf, "  %s -> %s [style=invis, weight=100];\n", prev, nodeID(k, j))
			prev = nodeID(k, j)
		}
	}

	buf.WriteString("\n")
	p := g.Pattern()
	for j := 1; j < len(p); j++ {
		fmt.Fprintf(&buf, "  %s -> %s [constraint=false, color=\"#4f46e5\", penwidth=2];\n",
			nodeID(p[j-1], j-1), nodeID(p[j], j))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeID(rail, index int) string {
	return "r" + strconv.Itoa(rail) + "c" + strconv.Itoa(index)
}

func labelID(rail int) string {
	return "rail" + strconv.Itoa(rail)
}

// CheckGraphSize reports whether g is small enough for Graphviz layout.
func CheckGraphSize(g railfence.Grid[rune]) error {
	return checkCells(g, MaxGraphCells)
}

// SVG lays out a DOT graph with Graphviz and returns SVG bytes.
func SVG(ctx context.Context, dot string) ([]byte, error) {
	out, err := layout(ctx, dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(out), nil
}

// PNG lays out a DOT graph with Graphviz and returns PNG bytes.
func PNG(ctx context.Context, dot string) ([]byte, error) {
	return layout(ctx, dot, graphviz.PNG)
}

func layout(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render %s", format)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces the Graphviz root tag so the drawing scales
// from its viewBox.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}

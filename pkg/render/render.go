package render

import (
	"context"
	"strconv"
	"strings"

	"github.com/matzehuels/railfence/pkg/core/railfence"
	"github.com/matzehuels/railfence/pkg/errors"
)

// Format constants for visualization output.
const (
	FormatText = "text"
	FormatHTML = "html"
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
)

// MaxCells caps rails x (width+1), the label column included, for every
// format. Text, HTML and JSON output grow with every cell, empty or not.
const MaxCells = 1 << 20

// DefaultPlaceholder marks an empty cell.
const DefaultPlaceholder = "·"

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatText: true,
	FormatHTML: true,
	FormatJSON: true,
	FormatDOT:  true,
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
}

// ValidateFormat checks that a format is supported.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: text, html, json, dot, svg, png, pdf)", format)
	}
	return nil
}

// IsBinary reports whether a format produces non-text output.
func IsBinary(format string) bool {
	return format == FormatPNG || format == FormatPDF
}

// Render produces g in the given format.
func Render(ctx context.Context, g railfence.Grid[rune], format string) ([]byte, error) {
	if err := ValidateFormat(format); err != nil {
		return nil, err
	}
	if err := CheckSize(g); err != nil {
		return nil, err
	}
	if format == FormatSVG || format == FormatPNG || format == FormatPDF {
		if err := CheckGraphSize(g); err != nil {
			return nil, err
		}
	}

	switch format {
	case FormatText:
		return []byte(Text(g, TextOptions{Labels: true})), nil
	case FormatHTML:
		return []byte(HTML(g)), nil
	case FormatJSON:
		return JSON(g)
	case FormatDOT:
		return []byte(DOT(g)), nil
	case FormatSVG:
		return SVG(ctx, DOT(g))
	case FormatPNG:
		return PNG(ctx, DOT(g))
	default:
		svg, err := SVG(ctx, DOT(g))
		if err != nil {
			return nil, err
		}
		return ToPDF(ctx, svg)
	}
}

// CheckSize reports whether g fits in [MaxCells].
func CheckSize(g railfence.Grid[rune]) error {
	return checkCells(g, MaxCells)
}

// checkCells fails with PAYLOAD_TOO_LARGE when rails x (width+1) exceeds
// limit. The product is never formed, so huge rail counts cannot overflow it.
func checkCells(g railfence.Grid[rune], limit int) error {
	if g.Rails() > limit/(g.Width()+1) {
		return errors.New(errors.ErrCodePayloadTooLarge,
			"fence too large to draw: %d rails x %d columns (max %d cells)", g.Rails(), g.Width(), limit)
	}
	return nil
}

// Glyph returns the display form of a symbol. Control characters map to
// their control-picture glyphs so they occupy a visible cell.
func Glyph(r rune) string {
	switch {
	case r < 0x20:
		return string(rune(0x2400 + r))
	case r == 0x7f:
		return "␡"
	default:
		return string(r)
	}
}

// TextOptions configures [Text].
type TextOptions struct {
	// Placeholder is drawn in empty cells. Defaults to DefaultPlaceholder.
	Placeholder string

	// Labels prefixes each line with "Rail i: " (1-based).
	Labels bool

	// Gap is written between columns.
	Gap string
}

// Text renders one line per rail.
func Text(g railfence.Grid[rune], opts TextOptions) string {
	if opts.Placeholder == "" {
		opts.Placeholder = DefaultPlaceholder
	}

	var b strings.Builder
	for i := 0; i < g.Rails(); i++ {
		if opts.Labels {
			b.WriteString(RailLabel(i))
		}
		for j, c := range g.Row(i) {
			if j > 0 {
				b.WriteString(opts.Gap)
			}
			if c.Occupied {
				b.WriteString(Glyph(c.Symbol))
			} else {
				b.WriteString(opts.Placeholder)
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// RailLabel returns the 1-based label written before rail i.
func RailLabel(i int) string {
	return "Rail " + strconv.Itoa(i+1) + ": "
}

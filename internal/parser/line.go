package parser

import "fmt"

// FontWeight is the dominant weight of the glyphs on a line.
type FontWeight int

const (
	WeightNormal FontWeight = iota
	WeightBold
)

func (w FontWeight) String() string {
	if w == WeightBold {
		return "bold"
	}
	return "normal"
}

// LineItem is one visual line of text on a page.
type LineItem struct {
	Text       string     // Assembled, normalized line text
	Page       int        // 1-based page number
	X          float64    // Left edge of the first glyph, in points
	Y          float64    // Baseline, in points measured down from the top of the page
	FontSize   float64    // Largest glyph size on the line
	FontWeight FontWeight // Bold when most glyphs come from a bold face
	Font       string     // Base font name of the first glyph
}

func (l LineItem) String() string {
	return fmt.Sprintf("p%d (%.1f,%.1f) %.1fpt %s %q", l.Page, l.X, l.Y, l.FontSize, l.FontWeight, l.Text)
}

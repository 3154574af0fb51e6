package parser

import (
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// glyph is a positioned run of text as reported by the PDF content stream.
type glyph struct {
	Text string
	X    float64
	Y    float64 // top-down
	W    float64
	Size float64
	Font string
}

const (
	// bandTolerance is the vertical distance, as a fraction of font size,
	// within which glyphs belong to the same line.
	bandTolerance = 0.4
	// spaceGap is the horizontal gap, as a fraction of font size, that
	// separates two words when the PDF carries no explicit space glyph.
	spaceGap = 0.25
	minBand  = 1.0
)

// assembleLines groups the glyphs of one page into lines, top to bottom,
// each line's glyphs left to right.
func assembleLines(page int, glyphs []glyph) []LineItem {
	if len(glyphs) == 0 {
		return nil
	}

	sorted := make([]glyph, len(glyphs))
	copy(sorted, glyphs)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Y != sorted[j].Y {
			return sorted[i].Y < sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	var bands [][]glyph
	var current []glyph
	var bandY float64
	for _, g := range sorted {
		if len(current) > 0 && absFloat(g.Y-bandY) <= tolerance(g.Size) {
			current = append(current, g)
			continue
		}
		if len(current) > 0 {
			bands = append(bands, current)
		}
		current = []glyph{g}
		bandY = g.Y
	}
	if len(current) > 0 {
		bands = append(bands, current)
	}

	lines := make([]LineItem, 0, len(bands))
	for _, band := range bands {
		sort.SliceStable(band, func(i, j int) bool { return band[i].X < band[j].X })
		if line, ok := buildLine(page, band); ok {
			lines = append(lines, line)
		}
	}
	return lines
}

func buildLine(page int, band []glyph) (LineItem, bool) {
	var sb strings.Builder
	var (
		first     *glyph
		prevEnd   float64
		sumY      float64
		inked     int
		boldRunes int
		allRunes  int
		maxSize   float64
	)

	for i := range band {
		g := &band[i]
		if strings.TrimSpace(g.Text) == "" {
			if sb.Len() > 0 {
				sb.WriteByte(' ')
			}
			prevEnd = g.X + g.W
			continue
		}
		if first == nil {
			first = g
		} else if g.X-prevEnd > spaceGap*g.Size {
			sb.WriteByte(' ')
		}
		sb.WriteString(g.Text)
		prevEnd = g.X + g.W

		sumY += g.Y
		inked++
		n := len([]rune(g.Text))
		allRunes += n
		if isBoldFont(g.Font) {
			boldRunes += n
		}
		if g.Size > maxSize {
			maxSize = g.Size
		}
	}
	if first == nil {
		return LineItem{}, false
	}

	text := strings.Join(strings.Fields(norm.NFKC.String(sb.String())), " ")
	if text == "" {
		return LineItem{}, false
	}

	weight := WeightNormal
	if boldRunes*2 > allRunes {
		weight = WeightBold
	}
	return LineItem{
		Text:       text,
		Page:       page,
		X:          first.X,
		Y:          sumY / float64(inked),
		FontSize:   maxSize,
		FontWeight: weight,
		Font:       first.Font,
	}, true
}

// isBoldFont reports whether a PDF base font name denotes a heavy face.
// Subset prefixes such as "ABCDEF+" are ignored.
func isBoldFont(name string) bool {
	if i := strings.IndexByte(name, '+'); i >= 0 {
		name = name[i+1:]
	}
	name = strings.ToLower(name)
	for _, w := range []string{"bold", "black", "heavy", "semibold", "demi"} {
		if strings.Contains(name, w) {
			return true
		}
	}
	return false
}

func tolerance(size float64) float64 {
	t := size * bandTolerance
	if t < minBand {
		return minBand
	}
	return t
}

func absFloat(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

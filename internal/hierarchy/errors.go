package hierarchy

import (
	"fmt"
	"math"
	"strings"

	"github.com/dgallion1/pdfoutline/internal/parser"
)

// yTolerance is how far, in points, a line may sit above its predecessor
// on the same page before the sequence counts as out of order.
const yTolerance = 1.0

// StructureError reports a line sequence the builder cannot trust.
type StructureError struct {
	Index  int // position of the offending line
	Reason string
}

func (e *StructureError) Error() string {
	return fmt.Sprintf("malformed line sequence at line %d: %s", e.Index, e.Reason)
}

// Validate checks that lines look like extractor output: non-empty text,
// positive pages, finite metrics, and (page, y) reading order.
func Validate(lines []parser.LineItem) error {
	for i, l := range lines {
		if strings.TrimSpace(l.Text) == "" {
			return &StructureError{Index: i, Reason: "empty text"}
		}
		if l.Page < 1 {
			return &StructureError{Index: i, Reason: fmt.Sprintf("page %d is not positive", l.Page)}
		}
		if !finite(l.X) || !finite(l.Y) || !finite(l.FontSize) {
			return &StructureError{Index: i, Reason: "non-finite position or font size"}
		}
		if l.FontSize < 0 {
			return &StructureError{Index: i, Reason: "negative font size"}
		}
		if i == 0 {
			continue
		}
		prev := lines[i-1]
		if l.Page < prev.Page {
			return &StructureError{Index: i, Reason: fmt.Sprintf("page %d follows page %d", l.Page, prev.Page)}
		}
		if l.Page == prev.Page && l.Y < prev.Y-yTolerance {
			return &StructureError{Index: i, Reason: "line is above its predecessor"}
		}
	}
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

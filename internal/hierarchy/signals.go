package hierarchy

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dgallion1/pdfoutline/internal/parser"
)

var (
	// "1.", "2)", "1.2", "001", "001.1", "2.3.4)", each segment up to four digits.
	numberingPattern = regexp.MustCompile(`^(\d{1,4}(?:\.\d{1,4})*)([.)])?(?:\s+|$)`)

	// "a)", "(b)", "iv.", "(ii)", "B." followed by text.
	enumerationPattern = regexp.MustCompile(`^(\(?(?:[a-zA-Z]|[ivxlcdm]{1,6}|[IVXLCDM]{1,6})[.)])\s+`)
)

const bulletRunes = "•◦▪▫‣⁃●○■□►▸▶➤➢✓✔☐·–—-*"

// numberToken is a dotted-depth marker at the start of a line.
type numberToken struct {
	marker   string
	segments []int
	closed   bool // ends in "." or ")"
}

// depth is 0 for "1." and 1 for "1.2".
func (n numberToken) depth() int { return len(n.segments) - 1 }

// numbering returns the dotted-depth marker at the start of text. A bare
// integer such as "12" or "2024" only counts when zero-padded ("001"),
// since prose lines often open with a quantity or a year.
func numbering(text string) (numberToken, bool) {
	m := numberingPattern.FindStringSubmatch(text)
	if m == nil {
		return numberToken{}, false
	}
	parts := strings.Split(m[1], ".")
	closed := m[2] != ""
	if len(parts) == 1 && !closed && !(len(parts[0]) > 1 && parts[0][0] == '0') {
		return numberToken{}, false
	}
	segs := make([]int, len(parts))
	for i, p := range parts {
		segs[i], _ = strconv.Atoi(p)
	}
	return numberToken{marker: m[1] + m[2], segments: segs, closed: closed}, true
}

// sequence follows the running numbering of a document. An unterminated
// number that does not continue it ("1.5 million" after "1.1") is read as
// text rather than as a heading.
type sequence struct {
	path []int
}

// accept reports whether n is taken as numbering and, if so, advances the
// sequence to it.
func (s *sequence) accept(n numberToken) bool {
	if !n.closed && s.path != nil && !s.continues(n.segments) {
		return false
	}
	s.path = n.segments
	return true
}

// continues reports whether segs is the next sibling of a node on the
// current path, or the first child of its last node.
func (s *sequence) continues(segs []int) bool {
	d := len(segs) - 1
	if len(s.path) < d {
		return false
	}
	for i := 0; i < d; i++ {
		if s.path[i] != segs[i] {
			return false
		}
	}
	if len(s.path) == d {
		return segs[d] <= 1
	}
	return segs[d] == s.path[d]+1
}

// bullet returns the bullet or enumeration token at the start of text.
func bullet(text string) (string, bool) {
	r, size := utf8.DecodeRuneInString(text)
	if r != utf8.RuneError && strings.ContainsRune(bulletRunes, r) {
		rest := text[size:]
		// ASCII dashes and asterisks need a following space to rule out
		// negative numbers and emphasis.
		if r < utf8.RuneSelf && rest != "" && !unicode.IsSpace(rune(rest[0])) {
			return "", false
		}
		return string(r), true
	}
	if m := enumerationPattern.FindStringSubmatch(text); m != nil {
		return m[1], true
	}
	return "", false
}

// indentBucket quantizes a line's left edge into whole indent units
// measured from the document's leftmost line.
func indentBucket(x, minX, unit float64) int {
	b := int(math.Round((x - minX) / unit))
	if b < 0 {
		return 0
	}
	return b
}

// fontShift compares a line with the one before it: -1 when it is larger
// or bolder (shallower), +1 when smaller or lighter (deeper), 0 otherwise.
func fontShift(prev, cur parser.LineItem, delta float64) int {
	switch {
	case cur.FontSize-prev.FontSize >= delta:
		return -1
	case prev.FontSize-cur.FontSize >= delta:
		return 1
	case cur.FontWeight == parser.WeightBold && prev.FontWeight != parser.WeightBold:
		return -1
	case cur.FontWeight != parser.WeightBold && prev.FontWeight == parser.WeightBold:
		return 1
	}
	return 0
}

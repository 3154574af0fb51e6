// Package hierarchy infers an outline tree from the lines of a document.
//
// Each line is classified by the first signal present in the configured
// priority: a dotted-depth numbering token, a bullet glyph or change of
// indent bucket, or a font size/weight jump. Lines with no signal at the
// same indent as their predecessor are continuations and merge into the
// previous node. A document with no signal anywhere is laid out flat.
package hierarchy

import (
	"math"

	"github.com/dgallion1/pdfoutline/internal/doctree"
	"github.com/dgallion1/pdfoutline/internal/parser"
)

// Mode records how levels were assigned.
type Mode string

const (
	ModeStructured Mode = "structured"
	ModeFlat       Mode = "flat"
)

// Result is the tree built from one line sequence.
type Result struct {
	Tree   *doctree.Tree
	Mode   Mode
	Lines  int // lines consumed
	Merged int // lines folded into a previous node as continuations
}

// Builder assembles hierarchy trees. It holds only configuration and is
// safe for concurrent use.
type Builder struct {
	cfg Config
}

// NewBuilder returns a Builder, filling zero-valued settings with defaults.
func NewBuilder(cfg Config) *Builder {
	def := DefaultConfig()
	if cfg.IndentUnit <= 0 {
		cfg.IndentUnit = def.IndentUnit
	}
	if cfg.FontSizeDelta <= 0 {
		cfg.FontSizeDelta = def.FontSizeDelta
	}
	if len(cfg.Priority) == 0 {
		cfg.Priority = def.Priority
	}
	return &Builder{cfg: cfg}
}

// Config returns the builder's effective configuration.
func (b *Builder) Config() Config {
	return b.cfg
}

// lineInfo is the classification of one line.
type lineInfo struct {
	signal   Signal
	marker   string
	depth    int // numbering depth
	bucket   int
	numbered bool
	hanging  bool // wrapped text aligned after the previous line's marker
	shift    int  // font shift against the previous line
}

// hangTolerance is how far, in points, successive wrapped lines of a
// hanging indent may drift and still align.
const hangTolerance = 1.0

// openNode is an entry on the stack of nodes that can still take children.
// stack[k] always holds the open node at level k.
type openNode struct {
	id       doctree.NodeID
	bucket   int
	numbered bool
}

// Build turns lines into a tree. Every line ends up in exactly one node,
// either as the node's first line or as merged continuation text.
func (b *Builder) Build(lines []parser.LineItem) (*Result, error) {
	if err := Validate(lines); err != nil {
		return nil, err
	}

	res := &Result{Tree: doctree.New(""), Mode: ModeFlat, Lines: len(lines)}
	if len(lines) == 0 {
		return res, nil
	}

	infos, structured := b.classify(lines)
	if !structured {
		for i, l := range lines {
			res.Tree.Add(doctree.RootID, l.Text, infos[i].marker, l.Page)
		}
		return res, nil
	}

	res.Mode = ModeStructured
	tree := res.Tree
	var stack []openNode
	last := doctree.NoParent

	for i, l := range lines {
		info := infos[i]

		if info.signal == SignalNone && last != doctree.NoParent && info.bucket == infos[i-1].bucket {
			tree.AppendText(last, l.Text)
			res.Merged++
			continue
		}

		level := b.requestedLevel(info, stack)
		if level > len(stack) {
			level = len(stack)
		}
		if level < 0 {
			level = 0
		}
		stack = stack[:level]

		parent := doctree.RootID
		if level > 0 {
			parent = stack[level-1].id
		}
		last = tree.Add(parent, l.Text, info.marker, l.Page)
		stack = append(stack, openNode{id: last, bucket: info.bucket, numbered: info.numbered})
	}
	return res, nil
}

// classify computes every line's signal and reports whether any line
// carries one.
func (b *Builder) classify(lines []parser.LineItem) ([]lineInfo, bool) {
	minX := lines[0].X
	for _, l := range lines[1:] {
		if l.X < minX {
			minX = l.X
		}
	}

	infos := make([]lineInfo, len(lines))
	signalled := false
	var seq sequence
	for i, l := range lines {
		info := lineInfo{bucket: indentBucket(l.X, minX, b.cfg.IndentUnit)}

		num, numOK := numbering(l.Text)
		numOK = numOK && seq.accept(num)
		bulletMarker, bulletOK := bullet(l.Text)
		if numOK {
			info.marker, info.depth, info.numbered = num.marker, num.depth(), true
		} else if bulletOK {
			info.marker = bulletMarker
		} else if i > 0 && hangs(lines[i-1], infos[i-1], l, b.cfg.IndentUnit) {
			// Same bucket as the marked line, so it merges as a continuation.
			info.bucket = infos[i-1].bucket
			info.hanging = true
		}

		indentChanged := i > 0 && info.bucket != infos[i-1].bucket
		if i > 0 {
			info.shift = fontShift(lines[i-1], l, b.cfg.FontSizeDelta)
		}

		for _, s := range b.cfg.Priority {
			present := false
			switch s {
			case SignalNumbering:
				present = numOK
			case SignalIndent:
				present = bulletOK || indentChanged
			case SignalFont:
				present = info.shift != 0
			}
			if present {
				info.signal = s
				break
			}
		}
		if info.signal != SignalNone {
			signalled = true
		}
		infos[i] = info
	}
	return infos, signalled
}

// hangs reports whether an unmarked line is the wrap of a hanging indent:
// just right of a marked line, by less than one indent unit, or aligned
// with an earlier wrap of the same item.
func hangs(prev parser.LineItem, prevInfo lineInfo, cur parser.LineItem, unit float64) bool {
	if prev.Page != cur.Page {
		return false
	}
	dx := cur.X - prev.X
	if prevInfo.marker != "" {
		return dx > hangTolerance && dx < unit
	}
	return prevInfo.hanging && math.Abs(dx) <= hangTolerance
}

// requestedLevel is the level a line asks for before clamping.
func (b *Builder) requestedLevel(info lineInfo, stack []openNode) int {
	switch info.signal {
	case SignalNumbering:
		return info.depth
	case SignalIndent:
		for k := len(stack) - 1; k >= 0; k-- {
			open := stack[k]
			if open.bucket < info.bucket || (open.bucket == info.bucket && open.numbered && !info.numbered) {
				return k + 1
			}
		}
		return 0
	case SignalFont:
		if len(stack) == 0 {
			return 0
		}
		return len(stack) - 1 + info.shift
	default:
		// No signal but a different indent while indentation is not
		// consulted: stay beside the previous node.
		if len(stack) == 0 {
			return 0
		}
		return len(stack) - 1
	}
}

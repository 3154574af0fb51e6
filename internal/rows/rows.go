// Package rows flattens an outline tree into spreadsheet rows.
package rows

import (
	"errors"
	"fmt"

	"github.com/dgallion1/pdfoutline/internal/doctree"
)

// ErrMalformedTree is returned when a node's level is not one deeper than
// its parent's.
var ErrMalformedTree = errors.New("malformed outline tree")

// Row is one outline node in document order.
type Row struct {
	Index  int
	Level  int
	Text   string
	Marker string
	Page   int
	Path   []string // ancestor texts, top-level first
}

// Map walks t in pre-order and emits one Row per node. Siblings keep their
// source order and Index counts up from 0.
func Map(t *doctree.Tree) ([]Row, error) {
	out := make([]Row, 0, t.Len())
	var path []string
	var walk func(parent *doctree.Node) error
	walk = func(parent *doctree.Node) error {
		for _, id := range parent.Children {
			n := t.Node(id)
			if n.Level != parent.Level+1 {
				return fmt.Errorf("%w: node %d has level %d under level %d", ErrMalformedTree, n.ID, n.Level, parent.Level)
			}
			out = append(out, Row{
				Index:  len(out),
				Level:  n.Level,
				Text:   n.Text,
				Marker: n.Marker,
				Page:   n.Page,
				Path:   append([]string(nil), path...),
			})
			path = append(path, n.Text)
			if err := walk(n); err != nil {
				return err
			}
			path = path[:len(path)-1]
		}
		return nil
	}
	if err := walk(t.Root()); err != nil {
		return nil, err
	}
	return out, nil
}

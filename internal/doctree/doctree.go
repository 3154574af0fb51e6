// Package doctree holds the hierarchy inferred from a document as an arena
// of nodes. Parent links are arena indices, so the tree has no pointer cycles.
package doctree

import (
	"strconv"
	"strings"
)

// NodeID indexes a node in its Tree's arena.
type NodeID int

const (
	// RootID is the synthetic root every tree starts with.
	RootID NodeID = 0
	// NoParent is the root's parent.
	NoParent NodeID = -1
	// RootLevel is the root's level; real content starts at 0.
	RootLevel = -1
)

// Node is one section, heading, or item of the document.
type Node struct {
	ID       NodeID
	Parent   NodeID
	Level    int      // Outline depth, 0 for top-level content
	Text     string   // Line text plus any merged continuation lines
	Marker   string   // Numbering or bullet token that introduced the node, if any
	Page     int      // Page of the first source line
	Children []NodeID // In source order
}

// Tree is the rooted hierarchy of a document.
type Tree struct {
	Title string
	nodes []Node
}

// New returns a tree holding only the synthetic root.
func New(title string) *Tree {
	return &Tree{
		Title: title,
		nodes: []Node{{ID: RootID, Parent: NoParent, Level: RootLevel}},
	}
}

// Add appends a child to parent and returns its ID. The child's level is
// always parent's level plus one. Add panics if parent is not in the tree.
func (t *Tree) Add(parent NodeID, text, marker string, page int) NodeID {
	p := t.Node(parent)
	id := NodeID(len(t.nodes))
	level := p.Level + 1
	p.Children = append(p.Children, id)
	t.nodes = append(t.nodes, Node{
		ID:     id,
		Parent: parent,
		Level:  level,
		Text:   text,
		Marker: marker,
		Page:   page,
	})
	return id
}

// AppendText joins text onto a node's existing text with a single space.
func (t *Tree) AppendText(id NodeID, text string) {
	n := t.Node(id)
	if n.Text == "" {
		n.Text = text
		return
	}
	n.Text += " " + text
}

// Node returns the node with the given ID. The pointer is valid until the
// next Add.
func (t *Tree) Node(id NodeID) *Node {
	if id < 0 || int(id) >= len(t.nodes) {
		panic("doctree: node " + strconv.Itoa(int(id)) + " out of range")
	}
	return &t.nodes[id]
}

// Root returns the synthetic root.
func (t *Tree) Root() *Node {
	return &t.nodes[RootID]
}

// Len returns the number of content nodes, excluding the root.
func (t *Tree) Len() int {
	return len(t.nodes) - 1
}

// Depth returns the number of levels below the root: 0 for an empty tree,
// 1 when every node is top-level.
func (t *Tree) Depth() int {
	depth := 0
	for _, n := range t.nodes[1:] {
		if n.Level+1 > depth {
			depth = n.Level + 1
		}
	}
	return depth
}

// Ancestors returns the IDs from the top-level ancestor down to id's parent.
// The root is never included.
func (t *Tree) Ancestors(id NodeID) []NodeID {
	var chain []NodeID
	for p := t.Node(id).Parent; p != NoParent && p != RootID; p = t.Node(p).Parent {
		chain = append(chain, p)
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// Walk visits every content node in pre-order. Returning false from fn
// skips that node's children.
func (t *Tree) Walk(fn func(n *Node) bool) {
	var visit func(ids []NodeID)
	visit = func(ids []NodeID) {
		for _, id := range ids {
			n := t.Node(id)
			if fn(n) {
				visit(n.Children)
			}
		}
	}
	visit(t.Root().Children)
}

// String renders the tree as indented text, one node per line.
func (t *Tree) String() string {
	var sb strings.Builder
	t.Walk(func(n *Node) bool {
		sb.WriteString(strings.Repeat("  ", n.Level))
		sb.WriteString(n.Text)
		sb.WriteByte('\n')
		return true
	})
	return sb.String()
}

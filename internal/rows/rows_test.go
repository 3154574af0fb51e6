package rows

import (
	"testing"

	"github.com/dgallion1/pdfoutline/internal/doctree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sample builds:
//
//	1. Scope
//	  1.1 Purpose
//	    • reports
//	  1.2 Audience
//	2. Terms
func sample() *doctree.Tree {
	t := doctree.New("sample")
	scope := t.Add(doctree.RootID, "1. Scope", "1.", 1)
	purpose := t.Add(scope, "1.1 Purpose", "1.1", 1)
	t.Add(purpose, "• reports", "•", 2)
	t.Add(scope, "1.2 Audience", "1.2", 2)
	t.Add(doctree.RootID, "2. Terms", "2.", 3)
	return t
}

func TestMap_PreOrder(t *testing.T) {
	rows, err := Map(sample())
	require.NoError(t, err)
	require.Len(t, rows, 5)

	wantText := []string{"1. Scope", "1.1 Purpose", "• reports", "1.2 Audience", "2. Terms"}
	wantLevel := []int{0, 1, 2, 1, 0}
	for i, r := range rows {
		assert.Equal(t, i, r.Index)
		assert.Equal(t, wantText[i], r.Text)
		assert.Equal(t, wantLevel[i], r.Level)
	}

	assert.Equal(t, []string{"1. Scope", "1.1 Purpose"}, rows[2].Path)
	assert.Empty(t, rows[0].Path)
	assert.Empty(t, rows[4].Path)
	assert.Equal(t, "•", rows[2].Marker)
	assert.Equal(t, 2, rows[3].Page)
}

func TestMap_AncestorsPrecedeDescendants(t *testing.T) {
	tree := sample()
	rows, err := Map(tree)
	require.NoError(t, err)

	// Row indexes follow node creation order in this tree.
	index := make(map[doctree.NodeID]int)
	i := 0
	tree.Walk(func(n *doctree.Node) bool {
		index[n.ID] = i
		i++
		return true
	})
	tree.Walk(func(n *doctree.Node) bool {
		for _, a := range tree.Ancestors(n.ID) {
			assert.Less(t, index[a], index[n.ID])
		}
		for k := 1; k < len(n.Children); k++ {
			assert.Less(t, index[n.Children[k-1]], index[n.Children[k]])
		}
		return true
	})
	assert.Len(t, rows, len(index))
}

func TestMap_LevelsStepByOne(t *testing.T) {
	rows, err := Map(sample())
	require.NoError(t, err)
	assert.Equal(t, 0, rows[0].Level)
	for i := 1; i < len(rows); i++ {
		assert.LessOrEqual(t, rows[i].Level, rows[i-1].Level+1)
	}
}

func TestMap_Idempotent(t *testing.T) {
	tree := sample()
	first, err := Map(tree)
	require.NoError(t, err)
	second, err := Map(tree)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestMap_Empty(t *testing.T) {
	rows, err := Map(doctree.New(""))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestMap_PathIsCopied(t *testing.T) {
	rows, err := Map(sample())
	require.NoError(t, err)
	rows[1].Path[0] = "changed"
	assert.Equal(t, "1. Scope", rows[2].Path[0])
}

func TestMap_MalformedTree(t *testing.T) {
	tree := sample()
	tree.Node(3).Level = 5

	rows, err := Map(tree)
	assert.Nil(t, rows)
	require.ErrorIs(t, err, ErrMalformedTree)
	assert.Contains(t, err.Error(), "node 3")
}

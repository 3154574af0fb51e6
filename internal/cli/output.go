package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dgallion1/pdfoutline/internal/convert"
	"github.com/dgallion1/pdfoutline/internal/doctree"
	"github.com/dgallion1/pdfoutline/internal/hierarchy"
)

var (
	// titleStyle for bold headers
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("33"))

	// dimStyle for labels and metadata
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196"))

	// markerStyle highlights numbering and bullet tokens
	markerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("33")).
			Padding(0, 1)
)

// writeSummary renders the result of a conversion.
func writeSummary(w io.Writer, input, output string, res convert.Result) {
	label := func(s string) string { return dimStyle.Render(fmt.Sprintf("%-8s", s)) }
	content := strings.Join([]string{
		titleStyle.Render("Converted ") + input,
		label("Output") + " " + successStyle.Render(output),
		label("Lines") + fmt.Sprintf(" %d (%d merged)", res.Lines, res.Merged),
		label("Rows") + fmt.Sprintf(" %d", res.Rows),
		label("Depth") + fmt.Sprintf(" %d", res.Depth),
		label("Mode") + " " + string(res.Mode),
	}, "\n")
	fmt.Fprintln(w, boxStyle.Render(content))
}

// writeOutline prints the tree, two spaces per level, markers highlighted.
func writeOutline(w io.Writer, res *hierarchy.Result) {
	tree := res.Tree
	fmt.Fprintln(w, dimStyle.Render(fmt.Sprintf("%d nodes, depth %d, %s mode", tree.Len(), tree.Depth(), res.Mode)))
	tree.Walk(func(n *doctree.Node) bool {
		text := n.Text
		if n.Marker != "" && strings.HasPrefix(text, n.Marker) {
			text = markerStyle.Render(n.Marker) + text[len(n.Marker):]
		}
		fmt.Fprintf(w, "%s%s %s\n", strings.Repeat("  ", n.Level), text, dimStyle.Render(fmt.Sprintf("p%d", n.Page)))
		return true
	})
}

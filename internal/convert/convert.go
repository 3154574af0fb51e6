// Package convert runs the PDF to spreadsheet pipeline: extract lines,
// infer the outline, flatten it to rows, and write the workbook.
package convert

import (
	"fmt"

	"github.com/dgallion1/pdfoutline/internal/hierarchy"
	"github.com/dgallion1/pdfoutline/internal/parser"
	"github.com/dgallion1/pdfoutline/internal/rows"
	"github.com/dgallion1/pdfoutline/internal/sheet"
)

// Config gathers the settings of every pipeline stage.
type Config struct {
	Parser    parser.Options
	Hierarchy hierarchy.Config
	Sheet     sheet.Config
}

// Result summarizes one conversion.
type Result struct {
	Lines  int            `json:"lines"`
	Nodes  int            `json:"nodes"`
	Merged int            `json:"merged"`
	Rows   int            `json:"rows"`
	Mode   hierarchy.Mode `json:"mode"`
	Depth  int            `json:"depth"`
}

// Converter holds immutable configuration and is safe for concurrent use.
type Converter struct {
	parser  *parser.PDFParser
	builder *hierarchy.Builder
	writer  *sheet.Writer
}

// New validates cfg and builds a Converter. Zero-valued hierarchy
// settings take their defaults.
func New(cfg Config) (*Converter, error) {
	p, err := parser.New(cfg.Parser)
	if err != nil {
		return nil, err
	}
	b := hierarchy.NewBuilder(cfg.Hierarchy)
	if err := b.Config().Validate(); err != nil {
		return nil, fmt.Errorf("hierarchy config: %w", err)
	}
	return &Converter{
		parser:  p,
		builder: b,
		writer:  sheet.NewWriter(cfg.Sheet),
	}, nil
}

// WithPassword returns a Converter that opens encrypted input with
// password. The receiver is unchanged.
func (c *Converter) WithPassword(password string) *Converter {
	cp := *c
	cp.parser = c.parser.WithPassword(password)
	return &cp
}

// Outline extracts and structures data without writing anything.
func (c *Converter) Outline(data []byte) (*hierarchy.Result, error) {
	lines, err := c.parser.Extract(data)
	if err != nil {
		return nil, err
	}
	return c.builder.Build(lines)
}

// Convert turns PDF bytes into a workbook at dst. dst is only created
// when every stage succeeds.
func (c *Converter) Convert(data []byte, dst string) (Result, error) {
	built, err := c.Outline(data)
	if err != nil {
		return Result{}, err
	}
	rs, err := rows.Map(built.Tree)
	if err != nil {
		return Result{}, err
	}
	if err := c.writer.Write(rs, dst); err != nil {
		return Result{}, err
	}
	return Result{
		Lines:  built.Lines,
		Nodes:  built.Tree.Len(),
		Merged: built.Merged,
		Rows:   len(rs),
		Mode:   built.Mode,
		Depth:  built.Tree.Depth(),
	}, nil
}

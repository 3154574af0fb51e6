// Package sheet writes outline rows to an .xlsx workbook.
package sheet

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/pdfoutline/internal/rows"
	"github.com/xuri/excelize/v2"
)

// IndentStyle selects how a row's level is made visible.
type IndentStyle string

const (
	// IndentAlign uses the cell alignment indent of the Text column.
	IndentAlign IndentStyle = "indent"
	// IndentSpaces pads the text with two spaces per level.
	IndentSpaces IndentStyle = "spaces"
)

// ParseIndentStyle accepts "indent" or "spaces". Empty means IndentAlign.
func ParseIndentStyle(s string) (IndentStyle, error) {
	switch IndentStyle(strings.ToLower(strings.TrimSpace(s))) {
	case "", IndentAlign:
		return IndentAlign, nil
	case IndentSpaces:
		return IndentSpaces, nil
	}
	return "", fmt.Errorf("unknown indent style %q (want indent or spaces)", s)
}

const (
	DefaultSheetName = "Outline"

	maxOutlineLevel = 7 // deepest row grouping Excel supports
	minTextWidth    = 30.0
	maxTextWidth    = 100.0
	pathSeparator   = " > "
)

var header = []interface{}{"Row", "Level", "Marker", "Text", "Path"}

// Config controls the workbook layout.
type Config struct {
	SheetName   string
	IndentStyle IndentStyle
}

// Writer renders rows into a single-sheet workbook.
type Writer struct {
	cfg Config
}

// NewWriter returns a Writer, defaulting the sheet name and indent style.
func NewWriter(cfg Config) *Writer {
	if cfg.SheetName == "" {
		cfg.SheetName = DefaultSheetName
	}
	if cfg.IndentStyle == "" {
		cfg.IndentStyle = IndentAlign
	}
	return &Writer{cfg: cfg}
}

// WriteError reports a failure to build or publish the workbook.
type WriteError struct {
	Op  string
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write spreadsheet: %s: %v", e.Op, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// Write renders rs and publishes the workbook at dst. The file appears at
// dst only once it is complete; on failure nothing is left behind.
func (w *Writer) Write(rs []rows.Row, dst string) error {
	f, err := w.build(rs)
	if err != nil {
		return err
	}
	defer f.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".pdfoutline-*.tmp")
	if err != nil {
		return &WriteError{Op: "create temp file", Err: err}
	}
	tmpName := tmp.Name()
	published := false
	defer func() {
		if !published {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	if _, err := f.WriteTo(tmp); err != nil {
		return &WriteError{Op: "encode workbook", Err: err}
	}
	if err := tmp.Chmod(0o644); err != nil {
		return &WriteError{Op: "chmod", Err: err}
	}
	if err := tmp.Sync(); err != nil {
		return &WriteError{Op: "sync", Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &WriteError{Op: "close", Err: err}
	}
	if err := os.Rename(tmpName, dst); err != nil {
		return &WriteError{Op: "rename", Err: err}
	}
	published = true
	return nil
}

func (w *Writer) build(rs []rows.Row) (*excelize.File, error) {
	f := excelize.NewFile()
	fail := func(op string, err error) (*excelize.File, error) {
		f.Close()
		return nil, &WriteError{Op: op, Err: err}
	}

	sheet := w.cfg.SheetName
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fail("name sheet", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fail("create style", err)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fail("write header", err)
	}
	if err := f.SetCellStyle(sheet, "A1", "E1", bold); err != nil {
		return fail("style header", err)
	}
	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fail("freeze header", err)
	}

	styles := newLevelStyles(f, w.cfg.IndentStyle)
	longest := 0
	for _, r := range rs {
		sheetRow := r.Index + 2
		text := r.Text
		if w.cfg.IndentStyle == IndentSpaces {
			text = strings.Repeat("  ", r.Level) + text
		}
		values := []interface{}{r.Index + 1, r.Level, r.Marker, text, strings.Join(r.Path, pathSeparator)}
		cell, err := excelize.CoordinatesToCellName(1, sheetRow)
		if err != nil {
			return fail("address row", err)
		}
		textCell, err := excelize.CoordinatesToCellName(4, sheetRow)
		if err != nil {
			return fail("address row", err)
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fail(fmt.Sprintf("write row %d", r.Index), err)
		}

		style, err := styles.forLevel(r.Level)
		if err != nil {
			return fail("create style", err)
		}
		if style != 0 {
			if err := f.SetCellStyle(sheet, textCell, textCell, style); err != nil {
				return fail(fmt.Sprintf("style row %d", r.Index), err)
			}
		}
		if r.Level > 0 {
			if err := f.SetRowOutlineLevel(sheet, sheetRow, uint8(min(r.Level, maxOutlineLevel))); err != nil {
				return fail(fmt.Sprintf("group row %d", r.Index), err)
			}
		}
		if r.Level == 0 {
			longest = max(longest, utf8.RuneCountInString(r.Text))
		}
	}

	widths := []struct {
		col   string
		width float64
	}{
		{"A", 8}, {"B", 8}, {"C", 10}, {"D", TextColumnWidth(longest)}, {"E", 60},
	}
	for _, cw := range widths {
		if err := f.SetColWidth(sheet, cw.col, cw.col, cw.width); err != nil {
			return fail("set column width", err)
		}
	}
	return f, nil
}

// TextColumnWidth sizes the Text column from its longest top-level entry.
func TextColumnWidth(longestTopLevel int) float64 {
	return min(max(float64(longestTopLevel)*1.1+2, minTextWidth), maxTextWidth)
}

// levelStyles creates one Text-column style per level on first use.
type levelStyles struct {
	f     *excelize.File
	mode  IndentStyle
	cache map[int]int
}

func newLevelStyles(f *excelize.File, mode IndentStyle) *levelStyles {
	return &levelStyles{f: f, mode: mode, cache: make(map[int]int)}
}

// forLevel returns the style for a level, or 0 when the default style fits.
func (s *levelStyles) forLevel(level int) (int, error) {
	if id, ok := s.cache[level]; ok {
		return id, nil
	}
	style := &excelize.Style{}
	if level == 0 {
		style.Font = &excelize.Font{Bold: true}
	}
	if s.mode == IndentAlign && level > 0 {
		style.Alignment = &excelize.Alignment{Horizontal: "left", Indent: level}
	}
	id := 0
	if style.Font != nil || style.Alignment != nil {
		var err error
		if id, err = s.f.NewStyle(style); err != nil {
			return 0, err
		}
	}
	s.cache[level] = id
	return id, nil
}

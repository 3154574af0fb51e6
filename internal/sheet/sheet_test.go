package sheet

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dgallion1/pdfoutline/internal/rows"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleRows() []rows.Row {
	return []rows.Row{
		{Index: 0, Level: 0, Text: "1. Scope", Marker: "1.", Page: 1},
		{Index: 1, Level: 1, Text: "1.1 Purpose", Marker: "1.1", Page: 1, Path: []string{"1. Scope"}},
		{Index: 2, Level: 2, Text: "• reports", Marker: "•", Page: 2, Path: []string{"1. Scope", "1.1 Purpose"}},
		{Index: 3, Level: 0, Text: "2. Terms", Marker: "2.", Page: 3},
	}
}

func open(t *testing.T, path string) *excelize.File {
	t.Helper()
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func cell(t *testing.T, f *excelize.File, sheet, ref string) string {
	t.Helper()
	v, err := f.GetCellValue(sheet, ref)
	require.NoError(t, err)
	return v
}

func TestWrite_Layout(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, NewWriter(Config{}).Write(sampleRows(), dst))

	f := open(t, dst)
	assert.Equal(t, []string{DefaultSheetName}, f.GetSheetList())

	for i, want := range []string{"Row", "Level", "Marker", "Text", "Path"} {
		ref, _ := excelize.CoordinatesToCellName(i+1, 1)
		assert.Equal(t, want, cell(t, f, DefaultSheetName, ref))
	}

	assert.Equal(t, "1", cell(t, f, DefaultSheetName, "A2"))
	assert.Equal(t, "0", cell(t, f, DefaultSheetName, "B2"))
	assert.Equal(t, "1. Scope", cell(t, f, DefaultSheetName, "D2"))
	assert.Equal(t, "3", cell(t, f, DefaultSheetName, "A4"))
	assert.Equal(t, "2", cell(t, f, DefaultSheetName, "B4"))
	assert.Equal(t, "•", cell(t, f, DefaultSheetName, "C4"))
	assert.Equal(t, "• reports", cell(t, f, DefaultSheetName, "D4"))
	assert.Equal(t, "1. Scope > 1.1 Purpose", cell(t, f, DefaultSheetName, "E4"))
	assert.Equal(t, "2. Terms", cell(t, f, DefaultSheetName, "D5"))

	rowsOut, err := f.GetRows(DefaultSheetName)
	require.NoError(t, err)
	assert.Len(t, rowsOut, 5)
}

func TestWrite_OutlineLevels(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, NewWriter(Config{}).Write(sampleRows(), dst))
	f := open(t, dst)

	for sheetRow, want := range map[int]uint8{2: 0, 3: 1, 4: 2, 5: 0} {
		got, err := f.GetRowOutlineLevel(DefaultSheetName, sheetRow)
		require.NoError(t, err)
		assert.Equal(t, want, got, "row %d", sheetRow)
	}

	id, err := f.GetCellStyle(DefaultSheetName, "D4")
	require.NoError(t, err)
	style, err := f.GetStyle(id)
	require.NoError(t, err)
	require.NotNil(t, style.Alignment)
	assert.Equal(t, 2, style.Alignment.Indent)
}

func TestWrite_DeepLevelsCapOutline(t *testing.T) {
	var rs []rows.Row
	for i := 0; i < 10; i++ {
		rs = append(rs, rows.Row{Index: i, Level: i, Text: "level"})
	}
	dst := filepath.Join(t.TempDir(), "deep.xlsx")
	require.NoError(t, NewWriter(Config{}).Write(rs, dst))

	f := open(t, dst)
	got, err := f.GetRowOutlineLevel(DefaultSheetName, 11)
	require.NoError(t, err)
	assert.Equal(t, uint8(7), got)
}

func TestWrite_SpacesStyle(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "out.xlsx")
	w := NewWriter(Config{SheetName: "Chart", IndentStyle: IndentSpaces})
	require.NoError(t, w.Write(sampleRows(), dst))

	f := open(t, dst)
	assert.Equal(t, "1. Scope", cell(t, f, "Chart", "D2"))
	assert.Equal(t, "  1.1 Purpose", cell(t, f, "Chart", "D3"))
	assert.Equal(t, "    • reports", cell(t, f, "Chart", "D4"))
}

func TestWrite_EmptyIsHeaderOnly(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "empty.xlsx")
	require.NoError(t, NewWriter(Config{}).Write(nil, dst))

	f := open(t, dst)
	got, err := f.GetRows(DefaultSheetName)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, []string{"Row", "Level", "Marker", "Text", "Path"}, got[0])
}

func TestWrite_MissingDirectory(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "missing", "out.xlsx")
	err := NewWriter(Config{}).Write(sampleRows(), dst)

	var we *WriteError
	require.ErrorAs(t, err, &we)
	_, statErr := os.Stat(dst)
	assert.True(t, os.IsNotExist(statErr))
}

func TestWrite_FailedPublishLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "taken")
	require.NoError(t, os.Mkdir(dst, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dst, "keep"), []byte("x"), 0o644))

	err := NewWriter(Config{}).Write(sampleRows(), dst)
	var we *WriteError
	require.ErrorAs(t, err, &we)
	assert.Equal(t, "rename", we.Op)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasPrefix(e.Name(), ".pdfoutline-"), "temp file %s left behind", e.Name())
	}
}

func TestWrite_InvalidRowAddress(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "out.xlsx")

	err := NewWriter(Config{}).Write([]rows.Row{{Index: -5, Level: 1, Text: "orphan"}}, dst)
	var we *WriteError
	require.ErrorAs(t, err, &we)
	assert.Equal(t, "address row", we.Op)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWrite_Overwrites(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, os.WriteFile(dst, []byte("stale"), 0o644))
	require.NoError(t, NewWriter(Config{}).Write(sampleRows(), dst))

	f := open(t, dst)
	assert.Equal(t, "1. Scope", cell(t, f, DefaultSheetName, "D2"))
}

func TestTextColumnWidth(t *testing.T) {
	assert.Equal(t, 30.0, TextColumnWidth(0))
	assert.InDelta(t, 57.0, TextColumnWidth(50), 1e-9)
	assert.Equal(t, 100.0, TextColumnWidth(500))
}

func TestParseIndentStyle(t *testing.T) {
	s, err := ParseIndentStyle("")
	require.NoError(t, err)
	assert.Equal(t, IndentAlign, s)

	s, err = ParseIndentStyle("Spaces")
	require.NoError(t, err)
	assert.Equal(t, IndentSpaces, s)

	_, err = ParseIndentStyle("tabs")
	assert.Error(t, err)
}

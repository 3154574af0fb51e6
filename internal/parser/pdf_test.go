package parser

import (
	"context"
	"errors"
	"testing"

	"github.com/dgallion1/pdfoutline/internal/testpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPDFParser_ExtractsLinesInOrder(t *testing.T) {
	data := testpdf.Outline(t,
		[]testpdf.Line{
			{Text: "1. Scope", Size: 14, Bold: true},
			{Text: "1.1 Purpose", Indent: 18},
			{Text: "- first item", Indent: 36},
		},
		[]testpdf.Line{
			{Text: "2. Terms", Size: 14, Bold: true},
		},
	)

	p, err := New(Options{})
	require.NoError(t, err)
	lines, err := p.Extract(data)
	require.NoError(t, err)
	require.Len(t, lines, 4)

	want := []string{"1. Scope", "1.1 Purpose", "- first item", "2. Terms"}
	for i, w := range want {
		assert.Equal(t, w, lines[i].Text, "line %d", i)
	}

	assert.Equal(t, 1, lines[0].Page)
	assert.Equal(t, 2, lines[3].Page)
	assert.Less(t, lines[0].Y, lines[1].Y)
	assert.Less(t, lines[1].Y, lines[2].Y)
	assert.InDelta(t, 18, lines[1].X-lines[0].X, 0.5)
	assert.InDelta(t, 36, lines[2].X-lines[0].X, 0.5)
	assert.InDelta(t, 14, lines[0].FontSize, 0.1)
	assert.Equal(t, WeightBold, lines[0].FontWeight)
	assert.Equal(t, WeightNormal, lines[1].FontWeight)
}

func TestPDFParser_SkipPatterns(t *testing.T) {
	data := testpdf.Outline(t, []testpdf.Line{
		{Text: "ACME Reporting - PAGE 1"},
		{Text: "1. Revenue"},
	})

	p, err := New(Options{SkipPatterns: []string{`PAGE \d+`}})
	require.NoError(t, err)
	lines, err := p.Extract(data)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "1. Revenue", lines[0].Text)
}

func TestPDFParser_ZeroPages(t *testing.T) {
	p := &PDFParser{}
	lines, err := p.Extract(testpdf.Empty())
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestPDFParser_NotPDF(t *testing.T) {
	p := &PDFParser{}
	for _, data := range [][]byte{nil, []byte("hello"), []byte("%PDF-1.4\ngarbage that is long enough to be read from the end of the file but has no trailer at all\n")} {
		_, err := p.Extract(data)
		var extErr *ExtractionError
		require.ErrorAs(t, err, &extErr)
		assert.ErrorIs(t, err, ErrNotPDF)
	}
}

func TestPDFParser_EncryptedWithoutPassword(t *testing.T) {
	data := testpdf.Encrypted(t, "s3cret", []testpdf.Line{{Text: "1. Hidden"}})

	p := &PDFParser{}
	_, err := p.Extract(data)
	var extErr *ExtractionError
	require.ErrorAs(t, err, &extErr)
	assert.ErrorIs(t, err, ErrEncrypted)
}

func TestNew_InvalidSkipPattern(t *testing.T) {
	_, err := New(Options{SkipPatterns: []string{"("}})
	require.Error(t, err)
}

func TestWithPassword_Copies(t *testing.T) {
	base := &PDFParser{}
	withPw := base.WithPassword("pw")
	assert.Equal(t, "", base.Password)
	assert.Equal(t, "pw", withPw.Password)
}

type stubFallback struct {
	lines    []LineItem
	err      error
	calls    int
	password string
}

func (s *stubFallback) Lines(_ context.Context, _ []byte, password string) ([]LineItem, error) {
	s.calls++
	s.password = password
	return s.lines, s.err
}

func TestPDFParser_EncryptedWithPasswordButNoText(t *testing.T) {
	data := testpdf.Encrypted(t, "s3cret", []testpdf.Line{{Text: "1. Hidden"}})

	p := &PDFParser{Password: "s3cret"}
	lines, err := p.Extract(data)
	var extErr *ExtractionError
	require.ErrorAs(t, err, &extErr, "an unlocked document must not come back empty")
	assert.ErrorIs(t, err, ErrUnreadable)
	assert.Empty(t, lines)
}

func TestPDFParser_EncryptedUsesFallback(t *testing.T) {
	data := testpdf.Encrypted(t, "s3cret", []testpdf.Line{{Text: "1. Hidden"}})
	fb := &stubFallback{lines: []LineItem{{Text: "1. Hidden", Page: 1, X: 56, Y: 74, FontSize: 11}}}

	p := &PDFParser{Password: "s3cret", Fallback: fb}
	lines, err := p.Extract(data)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "1. Hidden", lines[0].Text)
	assert.Equal(t, 1, fb.calls)
	assert.Equal(t, "s3cret", fb.password)
}

func TestPDFParser_FallbackFailureKeepsError(t *testing.T) {
	data := testpdf.Encrypted(t, "s3cret", []testpdf.Line{{Text: "1. Hidden"}})
	fb := &stubFallback{err: errors.New("pdftotext: exit status 1")}

	_, err := (&PDFParser{Password: "s3cret", Fallback: fb}).Extract(data)
	assert.ErrorIs(t, err, ErrUnreadable)

	_, err = (&PDFParser{Fallback: fb}).Extract(data)
	assert.ErrorIs(t, err, ErrEncrypted)

	_, err = (&PDFParser{Fallback: fb}).Extract([]byte("hello"))
	assert.ErrorIs(t, err, ErrNotPDF)
}

func TestPDFParser_OpenFailureUsesFallback(t *testing.T) {
	fb := &stubFallback{lines: []LineItem{
		{Text: "PAGE 1", Page: 1, X: 56, Y: 40, FontSize: 11},
		{Text: "1. Recovered", Page: 1, X: 56, Y: 74, FontSize: 11},
	}}
	p, err := New(Options{SkipPatterns: []string{`^PAGE \d+$`}})
	require.NoError(t, err)
	p.Fallback = fb

	lines, err := p.Extract([]byte("%PDF-1.4\nbroken"))
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "1. Recovered", lines[0].Text)
}

func TestPDFParser_ReadableDocumentSkipsFallback(t *testing.T) {
	fb := &stubFallback{err: errors.New("must not run")}
	p := &PDFParser{Fallback: fb}
	lines, err := p.Extract(testpdf.Outline(t, []testpdf.Line{{Text: "1. Scope"}}))
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 0, fb.calls)
}

func TestMergePages(t *testing.T) {
	native := []LineItem{{Text: "a", Page: 1}, {Text: "c", Page: 3}}
	recovered := []LineItem{{Text: "x", Page: 1}, {Text: "b", Page: 2}, {Text: "b2", Page: 2}, {Text: "y", Page: 3}}

	got := mergePages(native, recovered, map[int]bool{2: true})
	var texts []string
	for _, l := range got {
		texts = append(texts, l.Text)
	}
	assert.Equal(t, []string{"a", "b", "b2", "c"}, texts)
}

func TestPdftotext_UnlocksEncrypted(t *testing.T) {
	if LookupPdftotext() == nil {
		t.Skip("pdftotext not installed")
	}
	data := testpdf.Encrypted(t, "s3cret", []testpdf.Line{{Text: "1. Hidden"}, {Text: "- item", Indent: 18}})

	p, err := New(Options{Password: "s3cret", FallbackPdftotext: true})
	require.NoError(t, err)
	lines, err := p.Extract(data)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "1. Hidden", lines[0].Text)
	assert.Equal(t, "- item", lines[1].Text)
	assert.InDelta(t, 18, lines[1].X-lines[0].X, 1)

	_, err = p.WithPassword("wrong").Extract(data)
	assert.ErrorIs(t, err, ErrEncrypted)
}

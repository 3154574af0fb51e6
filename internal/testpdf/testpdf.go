// Package testpdf builds small PDF documents for tests.
package testpdf

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/jung-kurt/gofpdf"
)

// Line is one line of text placed on a generated page.
type Line struct {
	Text   string
	Indent float64 // points from the left margin
	Size   float64 // font size in points, 11 when zero
	Bold   bool
}

const (
	margin  = 56.0
	leading = 1.6
)

// Outline renders each slice of lines onto its own A4 page.
func Outline(t testing.TB, pages ...[]Line) []byte {
	t.Helper()
	pdf := newDoc()
	for _, lines := range pages {
		addPage(pdf, lines)
	}
	return output(t, pdf)
}

// Encrypted renders lines onto one page protected by userPassword.
func Encrypted(t testing.TB, userPassword string, lines []Line) []byte {
	t.Helper()
	pdf := newDoc()
	pdf.SetProtection(gofpdf.CnProtectPrint, userPassword, "owner-"+userPassword)
	addPage(pdf, lines)
	return output(t, pdf)
}

// Empty returns a well-formed PDF whose page tree has no pages.
func Empty() []byte {
	var buf bytes.Buffer
	offsets := make([]int, 3)

	buf.WriteString("%PDF-1.4\n")
	offsets[1] = buf.Len()
	buf.WriteString("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")
	offsets[2] = buf.Len()
	buf.WriteString("2 0 obj\n<< /Type /Pages /Kids [] /Count 0 >>\nendobj\n")

	xref := buf.Len()
	buf.WriteString("xref\n0 3\n")
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets[1:] {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	buf.WriteString("trailer\n<< /Size 3 /Root 1 0 R >>\n")
	fmt.Fprintf(&buf, "startxref\n%d\n%%%%EOF\n", xref)
	return buf.Bytes()
}

func newDoc() *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetCompression(false)
	pdf.SetAutoPageBreak(false, 0)
	return pdf
}

func addPage(pdf *gofpdf.Fpdf, lines []Line) {
	pdf.AddPage()
	y := margin
	for _, l := range lines {
		size := l.Size
		if size == 0 {
			size = 11
		}
		style := ""
		if l.Bold {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, size)
		y += size * leading
		pdf.Text(margin+l.Indent, y, l.Text)
	}
}

func output(t testing.TB, pdf *gofpdf.Fpdf) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		t.Fatalf("render pdf: %v", err)
	}
	return buf.Bytes()
}

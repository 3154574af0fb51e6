package parser

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
)

const (
	defaultPageHeight = 792.0 // US Letter
	maxInheritDepth   = 32
)

// PDFParser reads positioned text lines out of a PDF held in memory.
type PDFParser struct {
	// Password is tried when the document is encrypted and the empty
	// user password does not open it.
	Password string

	// SkipPatterns drop noise lines such as running headers and page banners.
	SkipPatterns []*regexp.Regexp

	// Fallback, when set, reads documents the Go reader rejects and pages
	// it returns no text for.
	Fallback Fallback
}

// nativeResult is what the Go reader got out of a document.
type nativeResult struct {
	lines     []LineItem
	encrypted bool
	blank     map[int]bool // pages with a content stream but no glyphs
}

// Extract returns the document's lines in reading order. A document with
// no pages, or no text layer, yields an empty slice and no error. An
// encrypted document whose text cannot be decoded is an error.
func (p *PDFParser) Extract(data []byte) ([]LineItem, error) {
	if len(data) == 0 {
		return nil, &ExtractionError{Reason: ErrNotPDF, Err: errors.New("empty input")}
	}

	native, err := p.readNative(data)
	if err != nil {
		if p.Fallback == nil {
			return nil, err
		}
		lines, fbErr := p.Fallback.Lines(context.Background(), data, p.Password)
		if fbErr != nil {
			return nil, err
		}
		return p.filter(lines), nil
	}

	lines := native.lines
	var fbErr error
	if len(native.blank) > 0 && p.Fallback != nil {
		var recovered []LineItem
		recovered, fbErr = p.Fallback.Lines(context.Background(), data, p.Password)
		if fbErr == nil {
			lines = mergePages(lines, recovered, native.blank)
		}
	}

	if native.encrypted && len(native.blank) > 0 && len(lines) == 0 {
		cause := errors.New("text layer of encrypted document could not be decoded")
		if fbErr != nil {
			cause = errors.Join(cause, fbErr)
		}
		return nil, &ExtractionError{Reason: ErrUnreadable, Err: cause}
	}
	return p.filter(lines), nil
}

// readNative extracts lines with the Go PDF reader.
func (p *PDFParser) readNative(data []byte) (res nativeResult, err error) {
	r, err := openReader(data, p.Password)
	if err != nil {
		return nativeResult{}, err
	}
	res.encrypted = !r.Trailer().Key("Encrypt").IsNull()
	res.blank = make(map[int]bool)

	// The pdf library panics on some malformed content streams.
	page := 0
	defer func() {
		if rec := recover(); rec != nil {
			res = nativeResult{}
			err = &ExtractionError{Reason: ErrUnreadable, Page: page, Err: fmt.Errorf("%v", rec)}
		}
	}()

	numPages := r.NumPage()
	for page = 1; page <= numPages; page++ {
		pg := r.Page(page)
		if pg.V.IsNull() {
			continue
		}
		top := pageTop(pg.V)

		content := pg.Content()
		if len(content.Text) == 0 {
			if !pg.V.Key("Contents").IsNull() {
				res.blank[page] = true
			}
			continue
		}
		glyphs := make([]glyph, 0, len(content.Text))
		for _, t := range content.Text {
			glyphs = append(glyphs, glyph{
				Text: t.S,
				X:    t.X,
				Y:    top - t.Y,
				W:    t.W,
				Size: t.FontSize,
				Font: t.Font,
			})
		}
		res.lines = append(res.lines, assembleLines(page, glyphs)...)
	}
	return res, nil
}

// mergePages adds the recovered lines of the given pages, keeping page order.
func mergePages(lines, recovered []LineItem, pages map[int]bool) []LineItem {
	out := make([]LineItem, 0, len(lines)+len(recovered))
	out = append(out, lines...)
	for _, l := range recovered {
		if pages[l.Page] {
			out = append(out, l)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Page < out[j].Page })
	return out
}

func (p *PDFParser) filter(lines []LineItem) []LineItem {
	if len(p.SkipPatterns) == 0 {
		return lines
	}
	out := lines[:0:0]
	for _, l := range lines {
		if !p.skip(l.Text) {
			out = append(out, l)
		}
	}
	return out
}

func (p *PDFParser) skip(text string) bool {
	for _, re := range p.SkipPatterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

func openReader(data []byte, password string) (r *pdflib.Reader, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r = nil
			err = &ExtractionError{Reason: ErrNotPDF, Err: fmt.Errorf("%v", rec)}
		}
	}()

	// The library keeps asking until the callback returns "".
	offered := false
	pw := func() string {
		if offered || password == "" {
			return ""
		}
		offered = true
		return password
	}

	r, err = pdflib.NewReaderEncrypted(bytes.NewReader(data), int64(len(data)), pw)
	if err != nil {
		if errors.Is(err, pdflib.ErrInvalidPassword) || strings.Contains(strings.ToLower(err.Error()), "encrypt") {
			return nil, &ExtractionError{Reason: ErrEncrypted, Err: err}
		}
		return nil, &ExtractionError{Reason: ErrNotPDF, Err: err}
	}
	return r, nil
}

// pageTop returns the top edge of the page's MediaBox, following /Parent
// links for inherited boxes.
func pageTop(v pdflib.Value) float64 {
	n := v
	for i := 0; i < maxInheritDepth && !n.IsNull(); i++ {
		box := n.Key("MediaBox")
		if box.Kind() == pdflib.Array && box.Len() == 4 {
			return box.Index(3).Float64()
		}
		n = n.Key("Parent")
	}
	return defaultPageHeight
}

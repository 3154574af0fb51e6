package parser

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// Fallback reads the layout of a PDF the Go reader could not decode.
type Fallback interface {
	Lines(ctx context.Context, data []byte, password string) ([]LineItem, error)
}

const defaultPdftotextTimeout = time.Minute

// Pdftotext runs poppler's pdftotext with -bbox-layout and rebuilds lines
// from the positioned words it reports.
type Pdftotext struct {
	Path    string
	Timeout time.Duration
}

// LookupPdftotext returns a Pdftotext for the binary on PATH, or nil when
// it is not installed.
func LookupPdftotext() *Pdftotext {
	path, err := exec.LookPath("pdftotext")
	if err != nil {
		return nil
	}
	return &Pdftotext{Path: path, Timeout: defaultPdftotextTimeout}
}

func (p *Pdftotext) Lines(ctx context.Context, data []byte, password string) ([]LineItem, error) {
	// pdftotext needs a seekable file.
	tmp, err := os.CreateTemp("", "pdfoutline-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("write temp file: %w", err)
	}

	timeout := p.Timeout
	if timeout <= 0 {
		timeout = defaultPdftotextTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := []string{"-q", "-bbox-layout", "-enc", "UTF-8"}
	if password != "" {
		args = append(args, "-upw", password)
	}
	args = append(args, tmpPath, "-")

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, p.Path, args...)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("pdftotext: %w: %s", err, msg)
		}
		return nil, fmt.Errorf("pdftotext: %w", err)
	}
	return parseBBoxLayout(bytes.NewReader(out))
}

// parseBBoxLayout turns pdftotext -bbox-layout XHTML into lines. Each word
// becomes one glyph so that lines are assembled the same way as for the
// Go reader; font names are not reported, so weight is always normal.
func parseBBoxLayout(r io.Reader) ([]LineItem, error) {
	z := html.NewTokenizer(r)
	var (
		lines  []LineItem
		page   int
		glyphs []glyph
		inWord bool
		word   glyph
	)
	flush := func() {
		if page > 0 {
			lines = append(lines, assembleLines(page, glyphs)...)
		}
		glyphs = nil
	}

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if z.Err() == io.EOF {
				flush()
				return lines, nil
			}
			return nil, fmt.Errorf("read bbox layout: %w", z.Err())

		case html.StartTagToken:
			tok := z.Token()
			switch tok.Data {
			case "page":
				flush()
				page++
			case "word":
				word = wordGlyph(tok.Attr)
				inWord = true
			}

		case html.TextToken:
			if inWord {
				word.Text += string(z.Text())
			}

		case html.EndTagToken:
			tok := z.Token()
			if tok.Data == "word" && inWord {
				inWord = false
				if strings.TrimSpace(word.Text) != "" {
					// Trailing space keeps words apart however tight the boxes are.
					word.Text += " "
					glyphs = append(glyphs, word)
				}
			}
		}
	}
}

// wordGlyph maps a word's bounding box to a glyph. The box bottom stands
// in for the baseline and its height for the font size.
func wordGlyph(attrs []html.Attribute) glyph {
	var xMin, yMin, xMax, yMax float64
	for _, a := range attrs {
		v, err := strconv.ParseFloat(a.Val, 64)
		if err != nil {
			continue
		}
		// The tokenizer lowercases attribute names.
		switch a.Key {
		case "xmin":
			xMin = v
		case "ymin":
			yMin = v
		case "xmax":
			xMax = v
		case "ymax":
			yMax = v
		}
	}
	return glyph{X: xMin, Y: yMax, W: xMax - xMin, Size: yMax - yMin}
}

package parser

import (
	"fmt"
	"regexp"
	"strings"
)

// Extractor converts raw document bytes into ordered line items.
type Extractor interface {
	Extract(data []byte) ([]LineItem, error)
}

// Options configure a PDFParser.
type Options struct {
	Password     string
	SkipPatterns []string

	// FallbackPdftotext retries with poppler's pdftotext, when it is
	// installed, on documents the Go reader cannot decode.
	FallbackPdftotext bool
}

// New builds a PDFParser, compiling the skip patterns.
func New(opts Options) (*PDFParser, error) {
	p := &PDFParser{Password: opts.Password}
	if opts.FallbackPdftotext {
		if tool := LookupPdftotext(); tool != nil {
			p.Fallback = tool
		}
	}
	for _, expr := range opts.SkipPatterns {
		expr = strings.TrimSpace(expr)
		if expr == "" {
			continue
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("skip pattern %q: %w", expr, err)
		}
		p.SkipPatterns = append(p.SkipPatterns, re)
	}
	return p, nil
}

// WithPassword returns a copy of p that tries password on encrypted input.
func (p *PDFParser) WithPassword(password string) *PDFParser {
	cp := *p
	cp.Password = password
	return &cp
}

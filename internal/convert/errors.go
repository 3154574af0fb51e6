package convert

import (
	"errors"

	"github.com/dgallion1/pdfoutline/internal/hierarchy"
	"github.com/dgallion1/pdfoutline/internal/parser"
	"github.com/dgallion1/pdfoutline/internal/rows"
	"github.com/dgallion1/pdfoutline/internal/sheet"
	"github.com/dgallion1/pdfoutline/internal/upload"
)

// Kind classifies a conversion failure.
type Kind string

const (
	KindNone       Kind = ""
	KindInput      Kind = "input"
	KindExtraction Kind = "extraction"
	KindStructure  Kind = "structure"
	KindWrite      Kind = "write"
	KindInternal   Kind = "internal"
)

// KindOf reports which stage err came from.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	var (
		inputErr     *upload.InputError
		extractErr   *parser.ExtractionError
		structureErr *hierarchy.StructureError
		writeErr     *sheet.WriteError
	)
	switch {
	case errors.As(err, &inputErr):
		return KindInput
	case errors.As(err, &extractErr):
		return KindExtraction
	case errors.As(err, &structureErr), errors.Is(err, rows.ErrMalformedTree):
		return KindStructure
	case errors.As(err, &writeErr):
		return KindWrite
	}
	return KindInternal
}

// UserMessage is the text shown to whoever submitted the document. It
// never contains paths or library errors.
func UserMessage(err error) string {
	switch KindOf(err) {
	case KindNone:
		return ""
	case KindInput:
		var inputErr *upload.InputError
		errors.As(err, &inputErr)
		return inputErr.Error()
	case KindExtraction:
		if errors.Is(err, parser.ErrEncrypted) {
			return "The PDF is password protected. Provide the password and try again."
		}
		return "The file could not be read as a PDF. Check that it is a valid, unencrypted PDF with selectable text."
	case KindStructure:
		return "The document's text layout could not be organised into an outline."
	case KindWrite:
		return "The spreadsheet could not be saved. Please try again."
	}
	return "An unexpected error occurred while converting the document."
}

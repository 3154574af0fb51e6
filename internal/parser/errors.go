package parser

import (
	"errors"
	"strconv"
)

// Reasons reported by ExtractionError.
var (
	ErrNotPDF     = errors.New("not a valid PDF")
	ErrEncrypted  = errors.New("encrypted PDF without a usable password")
	ErrUnreadable = errors.New("unreadable PDF content")
)

// ExtractionError reports a PDF that could not be turned into line items.
type ExtractionError struct {
	Reason error // one of ErrNotPDF, ErrEncrypted, ErrUnreadable
	Page   int   // page being read when the failure happened, 0 if none
	Err    error // underlying library error, may be nil
}

func (e *ExtractionError) Error() string {
	msg := "extract pdf: " + e.Reason.Error()
	if e.Page > 0 {
		msg += " (page " + strconv.Itoa(e.Page) + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ExtractionError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Reason}
	}
	return []error{e.Reason, e.Err}
}

// Package upload validates incoming documents and gives each conversion a
// private working directory.
package upload

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Reasons reported by InputError.
var (
	ErrMissingFile  = errors.New("no file was uploaded")
	ErrNoFilename   = errors.New("no file was selected")
	ErrBadExtension = errors.New("file type is not allowed")
	ErrEmpty        = errors.New("file is empty")
	ErrTooLarge     = errors.New("file is too large")
)

// InputError rejects an upload before it reaches the converter. Its
// message is safe to show to the user.
type InputError struct {
	Reason error
	Detail string
}

func (e *InputError) Error() string {
	if e.Detail == "" {
		return e.Reason.Error()
	}
	return e.Reason.Error() + ": " + e.Detail
}

func (e *InputError) Unwrap() error { return e.Reason }

// Policy is the set of limits an upload must satisfy.
type Policy struct {
	MaxBytes          int64
	AllowedExtensions []string // with or without the leading dot, any case
}

// Check validates an upload's name and size. A negative size means the
// size is not known yet and is not checked.
func (p Policy) Check(filename string, size int64) error {
	if strings.TrimSpace(filename) == "" {
		return &InputError{Reason: ErrNoFilename}
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if !p.allows(ext) {
		detail := "only " + strings.Join(p.extensions(), ", ") + " files are accepted"
		return &InputError{Reason: ErrBadExtension, Detail: detail}
	}
	if size == 0 {
		return &InputError{Reason: ErrEmpty}
	}
	if p.MaxBytes > 0 && size > p.MaxBytes {
		return &InputError{Reason: ErrTooLarge, Detail: fmt.Sprintf("limit is %s", HumanBytes(p.MaxBytes))}
	}
	return nil
}

func (p Policy) allows(ext string) bool {
	if ext == "" {
		return false
	}
	for _, e := range p.extensions() {
		if e == ext {
			return true
		}
	}
	return false
}

func (p Policy) extensions() []string {
	out := make([]string, 0, len(p.AllowedExtensions))
	for _, e := range p.AllowedExtensions {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		out = append(out, e)
	}
	return out
}

// HumanBytes formats n as a short size such as "50 MB".
func HumanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	v := float64(n) / float64(div)
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d %cB", int64(v), "KMGTPE"[exp])
	}
	return fmt.Sprintf("%.1f %cB", v, "KMGTPE"[exp])
}

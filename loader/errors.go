package loader

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptySource occurs when a document has no content.
	ErrEmptySource = errors.New("document source is empty")

	// ErrNoProgram occurs when a document has no program.
	ErrNoProgram = errors.New("document has no program")
)

// DecodeError reports a malformed part of a document.
type DecodeError struct {
	Source string
	Line   int
	Reason string
}

func (e *DecodeError) Error() string {
	switch {
	case e.Source != "" && 0 < e.Line:
		return fmt.Sprintf("%s:%d: %s", e.Source, e.Line, e.Reason)
	case e.Source != "":
		return e.Source + ": " + e.Reason
	}
	return e.Reason
}

// UnsupportedFormat occurs when a document's format version isn't
// one this package can read.
type UnsupportedFormat struct {
	Format     string
	Constraint string
}

func (e *UnsupportedFormat) Error() string {
	return fmt.Sprintf("document format %q doesn't satisfy %s", e.Format, e.Constraint)
}

// FetchError reports a failure to obtain a document.
type FetchError struct {
	Ref    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("couldn't fetch %s: %v", e.Ref, e.Err)
	}
	return fmt.Sprintf("couldn't fetch %s: status %d", e.Ref, e.Status)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

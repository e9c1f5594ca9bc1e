package ingest

import (
	"errors"
	"fmt"
)

// ErrSourceUnreadable marks failures to open or read the source file. The
// service replaces the result with an empty set when it sees one.
var ErrSourceUnreadable = errors.New("source unreadable")

// SourceError wraps the underlying I/O failure for a source location.
type SourceError struct {
	Location string
	Err      error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrSourceUnreadable, e.Location, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match ErrSourceUnreadable anywhere in the chain.
func (e *SourceError) Is(target error) bool {
	return target == ErrSourceUnreadable
}

// Unreadable wraps err as a SourceError for location. A nil err stays nil.
func Unreadable(location string, err error) error {
	if err == nil {
		return nil
	}
	return &SourceError{Location: location, Err: err}
}

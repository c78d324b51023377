package pipeline

import (
	"errors"
	"fmt"
)

// Kind classifies a failure as run-fatal or skip-and-continue
type Kind int

const (
	// KindInput covers a missing file, no document or no output folder
	KindInput Kind = iota + 1
	// KindDocument covers malformed or unreadable PDFs
	KindDocument
	// KindImage covers a single image that could not be extracted, decoded, composed or saved
	KindImage
	// KindUnexpected covers everything else
	KindUnexpected
)

func (k Kind) String() string {
	switch k {
	case KindInput:
		return "input"
	case KindDocument:
		return "document"
	case KindImage:
		return "image"
	case KindUnexpected:
		return "unexpected"
	default:
		return "unknown"
	}
}

// Fatal reports whether a failure of this kind aborts the whole run
func (k Kind) Fatal() bool {
	return k != KindImage
}

var (
	ErrNoDocument     = errors.New("no PDF file selected")
	ErrNoOutputFolder = errors.New("no output folder specified")
	ErrNoImages       = errors.New("no images found in the document")
)

// Error is returned by Preview and Extract when a run fails
type Error struct {
	Kind  Kind
	Stage string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s failed (%s error): %v", e.Stage, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of a pipeline error, or KindUnexpected for any other error
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindUnexpected
}

// Warning records an image that was skipped after a local failure
type Warning struct {
	Page  int
	Image int
	Stage string
	Err   error
}

// Kind is always KindImage: a warning never ends a run
func (w Warning) Kind() Kind {
	return KindImage
}

func (w Warning) String() string {
	return fmt.Sprintf("Warning: Failed to %s image %d on page %d: %v", w.Stage, w.Image, w.Page, w.Err)
}

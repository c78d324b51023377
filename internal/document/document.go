package document

import "errors"

var (
	// ErrFileNotFound is returned before any parsing when the path is not a regular file
	ErrFileNotFound = errors.New("file not found")
	// ErrDocumentRead is returned when the file cannot be opened or parsed as a PDF
	ErrDocumentRead = errors.New("unable to read document")
	// ErrUnsupportedImage marks an image whose encoding cannot be extracted
	ErrUnsupportedImage = errors.New("unsupported image encoding")
)

// ImageRef identifies one image drawn on a page.
// Err is set when the image is listed but its bytes could not be extracted.
type ImageRef struct {
	ID   int    // object number of the image
	Mask int    // object number of the soft mask, 0 when absent
	Data []byte // encoded image bytes
	Err  error
}

// Reader exposes the images of an open document.
// Pages are zero-based. Implementations must be closed after use.
type Reader interface {
	PageCount() int
	PageImages(pageIndex int) ([]ImageRef, error)
	Resolve(id int) ([]byte, error)
	Close() error
}

// ImageRecord is one image found while enumerating a document
type ImageRecord struct {
	Page     int // zero-based page index
	Sequence int // one-based index of the image on its page
	ID       int
	Mask     int
	Data     []byte
	Err      error // extraction failure of this image only
}

// SizeKiB returns the encoded payload size in kibibytes
func (r ImageRecord) SizeKiB() float64 {
	return float64(len(r.Data)) / 1024
}

// HasMask reports whether the record carries a usable soft mask reference
func (r ImageRecord) HasMask() bool {
	return r.Mask > 0
}

package document

import (
	"fmt"
	"iter"
)

// Enumerator walks every image of a document in page order
type Enumerator struct {
	Reader Reader

	// OnPage, when set, is called once per page before its images are yielded
	OnPage func(pageIndex, imageCount int)
}

// NewEnumerator creates an enumerator over an open reader
func NewEnumerator(r Reader) *Enumerator {
	return &Enumerator{Reader: r}
}

// Records yields every image ordered by page index, then by position on the page.
// A page that cannot be listed yields an error and ends the sequence. An image
// that could not be extracted is still yielded, with ImageRecord.Err set, so
// positions on the page stay stable.
func (e *Enumerator) Records() iter.Seq2[ImageRecord, error] {
	return func(yield func(ImageRecord, error) bool) {
		for page := 0; page < e.Reader.PageCount(); page++ {
			refs, err := e.Reader.PageImages(page)
			if err != nil {
				yield(ImageRecord{Page: page}, fmt.Errorf("failed to list images on page %d: %w", page, err))
				return
			}

			if e.OnPage != nil {
				e.OnPage(page, len(refs))
			}

			for i, ref := range refs {
				rec := ImageRecord{
					Page:     page,
					Sequence: i + 1,
					ID:       ref.ID,
					Mask:     ref.Mask,
					Data:     ref.Data,
					Err:      ref.Err,
				}
				if !yield(rec, nil) {
					return
				}
			}
		}
	}
}

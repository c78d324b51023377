package pipeline

import (
	"image"

	"github.com/lehigh-university-libraries/pdfimages/internal/config"
	"github.com/lehigh-university-libraries/pdfimages/internal/dedup"
	"github.com/lehigh-university-libraries/pdfimages/internal/document"
)

// Decision is the outcome of the accept filter for one record
type Decision int

const (
	Accepted Decision = iota
	TooSmall
	Duplicate
)

func (d Decision) String() string {
	switch d {
	case Accepted:
		return "accepted"
	case TooSmall:
		return "too small"
	case Duplicate:
		return "duplicate"
	default:
		return "unknown"
	}
}

// DecodeFunc lazily decodes a record's raster
type DecodeFunc func() (image.Image, error)

// Verdict carries the decision and whatever the filter had to compute for it
type Verdict struct {
	Decision    Decision
	Image       image.Image // set when the filter decoded the record
	Fingerprint dedup.Fingerprint
}

// Filter applies the size threshold and duplicate check
type Filter struct {
	opts    config.Options
	tracker *dedup.Tracker
	hasher  *dedup.Hasher
}

// NewFilter creates a filter sharing the run's tracker
func NewFilter(opts config.Options, tracker *dedup.Tracker, hasher *dedup.Hasher) *Filter {
	return &Filter{
		opts:    opts,
		tracker: tracker,
		hasher:  hasher,
	}
}

// Accept decides whether rec is kept. The size check runs first and never
// decodes. With deduplication on, an accepted fingerprint is added to the
// tracker; a duplicate is not. A decode or hash error leaves the tracker
// untouched.
func (f *Filter) Accept(rec document.ImageRecord, decode DecodeFunc) (Verdict, error) {
	if f.opts.UseThreshold && rec.SizeKiB() < float64(f.opts.ThresholdKB) {
		return Verdict{Decision: TooSmall}, nil
	}

	if !f.opts.RemoveDuplicates {
		return Verdict{Decision: Accepted}, nil
	}

	img, err := decode()
	if err != nil {
		return Verdict{}, err
	}

	fp, err := f.hasher.Fingerprint(img)
	if err != nil {
		return Verdict{}, err
	}

	dup, err := f.tracker.IsDuplicate(fp)
	if err != nil {
		return Verdict{}, err
	}
	if dup {
		return Verdict{Decision: Duplicate, Image: img, Fingerprint: fp}, nil
	}

	f.tracker.Insert(fp)
	return Verdict{Decision: Accepted, Image: img, Fingerprint: fp}, nil
}

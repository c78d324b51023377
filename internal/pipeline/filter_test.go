package pipeline

import (
	"errors"
	"image"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/lehigh-university-libraries/pdfimages/internal/config"
	"github.com/lehigh-university-libraries/pdfimages/internal/dedup"
	"github.com/lehigh-university-libraries/pdfimages/internal/document"
)

func newFilter(t *testing.T, opts config.Options) (*Filter, *dedup.Tracker) {
	t.Helper()
	hasher, err := dedup.NewHasher(opts.PHashSize)
	if err != nil {
		t.Fatalf("NewHasher failed: %v", err)
	}
	tracker := dedup.NewTracker(opts.PHashThreshold)
	return NewFilter(opts, tracker, hasher), tracker
}

func record(sizeKiB float64) document.ImageRecord {
	return document.ImageRecord{Data: make([]byte, int(sizeKiB*1024))}
}

func TestFilterThreshold(t *testing.T) {
	tests := []struct {
		name      string
		enabled   bool
		threshold int
		sizes     []float64
		expected  []float64
	}{
		{"mixed sizes", true, 10, []float64{50, 5, 200}, []float64{50, 200}},
		{"boundary is kept", true, 10, []float64{10, 9.99}, []float64{10}},
		{"nothing passes", true, 500, []float64{50, 200}, nil},
		{"disabled", false, 10, []float64{1, 0.5}, []float64{1, 0.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := config.Default()
			opts.UseThreshold = tt.enabled
			opts.ThresholdKB = tt.threshold
			opts.RemoveDuplicates = false
			f, _ := newFilter(t, opts)

			var accepted []float64
			for _, size := range tt.sizes {
				rec := record(size)
				v, err := f.Accept(rec, func() (image.Image, error) {
					t.Fatal("decode should not run without deduplication")
					return nil, nil
				})
				if err != nil {
					t.Fatalf("Accept failed: %v", err)
				}
				if v.Decision == Accepted {
					accepted = append(accepted, rec.SizeKiB())
				}
			}
			if diff := cmp.Diff(tt.expected, accepted); diff != "" {
				t.Errorf("Accepted sizes mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFilterSizeCheckRunsFirst(t *testing.T) {
	f, tracker := newFilter(t, config.Default())

	decoded := false
	v, err := f.Accept(record(1), func() (image.Image, error) {
		decoded = true
		return tiles(1), nil
	})
	if err != nil {
		t.Fatalf("Accept failed: %v", err)
	}
	if v.Decision != TooSmall {
		t.Errorf("Expected too small, got %v", v.Decision)
	}
	if decoded {
		t.Error("Expected no decode for a too small image")
	}
	if tracker.Len() != 0 {
		t.Errorf("Expected empty tracker, got %d", tracker.Len())
	}
}

func TestFilterDuplicates(t *testing.T) {
	f, tracker := newFilter(t, config.Default())
	decode := func(seed int64) DecodeFunc {
		return func() (image.Image, error) { return tiles(seed), nil }
	}

	var got []Decision
	for _, seed := range []int64{1, 1, 2, 1} {
		v, err := f.Accept(record(20), decode(seed))
		if err != nil {
			t.Fatalf("Accept failed: %v", err)
		}
		got = append(got, v.Decision)
	}

	want := []Decision{Accepted, Duplicate, Accepted, Duplicate}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Decisions mismatch (-want +got):\n%s", diff)
	}
	if tracker.Len() != 2 {
		t.Errorf("Expected 2 stored fingerprints, got %d", tracker.Len())
	}
}

func TestFilterDecodeError(t *testing.T) {
	f, tracker := newFilter(t, config.Default())
	boom := errors.New("bad bytes")

	_, err := f.Accept(record(20), func() (image.Image, error) { return nil, boom })
	if !errors.Is(err, boom) {
		t.Errorf("Expected decode error, got %v", err)
	}
	if tracker.Len() != 0 {
		t.Errorf("Expected empty tracker, got %d", tracker.Len())
	}
}

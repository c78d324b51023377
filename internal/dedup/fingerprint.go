package dedup

import (
	"errors"
	"fmt"
	"image"
	"slices"

	"github.com/corona10/goimagehash"
	"github.com/corona10/goimagehash/transforms"
	"github.com/disintegration/imaging"
)

// Fingerprint is the perceptual signature of a decoded image
type Fingerprint struct {
	hash *goimagehash.ExtImageHash
}

// NewFingerprint builds a fingerprint from packed hash words, most
// significant bit first. bits is the number of meaningful bits.
func NewFingerprint(words []uint64, bits int) Fingerprint {
	return Fingerprint{hash: goimagehash.NewExtImageHash(words, goimagehash.PHash, bits)}
}

// Bits returns the fingerprint length in bits
func (f Fingerprint) Bits() int {
	if f.hash == nil {
		return 0
	}
	return f.hash.Bits()
}

// Distance returns the Hamming distance between two fingerprints of equal length
func (f Fingerprint) Distance(other Fingerprint) (int, error) {
	if f.hash == nil || other.hash == nil {
		return 0, errors.New("empty fingerprint")
	}
	if f.Bits() != other.Bits() {
		return 0, fmt.Errorf("fingerprint lengths differ: %d and %d bits", f.Bits(), other.Bits())
	}
	return f.hash.Distance(other.hash)
}

func (f Fingerprint) String() string {
	if f.hash == nil {
		return ""
	}
	return f.hash.ToString()
}

// Hasher computes perceptual hashes of a fixed size
type Hasher struct {
	size int
}

// NewHasher creates a hasher producing 4*size*size bit fingerprints
func NewHasher(size int) (*Hasher, error) {
	if size <= 0 {
		return nil, fmt.Errorf("hash size must be a positive integer, got %d", size)
	}
	return &Hasher{size: size}, nil
}

// Bits returns the length of the fingerprints this hasher produces
func (h *Hasher) Bits() int {
	return 4 * h.size * h.size
}

// Fingerprint hashes a decoded image. The image is scaled to a gray square
// four times the block side (rounded up to a power of two for the DCT), and
// each coefficient of the low-frequency 2*size by 2*size block is compared
// against the block median.
func (h *Hasher) Fingerprint(img image.Image) (Fingerprint, error) {
	if img == nil || img.Bounds().Empty() {
		return Fingerprint{}, errors.New("failed to compute perceptual hash: empty image")
	}

	side := 2 * h.size
	n := dctSide(side)
	pixels := transforms.Rgb2Gray(imaging.Resize(img, n, n, imaging.Linear))
	coeffs := transforms.DCT2D(pixels, n, n)

	block := make([]float64, 0, side*side)
	for y := 0; y < side; y++ {
		block = append(block, coeffs[y][:side]...)
	}
	median := medianOf(block)

	bits := len(block)
	words := make([]uint64, (bits+63)/64)
	for i, c := range block {
		if c > median {
			words[i/64] |= 1 << uint(63-i%64)
		}
	}
	return NewFingerprint(words, bits), nil
}

// dctSide returns the smallest power of two of at least 4*side
func dctSide(side int) int {
	n := 1
	for n < 4*side {
		n <<= 1
	}
	return n
}

func medianOf(values []float64) float64 {
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	return sorted[len(sorted)/2]
}

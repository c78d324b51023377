package dedup

// Tracker remembers the fingerprints accepted during one run.
// It is owned by a single run and is not safe for concurrent use.
type Tracker struct {
	tolerance int
	seen      []Fingerprint
}

// NewTracker creates an empty tracker. Fingerprints within tolerance
// Hamming distance of a stored one count as duplicates.
func NewTracker(tolerance int) *Tracker {
	return &Tracker{tolerance: tolerance}
}

// Reset forgets every stored fingerprint
func (t *Tracker) Reset() {
	t.seen = nil
}

// IsDuplicate reports whether fp is within tolerance of any stored fingerprint.
// Stored fingerprints are scanned in insertion order and the first match wins.
func (t *Tracker) IsDuplicate(fp Fingerprint) (bool, error) {
	for _, s := range t.seen {
		d, err := s.Distance(fp)
		if err != nil {
			return false, err
		}
		if d <= t.tolerance {
			return true, nil
		}
	}
	return false, nil
}

// Insert appends fp unconditionally. Callers only insert non-duplicates.
func (t *Tracker) Insert(fp Fingerprint) {
	t.seen = append(t.seen, fp)
}

// Len returns the number of stored fingerprints
func (t *Tracker) Len() int {
	return len(t.seen)
}

package backend

import "fmt"

// SkippedFeature records one (object type, feature) pair a write-back
// could not apply, with the reason.
type SkippedFeature struct {
	Object  string `json:"object"`
	Feature string `json:"feature"`
	Reason  string `json:"reason"`
}

// String renders the skip for logs.
func (s SkippedFeature) String() string {
	return fmt.Sprintf("%s/%s: %s", s.Object, s.Feature, s.Reason)
}

// SetReport carries per-item outcomes of a feature write-back. Skips are
// recoverable by contract: batch callers inspect partial success here
// instead of catching errors.
type SetReport struct {
	// Applied counts columns written into the engine's tables.
	Applied int `json:"applied"`

	// Skipped lists columns the engine could not accept, with reasons.
	Skipped []SkippedFeature `json:"skipped,omitempty"`
}

// OK reports whether every requested column was applied.
func (r *SetReport) OK() bool {
	return len(r.Skipped) == 0
}

// Merge folds another report into r. Used by batch write-backs.
func (r *SetReport) Merge(other *SetReport) {
	if other == nil {
		return
	}
	r.Applied += other.Applied
	r.Skipped = append(r.Skipped, other.Skipped...)
}

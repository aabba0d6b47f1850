package postprocess

import (
	"iter"

	"github.com/chewxy/math32"
	"github.com/pkg/errors"
)

// ConfidenceFilter keeps candidates whose confidence is strictly above Threshold.
type ConfidenceFilter struct {
	Threshold float32
}

// Keep reports whether c passes the filter. NaN confidences never pass.
func (f ConfidenceFilter) Keep(c Candidate) bool {
	return c.Confidence > f.Threshold
}

// Filter streams the candidates of seq that pass the filter.
func (f ConfidenceFilter) Filter(seq iter.Seq[Candidate]) iter.Seq[Candidate] {
	return func(yield func(Candidate) bool) {
		for c := range seq {
			if !f.Keep(c) {
				continue
			}
			if !yield(c) {
				return
			}
		}
	}
}

func validateThreshold(name string, v float32) error {
	if math32.IsNaN(v) || v < 0 || v > 1 {
		return errors.Wrapf(ErrInvalidConfiguration, "%s %v is outside [0, 1]", name, v)
	}
	return nil
}

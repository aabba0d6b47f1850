// Package stereo - Pairs detections from the left and right views of a
// stereo rig.
package stereo

import (
	"github.com/chewxy/math32"
	"github.com/pkg/errors"

	"github.com/nvr-ai/go-detect/models/postprocess"
)

// Weights scale each term of the pairing cost.
type Weights struct {
	// Vertical applies per pixel of center row difference; rectified views
	// should put the same object on the same row.
	Vertical float32 `json:"vertical" koanf:"vertical"`
	// Horizontal applies per pixel of positive disparity (right center to the
	// right of the left center).
	Horizontal float32 `json:"horizontal" koanf:"horizontal"`
	// NegativeDisparity applies per pixel when the right center lies left of
	// the left center.
	NegativeDisparity float32 `json:"negative_disparity" koanf:"negativedisparity"`
	// Size applies to the relative area difference in [0, 1].
	Size float32 `json:"size" koanf:"size"`
	// ClassMismatch is added when class ids differ. Pairs costing this much
	// or more are never matched.
	ClassMismatch float32 `json:"class_mismatch" koanf:"classmismatch"`
}

// DefaultWeights returns the weights tuned for a horizontal rig.
func DefaultWeights() Weights {
	return Weights{
		Vertical:          5,
		Horizontal:        1,
		NegativeDisparity: 10,
		Size:              2,
		ClassMismatch:     150,
	}
}

// Pair links a left detection to a right detection by slice index.
type Pair struct {
	Left  int `json:"left"`
	Right int `json:"right"`
}

// Matcher pairs detections across two views with a greedy minimum-cost
// assignment.
type Matcher struct {
	weights Weights
	cutoff  int
}

// NewMatcher creates a matcher.
//
// Arguments:
//   - w: The cost weights; all must be finite and non-negative, and
//     ClassMismatch must be positive.
//
// Returns:
//   - *Matcher: The matcher.
//   - error: An ErrInvalidConfiguration error.
func NewMatcher(w Weights) (*Matcher, error) {
	for name, v := range map[string]float32{
		"vertical":           w.Vertical,
		"horizontal":         w.Horizontal,
		"negative disparity": w.NegativeDisparity,
		"size":               w.Size,
		"class mismatch":     w.ClassMismatch,
	} {
		if math32.IsNaN(v) || math32.IsInf(v, 0) || v < 0 {
			return nil, errors.Wrapf(postprocess.ErrInvalidConfiguration, "%s weight %v must be finite and non-negative", name, v)
		}
	}
	if w.ClassMismatch == 0 {
		return nil, errors.Wrap(postprocess.ErrInvalidConfiguration, "class mismatch weight must be positive")
	}
	return &Matcher{weights: w, cutoff: fixed(w.ClassMismatch)}, nil
}

// fixed converts a cost to hundredths so ties compare exactly.
func fixed(cost float32) int {
	return int(cost * 100)
}

// Cost scores how unlikely l and r are to be the same object, in hundredths.
func (m *Matcher) Cost(l, r postprocess.Detection) int {
	lc := l.Rect().Center()
	rc := r.Rect().Center()

	cost := m.weights.Vertical * math32.Abs(rc.CY-lc.CY)

	if dx := rc.CX - lc.CX; dx < 0 {
		cost += m.weights.NegativeDisparity * -dx
	} else {
		cost += m.weights.Horizontal * dx
	}

	la, ra := l.Width*l.Height, r.Width*r.Height
	if larger := math32.Max(la, ra); larger > 0 {
		cost += m.weights.Size * math32.Abs(ra-la) / larger
	}

	if l.ClassID != r.ClassID {
		cost += m.weights.ClassMismatch
	}
	return fixed(cost)
}

// CostMatrix returns Cost for every left/right combination, indexed
// [left][right].
func (m *Matcher) CostMatrix(left, right []postprocess.Detection) [][]int {
	costs := make([][]int, len(left))
	for i := range left {
		costs[i] = make([]int, len(right))
		for j := range right {
			costs[i][j] = m.Cost(left[i], right[j])
		}
	}
	return costs
}

// Match pairs detections greedily: the cheapest remaining combination is
// taken until none costs less than the class mismatch weight. Each detection
// is used at most once; ties go to the lowest left then right index.
//
// Arguments:
//   - left, right: The detections of each view for the same instant.
//
// Returns:
//   - The pairs in the order they were chosen. Empty when either side is.
func (m *Matcher) Match(left, right []postprocess.Detection) []Pair {
	pairs := make([]Pair, 0, min(len(left), len(right)))
	if len(left) == 0 || len(right) == 0 {
		return pairs
	}

	costs := m.CostMatrix(left, right)
	leftUsed := make([]bool, len(left))
	rightUsed := make([]bool, len(right))

	for {
		best, bestLeft, bestRight := m.cutoff, -1, -1
		for i, row := range costs {
			if leftUsed[i] {
				continue
			}
			for j, c := range row {
				if !rightUsed[j] && c < best {
					best, bestLeft, bestRight = c, i, j
				}
			}
		}
		if bestLeft < 0 {
			return pairs
		}
		pairs = append(pairs, Pair{Left: bestLeft, Right: bestRight})
		leftUsed[bestLeft] = true
		rightUsed[bestRight] = true
	}
}

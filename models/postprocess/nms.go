package postprocess

import (
	"sort"
	"sync"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-detect/images"
)

// NMSConfig defines parameters for Non-Maximum Suppression.
//
// Suppression is class-agnostic unless ClassAware is set: two overlapping
// boxes with different class ids still suppress one another, as with
// OpenCV's NMSBoxes. Partition by class, or set ClassAware, for per-class NMS.
type NMSConfig struct {
	IoUThreshold  float32 `json:"iou_threshold" yaml:"iou_threshold"`   // Overlap above which a box is suppressed.
	ClassAware    bool    `json:"class_aware" yaml:"class_aware"`       // If true, suppress only within the same class.
	MaxDetections int     `json:"max_detections" yaml:"max_detections"` // Stop after this many kept boxes; 0 keeps all.
	NumWorkers    int     `json:"num_workers" yaml:"num_workers"`       // Goroutines for the IoU sweep; <= 1 runs greedily.
}

// DefaultNMSConfig returns class-agnostic NMS at IoU 0.4.
func DefaultNMSConfig() *NMSConfig {
	return &NMSConfig{IoUThreshold: 0.4}
}

// Validate checks the NMS settings.
func (c *NMSConfig) Validate() error {
	if err := validateThreshold("nms threshold", c.IoUThreshold); err != nil {
		return err
	}
	if c.MaxDetections < 0 {
		return errors.Wrapf(ErrInvalidConfiguration, "max detections must not be negative, got %d", c.MaxDetections)
	}
	if c.NumWorkers < 0 {
		return errors.Wrapf(ErrInvalidConfiguration, "worker count must not be negative, got %d", c.NumWorkers)
	}
	return nil
}

func (c *NMSConfig) suppresses(anchor, other *ScaledBox) bool {
	if c.ClassAware && anchor.ClassID != other.ClassID {
		return false
	}
	return images.CalculateIoU(anchor.Box, other.Box) > c.IoUThreshold
}

func (c *NMSConfig) full(kept int) bool {
	return c.MaxDetections > 0 && kept >= c.MaxDetections
}

// Suppress runs ApplyNMS when more than one worker is configured and
// ApplyGreedyNMS otherwise.
func Suppress(boxes []ScaledBox, config *NMSConfig) []Detection {
	if config != nil && config.NumWorkers > 1 {
		return ApplyNMS(boxes, config)
	}
	return ApplyGreedyNMS(boxes, config)
}

// sortByConfidence returns a copy of boxes ordered by descending confidence.
// Ties keep their input order.
func sortByConfidence(boxes []ScaledBox) []ScaledBox {
	sorted := make([]ScaledBox, len(boxes))
	copy(sorted, boxes)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Confidence > sorted[j].Confidence
	})
	return sorted
}

// ApplyGreedyNMS performs standard greedy Non-Maximum Suppression.
//
// Boxes are stable-sorted by descending confidence, then the best remaining
// box is repeatedly kept and every remaining box whose IoU with it exceeds
// the threshold is discarded.
//
// Arguments:
//   - boxes: Confidence-filtered boxes in candidate order. Not modified.
//   - config: NMS configuration; nil uses DefaultNMSConfig.
//
// Returns:
//   - The kept detections, highest confidence first. Empty (not nil) when
//     boxes is empty.
func ApplyGreedyNMS(boxes []ScaledBox, config *NMSConfig) []Detection {
	if config == nil {
		config = DefaultNMSConfig()
	}

	sorted := sortByConfidence(boxes)
	n := len(sorted)
	filtered := make([]Detection, 0, n)
	used := make([]bool, n)

	for i := 0; i < n; i++ {
		if used[i] {
			continue
		}

		anchor := &sorted[i]
		filtered = append(filtered, NewDetection(*anchor))
		used[i] = true
		if config.full(len(filtered)) {
			break
		}

		for j := i + 1; j < n; j++ {
			if used[j] {
				continue
			}
			if config.suppresses(anchor, &sorted[j]) {
				used[j] = true
			}
		}
	}

	return filtered
}

// minSpan is the smallest slice of boxes worth handing to a worker.
const minSpan = 64

// ApplyNMS produces the same result as ApplyGreedyNMS but splits each
// anchor's IoU sweep across config.NumWorkers goroutines.
//
// Each worker owns a disjoint range of indices, so the suppression flags are
// written without locking; the sweep for one anchor completes before the
// next anchor is chosen.
//
// Arguments:
//   - boxes: Confidence-filtered boxes in candidate order. Not modified.
//   - config: NMS configuration; nil uses DefaultNMSConfig.
//
// Returns:
//   - The kept detections, highest confidence first.
func ApplyNMS(boxes []ScaledBox, config *NMSConfig) []Detection {
	if config == nil {
		config = DefaultNMSConfig()
	}
	workers := config.NumWorkers
	if workers <= 1 || len(boxes) < 2*minSpan {
		return ApplyGreedyNMS(boxes, config)
	}

	sorted := sortByConfidence(boxes)
	n := len(sorted)
	filtered := make([]Detection, 0, n)
	used := make([]bool, n)

	type span struct {
		anchor, lo, hi int
	}
	jobs := make(chan span)
	var round sync.WaitGroup

	for w := 0; w < workers; w++ {
		go func() {
			for s := range jobs {
				anchor := &sorted[s.anchor]
				for j := s.lo; j < s.hi; j++ {
					if !used[j] && config.suppresses(anchor, &sorted[j]) {
						used[j] = true
					}
				}
				round.Done()
			}
		}()
	}
	defer close(jobs)

	for i := 0; i < n; i++ {
		if used[i] {
			continue
		}
		filtered = append(filtered, NewDetection(sorted[i]))
		used[i] = true
		if config.full(len(filtered)) {
			break
		}

		rest := n - (i + 1)
		if rest == 0 {
			break
		}
		size := max((rest+workers-1)/workers, minSpan)
		for lo := i + 1; lo < n; lo += size {
			round.Add(1)
			jobs <- span{anchor: i, lo: lo, hi: min(lo+size, n)}
		}
		round.Wait()
	}

	return filtered
}

package postprocess

import (
	"iter"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-detect/images"
)

// Decoder turns a raw tensor into candidate detections for one layout.
type Decoder struct {
	// Layout selects the row-extraction rules.
	Layout Layout
	// NumClasses is the fixed class count of the model.
	NumClasses int
	// ConfidenceThreshold gates objectness (LayoutSeparateObjectness) or the
	// best class score (LayoutMerged).
	ConfidenceThreshold float32
	// ScoreThreshold is the per-class gate of LayoutSeparateObjectness. It is
	// ignored by LayoutMerged.
	ScoreThreshold float32
}

// Validate checks the decoder settings.
func (d Decoder) Validate() error {
	if !d.Layout.Valid() {
		return errors.Wrapf(ErrInvalidConfiguration, "unknown layout %v", d.Layout)
	}
	if d.NumClasses <= 0 {
		return errors.Wrapf(ErrInvalidConfiguration, "class count must be positive, got %d", d.NumClasses)
	}
	if err := validateThreshold("confidence threshold", d.ConfidenceThreshold); err != nil {
		return err
	}
	return validateThreshold("score threshold", d.ScoreThreshold)
}

// Decode validates the tensor shape and returns a lazy, single-pass sequence
// of candidates.
//
// The whole shape is checked before anything is yielded, so a malformed
// tensor never produces partial output.
//
// Arguments:
//   - t: The raw tensor.
//
// Returns:
//   - The candidate sequence.
//   - ErrMalformedTensor if the row width does not match the class count, or
//     ErrInvalidConfiguration if the decoder itself is misconfigured.
//
// Example:
//
// ```go
//
//	seq, err := decoder.Decode(raw)
//	if err != nil {
//	    return err
//	}
//	for c := range seq {
//	    fmt.Println(c.ClassID, c.Confidence)
//	}
//
// ```
func (d Decoder) Decode(t RawTensor) (iter.Seq[Candidate], error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	if err := t.validate(); err != nil {
		return nil, err
	}

	// A zero-valued tensor carries no rows at all.
	if t.Shape == [3]int{} {
		return func(func(Candidate) bool) {}, nil
	}

	width := d.Layout.RowWidth(d.NumClasses)
	switch d.Layout {
	case LayoutSeparateObjectness:
		if t.Shape[2] != width {
			return nil, errors.Wrapf(ErrMalformedTensor,
				"row width %d, want %d (5 + %d classes)", t.Shape[2], width, d.NumClasses)
		}
		return d.separate(t), nil
	default:
		if t.Shape[0] != 1 {
			return nil, errors.Wrapf(ErrMalformedTensor, "batch dimension %d, want 1", t.Shape[0])
		}
		if t.Shape[1] != width {
			return nil, errors.Wrapf(ErrMalformedTensor,
				"row width %d, want %d (4 + %d classes)", t.Shape[1], width, d.NumClasses)
		}
		return d.merged(t), nil
	}
}

// separate walks [layers][candidates][5+classes]. Objectness gates each row
// before any class score is read.
func (d Decoder) separate(t RawTensor) iter.Seq[Candidate] {
	return func(yield func(Candidate) bool) {
		width := t.Shape[2]
		rows := t.Shape[0] * t.Shape[1]
		for i := 0; i < rows; i++ {
			row := t.Data[i*width : (i+1)*width]

			objectness := row[4]
			if !(objectness >= d.ConfidenceThreshold) {
				continue
			}

			classID, score := argmax(row[5:])
			if !(score > d.ScoreThreshold) {
				continue
			}

			if !yield(Candidate{
				Box:        images.CenterBox{CX: row[0], CY: row[1], W: row[2], H: row[3]},
				Confidence: objectness,
				ClassID:    classID,
				Index:      i,
			}) {
				return
			}
		}
	}
}

// merged walks [1][4+classes][candidates] column by column, which is the
// transposed [candidates][4+classes] view.
func (d Decoder) merged(t RawTensor) iter.Seq[Candidate] {
	return func(yield func(Candidate) bool) {
		n := t.Shape[2]
		at := func(col, i int) float32 {
			return t.Data[col*n+i]
		}
		for i := 0; i < n; i++ {
			classID, best := 0, at(4, i)
			for c := 1; c < d.NumClasses; c++ {
				if s := at(4+c, i); s > best {
					best = s
					classID = c
				}
			}
			if !(best > d.ConfidenceThreshold) {
				continue
			}

			if !yield(Candidate{
				Box:        images.CenterBox{CX: at(0, i), CY: at(1, i), W: at(2, i), H: at(3, i)},
				Confidence: best,
				ClassID:    classID,
				Index:      i,
			}) {
				return
			}
		}
	}
}

// argmax returns the index and value of the first maximum.
func argmax(scores []float32) (int, float32) {
	idx, best := 0, scores[0]
	for i := 1; i < len(scores); i++ {
		if scores[i] > best {
			best = scores[i]
			idx = i
		}
	}
	return idx, best
}

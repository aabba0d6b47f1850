package postprocess

import (
	"iter"

	"github.com/pkg/errors"
)

// Transformer converts center-form network-space boxes into corner-form
// source-image boxes.
type Transformer struct {
	xScale float32
	yScale float32
}

// NewTransformer computes the horizontal and vertical rescale factors.
//
// The two factors are independent; the network input is resized without
// preserving aspect ratio.
//
// Arguments:
//   - networkWidth, networkHeight: The model input resolution.
//   - sourceWidth, sourceHeight: The resolution of the frame the tensor came from.
//
// Returns:
//   - The transformer, or ErrInvalidInput for non-positive dimensions.
func NewTransformer(networkWidth, networkHeight, sourceWidth, sourceHeight int) (Transformer, error) {
	if networkWidth <= 0 || networkHeight <= 0 {
		return Transformer{}, errors.Wrapf(ErrInvalidInput,
			"network input %dx%d must be positive", networkWidth, networkHeight)
	}
	if sourceWidth <= 0 || sourceHeight <= 0 {
		return Transformer{}, errors.Wrapf(ErrInvalidInput,
			"source image %dx%d must be positive", sourceWidth, sourceHeight)
	}
	return Transformer{
		xScale: float32(sourceWidth) / float32(networkWidth),
		yScale: float32(sourceHeight) / float32(networkHeight),
	}, nil
}

// Scale returns the horizontal and vertical factors.
func (t Transformer) Scale() (float32, float32) {
	return t.xScale, t.yScale
}

// Transform converts and rescales a single candidate. Coordinates are not
// clamped to the image bounds.
func (t Transformer) Transform(c Candidate) ScaledBox {
	return ScaledBox{
		Box:        c.Box.Rect().Scale(t.xScale, t.yScale),
		Confidence: c.Confidence,
		ClassID:    c.ClassID,
		Index:      c.Index,
	}
}

// TransformAll streams Transform over seq.
func (t Transformer) TransformAll(seq iter.Seq[Candidate]) iter.Seq[ScaledBox] {
	return func(yield func(ScaledBox) bool) {
		for c := range seq {
			if !yield(t.Transform(c)) {
				return
			}
		}
	}
}

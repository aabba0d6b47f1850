// Package onnx - Adapters from ONNX Runtime outputs to detection tensors.
package onnx

import (
	"math"

	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"

	"github.com/nvr-ai/go-detect/models/postprocess"
)

// OutputTensor is the read side of an ONNX Runtime float32 tensor.
// *ort.Tensor[float32] satisfies it.
type OutputTensor interface {
	GetShape() ort.Shape
	GetData() []float32
}

var _ OutputTensor = (*ort.Tensor[float32])(nil)

// FromValue adapts an ONNX Runtime output to a raw tensor.
//
// A 2-dimensional [rows][cols] output is promoted to [1][rows][cols].
//
// Arguments:
//   - v: The output tensor.
//
// Returns:
//   - The raw tensor sharing v's data, or ErrMalformedTensor.
func FromValue(v OutputTensor) (postprocess.RawTensor, error) {
	if v == nil {
		return postprocess.RawTensor{}, errors.Wrap(postprocess.ErrMalformedTensor, "output is nil")
	}

	shape := v.GetShape()
	if len(shape) == 2 {
		shape = append(ort.Shape{1}, shape...)
	}
	if len(shape) != 3 {
		return postprocess.RawTensor{}, errors.Wrapf(postprocess.ErrMalformedTensor,
			"output shape %v is not 2- or 3-dimensional", shape)
	}

	var dims [3]int
	for i, d := range shape {
		if d < 0 || d > math.MaxInt {
			return postprocess.RawTensor{}, errors.Wrapf(postprocess.ErrMalformedTensor,
				"output dimension %d out of range (%d)", i, d)
		}
		dims[i] = int(d)
	}

	return postprocess.NewRawTensor(dims, v.GetData())
}

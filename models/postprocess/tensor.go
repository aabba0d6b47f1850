package postprocess

import (
	"math"

	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// RawTensor is the raw, row-major, 3-dimensional float32 output of a detection head.
type RawTensor struct {
	Shape [3]int
	Data  []float32
}

// NewRawTensor wraps data with the given shape.
//
// Arguments:
//   - shape: The three tensor dimensions.
//   - data: The row-major backing values; not copied.
//
// Returns:
//   - The tensor, or ErrMalformedTensor if the shape and data disagree.
func NewRawTensor(shape [3]int, data []float32) (RawTensor, error) {
	t := RawTensor{Shape: shape, Data: data}
	if err := t.validate(); err != nil {
		return RawTensor{}, err
	}
	return t, nil
}

// Len returns the number of values described by the shape. It is only
// meaningful for a validated tensor.
func (t RawTensor) Len() int {
	return t.Shape[0] * t.Shape[1] * t.Shape[2]
}

func (t RawTensor) validate() error {
	n := 1
	for i, d := range t.Shape {
		if d < 0 {
			return errors.Wrapf(ErrMalformedTensor, "dimension %d is negative (%d)", i, d)
		}
		if d != 0 && n > math.MaxInt/d {
			return errors.Wrapf(ErrMalformedTensor, "shape %v overflows", t.Shape)
		}
		n *= d
	}
	if n != len(t.Data) {
		return errors.Wrapf(ErrMalformedTensor, "shape %v needs %d values, got %d", t.Shape, n, len(t.Data))
	}
	return nil
}

// FromDense adapts a gorgonia dense tensor.
//
// Views such as transposes are materialized first so the backing slice is
// laid out in row-major order.
//
// Arguments:
//   - d: A 3-dimensional Float32 tensor.
//
// Returns:
//   - The raw tensor sharing d's backing data, or ErrMalformedTensor.
func FromDense(d *tensor.Dense) (RawTensor, error) {
	if d == nil {
		return RawTensor{}, errors.Wrap(ErrMalformedTensor, "tensor is nil")
	}
	if d.Dtype() != tensor.Float32 {
		return RawTensor{}, errors.Wrapf(ErrMalformedTensor, "dtype %v, want float32", d.Dtype())
	}
	if d.IsMaterializable() {
		m, ok := d.Materialize().(*tensor.Dense)
		if !ok {
			return RawTensor{}, errors.Wrap(ErrMalformedTensor, "cannot materialize view")
		}
		d = m
	}

	shape := d.Shape()
	if len(shape) != 3 {
		return RawTensor{}, errors.Wrapf(ErrMalformedTensor, "shape %v is not 3-dimensional", shape)
	}
	data, ok := d.Data().([]float32)
	if !ok {
		return RawTensor{}, errors.Wrap(ErrMalformedTensor, "backing data is not []float32")
	}

	return NewRawTensor([3]int{shape[0], shape[1], shape[2]}, data)
}

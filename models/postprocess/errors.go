package postprocess

import "github.com/pkg/errors"

var (
	// ErrMalformedTensor is returned when a raw tensor's shape does not match
	// the configured layout and class count. The frame should be skipped.
	ErrMalformedTensor = errors.New("malformed tensor")

	// ErrInvalidConfiguration is returned when a pipeline is built with
	// out-of-range thresholds or dimensions.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrInvalidInput is returned when per-frame metadata such as the source
	// image size is unusable.
	ErrInvalidInput = errors.New("invalid input")
)

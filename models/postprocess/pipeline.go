package postprocess

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Options is the immutable configuration of a Pipeline.
type Options struct {
	// Layout of the model's output tensor.
	Layout Layout
	// NumClasses is the fixed class count of the model.
	NumClasses int
	// NetworkWidth and NetworkHeight are the model input resolution.
	NetworkWidth  int
	NetworkHeight int
	// ConfidenceThreshold drops candidates at or below this confidence.
	ConfidenceThreshold float32
	// ScoreThreshold is the per-class gate of LayoutSeparateObjectness.
	ScoreThreshold float32
	// NMS controls suppression.
	NMS NMSConfig
}

// Validate checks every option.
func (o Options) Validate() error {
	if err := o.decoder().Validate(); err != nil {
		return err
	}
	if o.NetworkWidth <= 0 || o.NetworkHeight <= 0 {
		return errors.Wrapf(ErrInvalidConfiguration,
			"network input %dx%d must be positive", o.NetworkWidth, o.NetworkHeight)
	}
	return o.NMS.Validate()
}

func (o Options) decoder() Decoder {
	return Decoder{
		Layout:              o.Layout,
		NumClasses:          o.NumClasses,
		ConfidenceThreshold: o.ConfidenceThreshold,
		ScoreThreshold:      o.ScoreThreshold,
	}
}

// Frame describes the source image a tensor was computed from.
type Frame struct {
	Width  int
	Height int
}

// Pipeline decodes, filters, rescales and suppresses raw detection tensors.
//
// A Pipeline holds no per-frame state and may be shared by goroutines
// processing different frames.
type Pipeline struct {
	opts    Options
	decoder Decoder
	filter  ConfidenceFilter
	logger  *zap.Logger
}

// PipelineOption customizes a Pipeline.
type PipelineOption func(*Pipeline)

// WithLogger sets the logger used for per-frame debug output.
func WithLogger(logger *zap.Logger) PipelineOption {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewPipeline validates opts and builds a pipeline.
//
// Arguments:
//   - opts: The pipeline configuration.
//   - options: Optional settings such as WithLogger.
//
// Returns:
//   - The pipeline, or an ErrInvalidConfiguration error.
//
// Example:
//
// ```go
//
//	p, err := NewPipeline(Options{
//	    Layout:              LayoutMerged,
//	    NumClasses:          80,
//	    NetworkWidth:        640,
//	    NetworkHeight:       640,
//	    ConfidenceThreshold: 0.4,
//	    NMS:                 NMSConfig{IoUThreshold: 0.4},
//	})
//	detections, err := p.Run(ctx, raw, Frame{Width: 1920, Height: 1080})
//
// ```
func NewPipeline(opts Options, options ...PipelineOption) (*Pipeline, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	p := &Pipeline{
		opts:    opts,
		decoder: opts.decoder(),
		filter:  ConfidenceFilter{Threshold: opts.ConfidenceThreshold},
		logger:  zap.NewNop(),
	}
	for _, o := range options {
		o(p)
	}
	return p, nil
}

// Run processes one frame's tensor to completion.
//
// Arguments:
//   - ctx: Checked before decoding and before suppression.
//   - t: The raw tensor; never modified.
//   - frame: The source image size used for rescaling.
//
// Returns:
//   - The detections in suppression order (highest confidence first),
//     possibly empty.
//   - ErrMalformedTensor, ErrInvalidInput or the context error. No partial
//     output is returned alongside an error.
func (p *Pipeline) Run(ctx context.Context, t RawTensor, frame Frame) ([]Detection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	transformer, err := NewTransformer(p.opts.NetworkWidth, p.opts.NetworkHeight, frame.Width, frame.Height)
	if err != nil {
		return nil, err
	}

	candidates, err := p.decoder.Decode(t)
	if err != nil {
		return nil, errors.WithMessagef(err, "decode %v tensor %v", p.opts.Layout, t.Shape)
	}

	var boxes []ScaledBox
	for b := range transformer.TransformAll(p.filter.Filter(candidates)) {
		boxes = append(boxes, b)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	detections := Suppress(boxes, &p.opts.NMS)

	p.logger.Debug("frame processed",
		zap.Stringer("layout", p.opts.Layout),
		zap.Ints("shape", t.Shape[:]),
		zap.Int("candidates", len(boxes)),
		zap.Int("detections", len(detections)),
	)

	return detections, nil
}

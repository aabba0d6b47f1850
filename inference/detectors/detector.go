package detectors

import (
	"context"

	"go.uber.org/zap"
	"gorgonia.org/tensor"

	"github.com/nvr-ai/go-detect/models"
	"github.com/nvr-ai/go-detect/models/postprocess"
)

// Detector turns raw detection-head output into labeled detections.
type Detector struct {
	pipeline *postprocess.Pipeline
	classes  *models.ClassSet
	logger   *zap.Logger
}

// Option customizes a Detector.
type Option func(*Detector)

// WithLogger sets the detector's logger.
func WithLogger(logger *zap.Logger) Option {
	return func(d *Detector) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithClasses sets the labels used by Label. Defaults to models.YOLOClasses.
func WithClasses(classes *models.ClassSet) Option {
	return func(d *Detector) {
		if classes != nil {
			d.classes = classes
		}
	}
}

// NewDetector creates a detector.
//
// Arguments:
//   - cfg: The detector configuration.
//   - options: Optional logger and class labels.
//
// Returns:
//   - *Detector: The detector.
//   - error: An ErrInvalidConfiguration error if cfg is invalid.
func NewDetector(cfg Config, options ...Option) (*Detector, error) {
	d := &Detector{
		classes: models.YOLOClasses,
		logger:  zap.NewNop(),
	}
	for _, o := range options {
		o(d)
	}

	opts, err := cfg.Options()
	if err != nil {
		return nil, err
	}
	if d.classes.Len() < opts.NumClasses {
		d.logger.Warn("class labels do not cover every class id",
			zap.Int("labels", d.classes.Len()),
			zap.Int("classes", opts.NumClasses))
	}

	d.pipeline, err = postprocess.NewPipeline(opts, postprocess.WithLogger(d.logger))
	if err != nil {
		return nil, err
	}

	d.logger.Info("detector ready",
		zap.Stringer("layout", opts.Layout),
		zap.Int("classes", opts.NumClasses),
		zap.Int("input_width", opts.NetworkWidth),
		zap.Int("input_height", opts.NetworkHeight),
		zap.Float32("confidence_threshold", opts.ConfidenceThreshold),
		zap.Float32("nms_threshold", opts.NMS.IoUThreshold),
		zap.Bool("class_aware", opts.NMS.ClassAware))

	return d, nil
}

// Detect decodes one frame's raw tensor.
//
// Arguments:
//   - ctx: Cancels the frame before decoding or suppression.
//   - raw: The detection head output.
//   - width, height: The source frame size.
//
// Returns:
//   - The detections, highest confidence first.
//   - An error; the frame should be skipped and the detector remains usable.
func (d *Detector) Detect(ctx context.Context, raw postprocess.RawTensor, width, height int) ([]postprocess.Detection, error) {
	detections, err := d.pipeline.Run(ctx, raw, postprocess.Frame{Width: width, Height: height})
	if err != nil {
		d.logger.Debug("frame skipped", zap.Error(err))
		return nil, err
	}
	return detections, nil
}

// DetectDense is Detect for a gorgonia tensor.
func (d *Detector) DetectDense(ctx context.Context, t *tensor.Dense, width, height int) ([]postprocess.Detection, error) {
	raw, err := postprocess.FromDense(t)
	if err != nil {
		return nil, err
	}
	return d.Detect(ctx, raw, width, height)
}

// Label returns the class name of a detection, or "" when the labels do not
// cover its class id.
func (d *Detector) Label(det postprocess.Detection) string {
	name, _ := d.classes.Name(det.ClassID)
	return name
}

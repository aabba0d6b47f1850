// Package detectors - Detector configuration and the per-frame decoding entry point.
package detectors

import (
	"github.com/pkg/errors"

	"github.com/nvr-ai/go-detect/models"
	"github.com/nvr-ai/go-detect/models/model"
	"github.com/nvr-ai/go-detect/models/postprocess"
)

// Config represents the configuration of a detector.
//
// Model names a registered family whose layout, class count and input
// resolution fill any of Layout, NumClasses, InputWidth and InputHeight left
// at their zero value.
type Config struct {
	// Model is an optional registered family such as "yolov8".
	Model string `json:"model" koanf:"model"`

	// Layout is "separate" (A) or "merged" (B).
	Layout string `json:"layout" koanf:"layout"`

	// NumClasses is the fixed class count of the model.
	NumClasses int `json:"num_classes" koanf:"numclasses"`

	// InputWidth and InputHeight are the network input resolution.
	InputWidth  int `json:"input_width" koanf:"inputwidth"`
	InputHeight int `json:"input_height" koanf:"inputheight"`

	// ConfidenceThreshold filters detections at or below this confidence level.
	ConfidenceThreshold float32 `json:"confidence_threshold" koanf:"confidencethreshold"`

	// ScoreThreshold gates the best class score of separate-objectness rows.
	ScoreThreshold float32 `json:"score_threshold" koanf:"scorethreshold"`

	// NMSThreshold controls Non-Maximum Suppression IoU threshold.
	NMSThreshold float32 `json:"nms_threshold" koanf:"nmsthreshold"`

	// ClassAware restricts suppression to boxes of the same class.
	ClassAware bool `json:"class_aware" koanf:"classaware"`

	// MaxDetections caps the detections per frame; 0 keeps all.
	MaxDetections int `json:"max_detections" koanf:"maxdetections"`

	// NMSWorkers splits the suppression sweep across goroutines; <= 1 is greedy.
	NMSWorkers int `json:"nms_workers" koanf:"nmsworkers"`
}

// DefaultConfig returns a YOLOv8 configuration with the thresholds used by
// the stock YOLO camera scripts.
//
// Returns:
//   - Config: Default configuration
//
// @example
// config := DefaultConfig()
// config.ConfidenceThreshold = 0.5
// detector, err := NewDetector(config)
func DefaultConfig() Config {
	return Config{
		Model:               string(model.ModelNameYOLOv8),
		ConfidenceThreshold: 0.4,
		ScoreThreshold:      0.2,
		NMSThreshold:        0.4,
	}
}

// Options resolves the configuration into pipeline options, applying model
// defaults and validating every field.
//
// Returns:
//   - postprocess.Options: The resolved options.
//   - error: An ErrInvalidConfiguration error.
func (c Config) Options() (postprocess.Options, error) {
	opts := postprocess.Options{
		NumClasses:          c.NumClasses,
		NetworkWidth:        c.InputWidth,
		NetworkHeight:       c.InputHeight,
		ConfidenceThreshold: c.ConfidenceThreshold,
		ScoreThreshold:      c.ScoreThreshold,
		NMS: postprocess.NMSConfig{
			IoUThreshold:  c.NMSThreshold,
			ClassAware:    c.ClassAware,
			MaxDetections: c.MaxDetections,
			NumWorkers:    c.NMSWorkers,
		},
	}

	if c.Model != "" {
		spec, err := models.Lookup(model.Name(c.Model))
		if err != nil {
			return postprocess.Options{}, err
		}
		opts.Layout = spec.Layout
		if opts.NumClasses == 0 {
			opts.NumClasses = spec.NumClasses
		}
		if opts.NetworkWidth == 0 {
			opts.NetworkWidth = spec.InputWidth
		}
		if opts.NetworkHeight == 0 {
			opts.NetworkHeight = spec.InputHeight
		}
	}

	if c.Layout != "" {
		layout, err := postprocess.ParseLayout(c.Layout)
		if err != nil {
			return postprocess.Options{}, err
		}
		if c.Model != "" && layout != opts.Layout {
			return postprocess.Options{}, errors.Wrapf(postprocess.ErrInvalidConfiguration,
				"layout %q conflicts with model %q", c.Layout, c.Model)
		}
		opts.Layout = layout
	}

	if err := opts.Validate(); err != nil {
		return postprocess.Options{}, err
	}
	return opts, nil
}

// Validate reports whether the configuration resolves to valid options.
func (c Config) Validate() error {
	_, err := c.Options()
	return err
}

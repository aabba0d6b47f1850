package onnx

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"
	"go.uber.org/zap"

	"github.com/nvr-ai/go-detect/inference/detectors"
	"github.com/nvr-ai/go-detect/models/postprocess"
)

// Runner executes a model whose output tensor is bound ahead of time.
// *ort.AdvancedSession satisfies it.
type Runner interface {
	Run() error
}

var _ Runner = (*ort.AdvancedSession)(nil)

// Session pairs a bound model run with the detector that decodes its output.
type Session struct {
	runner   Runner
	output   OutputTensor
	detector *detectors.Detector
	logger   *zap.Logger

	mu             sync.Mutex
	inferenceCount int64
	inferenceTime  time.Duration
	decodeTime     time.Duration
}

// NewSession creates a session.
//
// Arguments:
//   - runner: Runs the model and fills output.
//   - output: The model's detection head output.
//   - detector: Decodes output into detections.
//   - logger: Optional; nil disables logging.
//
// Returns:
//   - *Session: The session.
func NewSession(runner Runner, output OutputTensor, detector *detectors.Detector, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		runner:   runner,
		output:   output,
		detector: detector,
		logger:   logger,
	}
}

// Detect runs the model once and decodes the output for a frame of the given
// size.
//
// Runs are serialized because the output tensor is shared.
func (s *Session) Detect(ctx context.Context, width, height int) ([]postprocess.Detection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	if err := s.runner.Run(); err != nil {
		return nil, errors.Wrap(err, "failed to run model")
	}
	ran := time.Now()

	raw, err := FromValue(s.output)
	if err != nil {
		return nil, err
	}
	detections, err := s.detector.Detect(ctx, raw, width, height)
	if err != nil {
		return nil, err
	}

	inference, decode := ran.Sub(start), time.Since(ran)
	s.inferenceCount++
	s.inferenceTime += inference
	s.decodeTime += decode

	s.logger.Debug("inference complete",
		zap.Duration("inference", inference),
		zap.Duration("decode", decode),
		zap.Int("detections", len(detections)))

	return detections, nil
}

// Metrics holds per-session timing totals.
type Metrics struct {
	InferenceCount int64         `json:"inference_count"`
	InferenceTime  time.Duration `json:"inference_time"`
	DecodeTime     time.Duration `json:"decode_time"`
}

// AverageLatency returns the mean model plus decode time per frame.
func (m Metrics) AverageLatency() time.Duration {
	if m.InferenceCount == 0 {
		return 0
	}
	return (m.InferenceTime + m.DecodeTime) / time.Duration(m.InferenceCount)
}

// Metrics returns the timing totals of successful runs.
func (s *Session) Metrics() Metrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Metrics{
		InferenceCount: s.inferenceCount,
		InferenceTime:  s.inferenceTime,
		DecodeTime:     s.decodeTime,
	}
}

// ResetMetrics clears all timing totals.
func (s *Session) ResetMetrics() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inferenceCount = 0
	s.inferenceTime = 0
	s.decodeTime = 0
}

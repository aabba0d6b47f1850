package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-detect/models/postprocess"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "yolov8", cfg.Detector.Model)
	assert.Equal(t, float32(0.4), cfg.Detector.ConfidenceThreshold)
	assert.Equal(t, float32(0.2), cfg.Detector.ScoreThreshold)
	assert.Equal(t, float32(0.4), cfg.Detector.NMSThreshold)
	assert.False(t, cfg.Log.Debug)
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, `
detector:
  model: yolov5
  confidencethreshold: 0.55
  nmsthreshold: 0.5
  classaware: true
  maxdetections: 100
log:
  debug: true
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "yolov5", cfg.Detector.Model)
	assert.Equal(t, float32(0.55), cfg.Detector.ConfidenceThreshold)
	assert.Equal(t, float32(0.2), cfg.Detector.ScoreThreshold)
	assert.True(t, cfg.Detector.ClassAware)
	assert.Equal(t, 100, cfg.Detector.MaxDetections)
	assert.True(t, cfg.Log.Debug)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeFile(t, "detector:\n  nmsthreshold: 0.5\n")
	t.Setenv("DETECT_DETECTOR_NMSTHRESHOLD", "0.65")
	t.Setenv("DETECT_DETECTOR_MODEL", "yolo11")
	t.Setenv("DETECT_DETECTOR_NMSWORKERS", "4")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, float32(0.65), cfg.Detector.NMSThreshold)
	assert.Equal(t, "yolo11", cfg.Detector.Model)
	assert.Equal(t, 4, cfg.Detector.NMSWorkers)
}

func TestLoadInvalid(t *testing.T) {
	_, err := Load(writeFile(t, "detector:\n  confidencethreshold: 1.5\n"))
	assert.ErrorIs(t, err, postprocess.ErrInvalidConfiguration)

	_, err = Load(writeFile(t, "detector:\n  model: rcnn\n"))
	assert.ErrorIs(t, err, postprocess.ErrInvalidConfiguration)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadLayoutOnly(t *testing.T) {
	path := writeFile(t, `
detector:
  layout: separate
  numclasses: 3
  inputwidth: 320
  inputheight: 320
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Empty(t, cfg.Detector.Model)

	opts, err := cfg.Detector.Options()
	require.NoError(t, err)
	assert.Equal(t, postprocess.LayoutSeparateObjectness, opts.Layout)
	assert.Equal(t, 3, opts.NumClasses)
	assert.Equal(t, 320, opts.NetworkWidth)
	assert.Equal(t, float32(0.4), opts.ConfidenceThreshold)
}

func TestLoadLayoutFromEnv(t *testing.T) {
	t.Setenv("DETECT_DETECTOR_LAYOUT", "merged")
	t.Setenv("DETECT_DETECTOR_NUMCLASSES", "2")
	t.Setenv("DETECT_DETECTOR_INPUTWIDTH", "416")
	t.Setenv("DETECT_DETECTOR_INPUTHEIGHT", "416")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Empty(t, cfg.Detector.Model)
	assert.Equal(t, "merged", cfg.Detector.Layout)
}

func TestLoadModelAndLayoutConflict(t *testing.T) {
	_, err := Load(writeFile(t, "detector:\n  model: yolov8\n  layout: separate\n"))
	assert.ErrorIs(t, err, postprocess.ErrInvalidConfiguration)
}

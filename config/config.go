// Package config - Application configuration loaded from defaults, an
// optional YAML file and DETECT_ environment variables.
package config

import (
	"strings"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/pkg/errors"

	"github.com/nvr-ai/go-detect/inference/detectors"
)

// EnvPrefix prefixes every environment override, e.g.
// DETECT_DETECTOR_NMSTHRESHOLD=0.5 sets detector.nmsthreshold.
const EnvPrefix = "DETECT_"

// LogConfig defines logger settings.
type LogConfig struct {
	Debug bool `koanf:"debug"`
}

// AppConfig defines the whole application configuration.
type AppConfig struct {
	Detector detectors.Config `koanf:"detector"`
	Log      LogConfig        `koanf:"log"`
}

func defaults() map[string]any {
	d := detectors.DefaultConfig()
	return map[string]any{
		"detector.confidencethreshold": d.ConfidenceThreshold,
		"detector.scorethreshold":      d.ScoreThreshold,
		"detector.nmsthreshold":        d.NMSThreshold,
		"log.debug":                    false,
	}
}

// Load reads the configuration.
//
// Arguments:
//   - filePath: A YAML file; empty skips the file.
//
// Returns:
//   - *AppConfig: The validated configuration.
//   - error: A load, parse or validation error.
func Load(filePath string) (*AppConfig, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, errors.Wrap(err, "failed to load defaults")
	}

	if filePath != "" {
		if err := k.Load(file.Provider(filePath), yaml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "failed to load %s", filePath)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", ".")
	}), nil); err != nil {
		return nil, errors.Wrap(err, "failed to load environment")
	}

	var cfg AppConfig
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to decode configuration")
	}

	// A layout without a model describes a custom head.
	if cfg.Detector.Model == "" && cfg.Detector.Layout == "" {
		cfg.Detector.Model = detectors.DefaultConfig().Model
	}

	if err := ValidateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ValidateConfig checks the configuration before any component is built.
func ValidateConfig(cfg *AppConfig) error {
	return errors.WithMessage(cfg.Detector.Validate(), "detector")
}

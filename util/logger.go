// Package util - Shared process helpers.
package util

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds a JSON logger that writes debug and info entries to stdout
// and warnings and errors to stderr.
//
// Arguments:
//   - debug: Enables debug entries and the development encoder.
//
// Returns:
//   - *zap.Logger: The logger.
func NewLogger(debug bool) *zap.Logger {
	return zap.New(newCore(debug, zapcore.Lock(os.Stdout), zapcore.Lock(os.Stderr)))
}

func newCore(debug bool, stdout, stderr zapcore.WriteSyncer) zapcore.Core {
	lowLevel := zap.LevelEnablerFunc(func(level zapcore.Level) bool {
		if debug {
			return level == zapcore.DebugLevel || level == zapcore.InfoLevel
		}
		return level == zapcore.InfoLevel
	})
	highLevel := zap.LevelEnablerFunc(func(level zapcore.Level) bool {
		return level >= zapcore.WarnLevel
	})

	encoderConfig := zap.NewProductionEncoderConfig()
	if debug {
		encoderConfig = zap.NewDevelopmentEncoderConfig()
	}

	return zapcore.NewTee(
		zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), stdout, lowLevel),
		zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), stderr, highLevel),
	)
}

package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New creates a new zap logger writing to stderr.
func New(development bool) (*zap.Logger, error) {
	return build(development, nil)
}

// NewFile creates a logger writing to path instead of stderr. Terminal
// front ends use it so log lines do not tear the screen. An empty path
// discards all output.
func NewFile(path string, development bool) (*zap.Logger, error) {
	if path == "" {
		return zap.NewNop(), nil
	}
	return build(development, []string{path})
}

func build(development bool, outputs []string) (*zap.Logger, error) {
	var cfg zap.Config

	if development {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
	}

	if outputs != nil {
		cfg.OutputPaths = outputs
		cfg.ErrorOutputPaths = outputs
		// Color codes are noise in a file.
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}

	return cfg.Build()
}

// Must creates a logger or panics
func Must(development bool) *zap.Logger {
	log, err := New(development)
	if err != nil {
		panic(err)
	}
	return log
}

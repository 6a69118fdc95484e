package utils

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const logMessageKey = "message"

// NewApplicationLogger returns the console logger used by the digest binary: info level,
// messages only.
func NewApplicationLogger() (*zap.Logger, error) {
	return NewLeveledApplicationLogger(false)
}

// NewLeveledApplicationLogger returns the console logger. Verbose mode lowers the level to
// debug and prints level names so per-file decisions can be told apart from warnings.
func NewLeveledApplicationLogger(verbose bool) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	return zap.Config{
		Level:             zap.NewAtomicLevelAt(level),
		Encoding:          "console",
		EncoderConfig:     digestEncoderConfig(verbose),
		OutputPaths:       []string{"stderr"},
		ErrorOutputPaths:  []string{"stderr"},
		DisableCaller:     true,
		DisableStacktrace: true,
	}.Build()
}

func digestEncoderConfig(showLevel bool) zapcore.EncoderConfig {
	encoderConfig := zapcore.EncoderConfig{
		MessageKey:     logMessageKey,
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeDuration: zapcore.StringDurationEncoder,
	}
	if showLevel {
		encoderConfig.LevelKey = "level"
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	return encoderConfig
}

// LoggerOrNop returns logger, or a no-op logger when logger is nil.
func LoggerOrNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

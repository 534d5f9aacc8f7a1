// logger/logger.go
package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	LogOutputJSON          = "json"
	LogOutputHumanReadable = "human-readable"
)

// ParseLogLevelFromString takes a string representation of the log level and
// returns the corresponding zapcore.Level. Used to convert a log level from an
// environment variable or configuration file to a strongly-typed level.
func ParseLogLevelFromString(levelStr string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "debug":
		return zap.DebugLevel, nil
	case "", "info":
		return zap.InfoLevel, nil
	case "warn", "warning":
		return zap.WarnLevel, nil
	case "error":
		return zap.ErrorLevel, nil
	default:
		return zap.InfoLevel, fmt.Errorf("unsupported log level %q", levelStr)
	}
}

// BuildLogger creates and returns a configured zap sugared logger. It uses
// ISO8601 timestamps and logs to stdout, with zap's own internal errors going
// to stderr. logOutputFormat selects between JSON output and a human-readable
// console encoding with colored levels.
func BuildLogger(levelStr string, logOutputFormat string) (*zap.SugaredLogger, error) {
	level, err := ParseLogLevelFromString(levelStr)
	if err != nil {
		return nil, err
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	config := zap.Config{
		Level:             zap.NewAtomicLevelAt(level),
		Development:       false,
		Encoding:          "json",
		DisableCaller:     true,
		DisableStacktrace: true,
		Sampling:          nil,
		EncoderConfig:     encoderCfg,
		OutputPaths:       []string{"stdout"},
		ErrorOutputPaths:  []string{"stderr"},
	}

	if logOutputFormat == LogOutputHumanReadable {
		config.Encoding = "console"
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	zapLogger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	return zapLogger.Sugar(), nil
}

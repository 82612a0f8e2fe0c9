// Package logger builds the service's zap loggers and carries a
// request-scoped logger through context.
package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// serviceName is stamped on every prod log line so aggregated streams can be
// filtered per service.
const serviceName = "claimsage"

// NewLogger creates a zap logger for the given environment: prod emits JSON
// with ISO-8601 timestamps and a service field, local/dev/docker emit
// colored console output at debug. level, when non-empty, overrides the
// environment default (debug, info, warn, error).
func NewLogger(env, level string) (*zap.Logger, error) {
	var cfg zap.Config
	switch env {
	case "prod":
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		cfg.InitialFields = map[string]any{"service": serviceName}
		// Answer traffic is low-volume and every provider failure matters;
		// sampling could swallow the one line that explains a degraded
		// answer.
		cfg.Sampling = nil
	case "local", "dev", "docker":
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	default:
		return nil, fmt.Errorf("unknown environment %q for logger", env)
	}

	if level != "" {
		var lv zapcore.Level
		if err := lv.UnmarshalText([]byte(level)); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
		cfg.Level = zap.NewAtomicLevelAt(lv)
	}

	l, err := cfg.Build(zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return l, nil
}

// Package logger constructs the structured logger every engine subsystem's
// Config expects. It exists so call sites only ever need a service name,
// never the details of how zap is configured.
package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a *zap.SugaredLogger scoped to service. Output format follows
// the LSM_ENGINE_ENV environment variable: "development" switches to zap's
// human-readable development encoder, which is friendlier while iterating
// locally; any other value, or none, uses the production config, which
// emits JSON to stderr.
func New(service string) *zap.SugaredLogger {
	var cfg zap.Config
	if os.Getenv("LSM_ENGINE_ENV") == "development" {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	log, err := cfg.Build()
	if err != nil {
		// Building the configured logger should never fail for the static
		// configs above; fall back to a no-op logger rather than panicking
		// the caller over an observability concern.
		log = zap.NewNop()
	}

	return log.Sugar().With("service", service)
}

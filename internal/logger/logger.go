// Package logger configures zap for song_scout. Logs always go to stderr so
// profiles, queries and reports printed on stdout stay pipeable.
package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Environments accepted by NewLogger.
const (
	EnvProd  = "prod"
	EnvDev   = "dev"
	EnvLocal = "local"
)

// NewLogger returns a JSON logger for prod and a colored console logger otherwise.
// An empty level keeps the environment default: info for prod, debug elsewhere.
func NewLogger(env, level string) (*zap.Logger, error) {
	cfg, err := configFor(env)
	if err != nil {
		return nil, err
	}
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	if level != "" {
		lvl, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	l, err := cfg.Build(zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return l, nil
}

func configFor(env string) (zap.Config, error) {
	switch env {
	case EnvProd:
		return zap.NewProductionConfig(), nil
	case EnvDev, EnvLocal, "":
		cfg := zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cfg.EncoderConfig.EncodeDuration = zapcore.StringDurationEncoder
		return cfg, nil
	default:
		return zap.Config{}, fmt.Errorf("unknown logging env %q (want prod, dev or local)", env)
	}
}

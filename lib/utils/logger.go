package utils

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// SetupLogger builds the development logger at the given level. Unknown
// levels fall back to INFO.
func SetupLogger(level ...string) *zap.SugaredLogger {
	config := zap.NewDevelopmentConfig()
	config.Level = zap.NewAtomicLevelAt(ParseLogLevel(level...))
	logger := zap.Must(config.Build())
	return logger.Sugar()
}

func ParseLogLevel(level ...string) zapcore.Level {
	if len(level) == 0 {
		return zapcore.InfoLevel
	}
	parsed, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(level[0])))
	if err != nil {
		return zapcore.InfoLevel
	}
	return parsed
}

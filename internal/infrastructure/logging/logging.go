package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New LOG_LEVEL va LOG_FORMAT bo'yicha zap loggerni quradi. Format "json"
// bo'lsa production encoder, aks holda o'qish uchun qulay console encoder
// ishlatiladi.
func New(levelStr, format string) *zap.Logger {
	level := zapcore.InfoLevel
	switch levelStr {
	case "debug":
		level = zapcore.DebugLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	}

	var cfg zap.Config
	if format == "json" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

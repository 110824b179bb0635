package logger

import (
	"os"

	"self-analysis/internal/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// log is safe to use before Initialize; it discards everything until then.
var log = zap.NewNop()

// Initialize builds the process-wide logger. Production gets JSON lines,
// everything else a human-readable console encoder.
func Initialize(loggerCfg config.LoggerConfig) error {
	level, err := zapcore.ParseLevel(loggerCfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	core := zapcore.NewCore(
		newEncoder(loggerCfg.Env),
		zapcore.AddSync(os.Stdout),
		level,
	)
	log = zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	return nil
}

func newEncoder(env string) zapcore.Encoder {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	if env == "production" {
		return zapcore.NewJSONEncoder(encoderConfig)
	}
	return zapcore.NewConsoleEncoder(encoderConfig)
}

// Get returns the process-wide logger.
func Get() *zap.Logger {
	return log
}

// Sync flushes buffered entries. Call it on shutdown.
func Sync() error {
	return log.Sync()
}

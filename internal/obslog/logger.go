// Package obslog is the structured operational logger used for diagnostics
// (connection state, backoff, shutdown sequencing, filesystem errors). It is
// distinct from the domain output logs, which are raw formatted lines
// written directly with fmt.Fprintf to hit exact byte formats.
package obslog

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps zap.Logger.
type Logger struct {
	*zap.Logger
}

// New builds a console-encoded, info-level logger writing to stdout. There
// is no level or format flag: the core takes no CLI flags or environment
// variables, so the operator surface stays fixed.
func New() *Logger {
	encoder := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		TimeKey:        "T",
		LevelKey:       "L",
		NameKey:        "N",
		CallerKey:      "C",
		MessageKey:     "M",
		StacktraceKey:  "S",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	})

	core := zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), zapcore.InfoLevel)
	zapLogger := zap.New(core, zap.AddCaller())

	return &Logger{Logger: zapLogger}
}

// WithFields adds fields to the logger.
func (l *Logger) WithFields(fields ...zap.Field) *Logger {
	return &Logger{Logger: l.Logger.With(fields...)}
}

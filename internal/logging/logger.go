//
//  Copyright © Manetu Inc. All rights reserved.
//

package logging

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is a module-scoped wrapper around zap.Logger
type Logger struct {
	module string
	logger *zap.Logger
	sugar  *zap.SugaredLogger
	level  zapcore.Level
	writer io.Writer
}

const moduleKey = "module"

// internal function to create a logger without tracking.  Applications should
// call GetLogger() to retrieve a configured logger.
func newLogger(module string) *Logger {
	l := &Logger{module: module, level: zapcore.InfoLevel}
	l.rebuild(os.Stdout)
	return l
}

func (l *Logger) rebuild(w io.Writer) {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.LowercaseLevelEncoder

	// Determine formatter from environment
	var encoder zapcore.Encoder
	switch os.Getenv("LOG_FORMATTER") {
	case "text":
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	default:
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(w), l.level)

	options := []zap.Option{
		zap.AddCallerSkip(1), // Skip this wrapper
		zap.Fields(zap.String(moduleKey, l.module)),
	}
	if os.Getenv("LOG_REPORT_CALLER") != "" {
		options = append(options, zap.AddCaller())
	}

	l.logger = zap.New(core, options...)
	l.sugar = l.logger.Sugar()
}

// IsDebugEnabled returns true if the current logging level is debug or lower.
// Use as a guard where producing the log output itself is expensive.
func (l *Logger) IsDebugEnabled() bool {
	return l.level <= zapcore.DebugLevel
}

// IsTraceEnabled ...
func (l *Logger) IsTraceEnabled() bool {
	return l.level <= zapcore.DebugLevel // zap doesn't have trace, use debug
}

// IsLevelEnabled checks if a level is enabled
func (l *Logger) IsLevelEnabled(level zapcore.Level) bool {
	return l.level <= level
}

// SetLevel sets the logging level
func (l *Logger) SetLevel(level zapcore.Level) {
	l.level = level
	l.rebuild(l.Out())
}

// SetOut sets the output writer (for tests)
func (l *Logger) SetOut(w io.Writer) {
	l.writer = w
	l.rebuild(w)
}

// Out returns the current output writer
func (l *Logger) Out() io.Writer {
	if l.writer != nil {
		return l.writer
	}
	return os.Stdout
}

// Zap exposes the underlying zap.Logger for structured logging with typed
// fields, e.g. per-decision records in the engine facade.
func (l *Logger) Zap() *zap.Logger {
	return l.logger
}

// Tracef logs a trace message
func (l *Logger) Tracef(format string, args ...interface{}) {
	l.sugar.Debugf(format, args...)
}

// Debugf logs a debug message
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.sugar.Debugf(format, args...)
}

// Infof logs an info message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.sugar.Infof(format, args...)
}

// Warnf logs a warning message
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.sugar.Warnf(format, args...)
}

// Errorf logs an error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.sugar.Errorf(format, args...)
}

// Fatalf logs a fatal message and exits
func (l *Logger) Fatalf(format string, args ...interface{}) {
	l.sugar.Fatalf(format, args...)
}

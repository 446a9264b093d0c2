// Package logging builds the zap logger used by the CLI and adapts it to the
// printf-style Logger interface the pipeline logs through.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the logging surface used by the conversion pipeline.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// Options describes logger construction parameters.
type Options struct {
	// Level is one of "debug", "info", "warn", "error".
	Level string

	// File, when set, receives a JSON copy of every entry.
	File string
}

// New builds a zap logger writing human-readable lines to stderr and, if
// configured, JSON lines to a file. The returned close function flushes the
// logger and releases the file; call it once logging is done.
func New(opts Options) (*zap.Logger, func(), error) {
	level, err := zapcore.ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("log level: %w", err)
	}

	consoleCfg := zap.NewDevelopmentEncoderConfig()
	consoleCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleCfg), zapcore.Lock(os.Stderr), level),
	}

	closeFile := func() {}
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0755); err != nil {
			return nil, nil, fmt.Errorf("ensure log directory: %w", err)
		}
		sink, closeSink, err := zap.Open(opts.File)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		closeFile = closeSink
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			sink,
			level,
		))
	}

	l := zap.New(zapcore.NewTee(cores...))
	return l, func() {
		_ = l.Sync()
		closeFile()
	}, nil
}

// Sugar adapts a zap logger to Logger.
func Sugar(l *zap.Logger) Logger {
	return &sugared{s: l.Sugar()}
}

// Nop returns a Logger that discards everything.
func Nop() Logger {
	return Sugar(zap.NewNop())
}

type sugared struct {
	s *zap.SugaredLogger
}

func (l *sugared) Debug(msg string, args ...interface{}) { l.s.Debugf(msg, args...) }
func (l *sugared) Info(msg string, args ...interface{})  { l.s.Infof(msg, args...) }
func (l *sugared) Warn(msg string, args ...interface{})  { l.s.Warnf(msg, args...) }
func (l *sugared) Error(msg string, args ...interface{}) { l.s.Errorf(msg, args...) }

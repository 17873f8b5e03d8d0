// internal/logger/logger.go
//
// Structured logger (Zap + Lumberjack).
//
// Context
// -------
// Lifecycle and request events go to stdout, colour-free, using either the
// console or the JSON encoder (LOG_FORMAT).  When LOG_FILE is set the same
// events are also written as JSON to a Lumberjack-rotated file, so no
// external log-rotate job is required.
//
// Usage
// -----
//
//	log, err := logger.New(logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
//	if err != nil { … }
//	log.Infow("server online", "addr", addr)
//
// Notes
// -----
// • ISO-8601 timestamps and lowercase levels.
// • Level names accept the uvicorn spellings (trace, warning, critical).
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options selects level, encoder, and the optional file sink.
type Options struct {
	Level  string // trace, debug, info, warning, error, critical (any case)
	Format string // console (default) or json
	File   string // rotated JSON file; empty disables
	Out    io.Writer
}

// ParseLevel maps a LOG_LEVEL value to a zap level.
func ParseLevel(s string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return zap.InfoLevel, nil
	case "trace", "debug":
		return zap.DebugLevel, nil
	case "warn", "warning":
		return zap.WarnLevel, nil
	case "error":
		return zap.ErrorLevel, nil
	case "critical", "fatal":
		return zap.FatalLevel, nil
	default:
		return zap.InfoLevel, fmt.Errorf("logger: unknown level %q", s)
	}
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		MessageKey:     "msg",
		CallerKey:      "caller",
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	}
}

// New builds a *zap.SugaredLogger and installs it as the process-wide
// default via zap.ReplaceGlobals.
func New(o Options) (*zap.SugaredLogger, error) {
	level, err := ParseLevel(o.Level)
	if err != nil {
		return nil, err
	}

	out := o.Out
	if out == nil {
		out = os.Stdout
	}

	encCfg := encoderConfig()
	var enc zapcore.Encoder
	switch strings.ToLower(o.Format) {
	case "", "console":
		enc = zapcore.NewConsoleEncoder(encCfg)
	case "json":
		enc = zapcore.NewJSONEncoder(encCfg)
	default:
		return nil, fmt.Errorf("logger: unknown format %q", o.Format)
	}

	cores := []zapcore.Core{zapcore.NewCore(enc, zapcore.AddSync(out), level)}

	opts := []zap.Option{zap.AddCaller()}
	if o.File != "" {
		if err := os.MkdirAll(filepath.Dir(o.File), 0o755); err != nil {
			return nil, err
		}
		fileSink := &lumberjack.Logger{
			Filename:   o.File,
			MaxSize:    50, // MB
			MaxBackups: 7,
			MaxAge:     14, // days
			Compress:   true,
		}
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(encCfg),
			zapcore.AddSync(fileSink),
			level,
		))
		opts = append(opts, zap.ErrorOutput(zapcore.AddSync(fileSink)))
	}

	z := zap.New(zapcore.NewTee(cores...), opts...).Sugar()
	zap.ReplaceGlobals(z.Desugar())

	z.Debugw("logger online", "level", level, "file", o.File)
	return z, nil
}

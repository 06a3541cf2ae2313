// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package logging builds the zap loggers used across the exchange: a console
// core on stderr plus an optional rotating file core.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config selects level, encoding and file output.
type Config struct {
	Level     string `json:"level" yaml:"level" mapstructure:"level"`
	Format    string `json:"format" yaml:"format" mapstructure:"format"` // "console" or "json"
	Directory string `json:"directory" yaml:"directory" mapstructure:"directory"`
	MaxSize   int    `json:"maxSize" yaml:"maxSize" mapstructure:"maxSize"`       // megabytes
	MaxAge    int    `json:"maxAge" yaml:"maxAge" mapstructure:"maxAge"`          // days
	MaxFiles  int    `json:"maxFiles" yaml:"maxFiles" mapstructure:"maxFiles"`    // files
	Compress  bool   `json:"compress" yaml:"compress" mapstructure:"compress"`
	Quiet     bool   `json:"quiet" yaml:"quiet" mapstructure:"quiet"` // mute stderr
}

// DefaultConfig logs info and above to stderr.
func DefaultConfig() Config {
	return Config{
		Level:    "info",
		Format:   "console",
		MaxSize:  64,
		MaxAge:   14,
		MaxFiles: 8,
	}
}

// Verify checks the level and format names.
func (c Config) Verify() error {
	if _, err := zapcore.ParseLevel(c.Level); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.Level, err)
	}
	switch c.Format {
	case "", "console", "json":
		return nil
	default:
		return fmt.Errorf("invalid log format %q", c.Format)
	}
}

// New builds a logger named name. The returned closer flushes and closes the
// file output, if any.
func New(name string, c Config) (*zap.Logger, io.Closer, error) {
	level, err := zapcore.ParseLevel(c.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q: %w", c.Level, err)
	}
	enc := encoder(c.Format)

	var cores []zapcore.Core
	if !c.Quiet {
		cores = append(cores, zapcore.NewCore(enc, zapcore.Lock(os.Stderr), level))
	}

	var rw *lumberjack.Logger
	if c.Directory != "" {
		rw = &lumberjack.Logger{
			Filename:   filepath.Join(c.Directory, name+".log"),
			MaxSize:    c.MaxSize,
			MaxAge:     c.MaxAge,
			MaxBackups: c.MaxFiles,
			Compress:   c.Compress,
		}
		fileEnc := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
		cores = append(cores, zapcore.NewCore(fileEnc, zapcore.AddSync(rw), level))
	}

	logger := zap.New(zapcore.NewTee(cores...)).Named(name)
	return logger, closer{logger: logger, rw: rw}, nil
}

func encoder(format string) zapcore.Encoder {
	if format == "json" {
		return zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	}
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return zapcore.NewConsoleEncoder(cfg)
}

type closer struct {
	logger *zap.Logger
	rw     *lumberjack.Logger
}

func (c closer) Close() error {
	_ = c.logger.Sync()
	if c.rw != nil {
		return c.rw.Close()
	}
	return nil
}

// Package logging routes the standard logger to stderr and, when configured,
// to a size-rotated log file.
package logging

import (
	"io"
	"log"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/unklstewy/ads-flights/pkg/config"
)

// Setup points the standard logger at stderr plus cfg.File. The returned closer
// releases the log file and must be called before exit; it is a no-op when no
// file is configured.
func Setup(cfg config.LoggingConfig) io.Closer {
	if cfg.File == "" {
		log.SetOutput(os.Stderr)
		return nopCloser{}
	}

	w := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB, // MB
		MaxBackups: cfg.MaxBackups,
		Compress:   cfg.Compress,
	}
	log.SetOutput(io.MultiWriter(os.Stderr, w))
	return w
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

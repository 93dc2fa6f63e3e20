package logging

import (
	"fmt"
	"io"
	"os"

	"go-mines/internal/config"

	"github.com/adrg/xdg"
	"github.com/sirupsen/logrus"
)

var logFile = "go-mines/go-mines.log"

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New builds the program logger. The terminal belongs to the UI, so logs
// go to a file; level "off" discards them.
func New(cfg config.LogConfig) (*logrus.Logger, io.Closer, error) {
	if cfg.Level == "off" {
		return NewWithWriter(io.Discard, logrus.PanicLevel), nopCloser{}, nil
	}

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}

	path := cfg.File
	if path == "" {
		path, err = xdg.StateFile(logFile)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to locate log file: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	return NewWithWriter(f, level), f, nil
}

func NewWithWriter(w io.Writer, level logrus.Level) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(w)
	log.SetLevel(level)
	log.SetFormatter(&logrus.TextFormatter{
		DisableColors: true,
		FullTimestamp: true,
	})
	return log
}

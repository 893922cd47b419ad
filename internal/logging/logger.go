// Package logging builds the structured logrus logger the switch and
// its ambient components share, optionally fanning output out to a
// rotating file sink via lumberjack.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures the shared logger.
type Options struct {
	Level    string // logrus level name, e.g. "info", "debug"
	Format   string // "json" or "text"
	FilePath string // when non-empty, log output also rotates to this file
}

// New builds a logrus.Logger per Options. Parse failures on Level fall
// back to info rather than aborting startup.
func New(opts Options) (*logrus.Logger, error) {
	log := logrus.New()

	level, parseErr := logrus.ParseLevel(opts.Level)
	if parseErr != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	if strings.EqualFold(opts.Format, "json") {
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05.000Z07:00"})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "2006-01-02T15:04:05.000Z07:00"})
	}

	writers := []io.Writer{os.Stdout}
	if opts.FilePath != "" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   opts.FilePath,
			MaxSize:    50, // megabytes
			MaxBackups: 5,
			MaxAge:     30, // days
			Compress:   true,
			LocalTime:  true,
		})
	}
	log.SetOutput(io.MultiWriter(writers...))

	if parseErr != nil && opts.Level != "" {
		log.Warnf("logging: unrecognized level %q, defaulting to info", opts.Level)
	}

	return log, nil
}

// MustNew is New with a hard-fail path for startup code that has
// nowhere sensible to report a logging-construction error.
func MustNew(opts Options) *logrus.Logger {
	log, err := New(opts)
	if err != nil {
		panic(fmt.Sprintf("logging: %v", err))
	}
	return log
}

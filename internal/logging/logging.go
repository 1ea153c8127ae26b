// Package logging builds the zerolog logger shared by the command-line
// front-ends. Library packages never log through a global; they receive
// the logger built here.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// Options configure New.
type Options struct {
	// Verbose lowers the level from info to debug.
	Verbose bool

	// File is the rotating log file. Empty disables file logging.
	File string

	// Console receives human-readable output. Nil disables it.
	Console io.Writer

	// NoColor disables ANSI colors on Console.
	NoColor bool
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New returns a logger writing to the configured outputs, plus a Closer
// for the log file that callers should close on exit.
func New(opts Options) (zerolog.Logger, io.Closer, error) {
	var (
		writers []io.Writer
		closer  io.Closer = nopCloser{}
	)

	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o750); err != nil {
			return zerolog.Nop(), closer, err
		}
		lj := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    1,
			MaxBackups: 2,
		}
		writers = append(writers, lj)
		closer = lj
	}

	if opts.Console != nil {
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        opts.Console,
			TimeFormat: time.DateTime,
			NoColor:    opts.NoColor,
		})
	}

	if len(writers) == 0 {
		return zerolog.Nop(), closer, nil
	}

	level := zerolog.InfoLevel
	if opts.Verbose {
		level = zerolog.DebugLevel
	}

	log := zerolog.New(io.MultiWriter(writers...)).
		Level(level).
		With().Timestamp().Logger()

	return log, closer, nil
}

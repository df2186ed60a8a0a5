// Package logging builds the zerolog logger shared by one download run.
//
// Records are appended to a log file as JSON. Warnings and errors are
// mirrored to the console in a human-readable form. Each logger carries a
// "run" field so that appended runs can be told apart in the same file.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Options configures New.
type Options struct {
	// Path is the log file. It is created if missing and appended to otherwise.
	// An empty path disables the file sink.
	Path string

	// Console receives warn and error records. Nil disables mirroring.
	Console io.Writer

	// Verbose lowers the level from info to debug.
	Verbose bool

	// NoColor disables ANSI colors on the console.
	NoColor bool
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New returns a logger and the closer of its file sink.
func New(opts Options) (zerolog.Logger, io.Closer, error) {
	var (
		writers []io.Writer
		closer  io.Closer = nopCloser{}
	)

	if opts.Path != "" {
		file, err := os.OpenFile(opts.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return zerolog.Nop(), nil, err
		}
		writers = append(writers, file)
		closer = file
	}

	if opts.Console != nil {
		console := zerolog.ConsoleWriter{
			Out:        opts.Console,
			TimeFormat: time.RFC3339,
			NoColor:    opts.NoColor,
		}
		writers = append(writers, &zerolog.FilteredLevelWriter{
			Writer: zerolog.LevelWriterAdapter{Writer: console},
			Level:  zerolog.WarnLevel,
		})
	}

	if len(writers) == 0 {
		return zerolog.Nop(), closer, nil
	}

	level := zerolog.InfoLevel
	if opts.Verbose {
		level = zerolog.DebugLevel
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().
		Timestamp().
		Str("run", uuid.NewString()).
		Logger()

	return logger, closer, nil
}

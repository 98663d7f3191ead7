package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// File sink rotation defaults.
const (
	DefaultMaxSizeMB  = 10
	DefaultMaxAgeDays = 30
)

// Options selects level, output format and an optional rotating file sink.
type Options struct {
	Level  string
	Format string // "console" or "json"
	File   string
	Debug  bool

	// MaxSizeMB rotates the file once it reaches this size.
	MaxSizeMB int
	// MaxAgeDays removes rotated files older than this.
	MaxAgeDays int
}

// New builds the root logger and installs it as log.Logger. The returned
// closer releases the file sink, if any.
func New(opts Options) (zerolog.Logger, io.Closer, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(opts.Level))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	if opts.Debug {
		level = zerolog.DebugLevel
	}

	var out io.Writer = os.Stderr
	if opts.Format != "json" {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}

	var closer io.Closer = nopCloser{}
	if opts.File != "" {
		sink := fileSink(opts)
		out = zerolog.MultiLevelWriter(out, sink)
		closer = sink
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano
	logger := zerolog.New(out).Level(level).With().Timestamp().Logger()
	log.Logger = logger
	zerolog.DefaultContextLogger = &log.Logger
	return logger, closer, nil
}

func fileSink(opts Options) *lumberjack.Logger {
	maxSize := opts.MaxSizeMB
	if maxSize <= 0 {
		maxSize = DefaultMaxSizeMB
	}
	maxAge := opts.MaxAgeDays
	if maxAge <= 0 {
		maxAge = DefaultMaxAgeDays
	}
	return &lumberjack.Logger{
		Filename:  opts.File,
		MaxSize:   maxSize,
		MaxAge:    maxAge,
		LocalTime: true,
	}
}

// Component returns the global logger tagged with a component field.
func Component(name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

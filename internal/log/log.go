// Package log is the process-wide structured logger.
// It wraps a single logrus logger so packages log with log.Infof and friends
// without passing a logger around.
package log

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var std = newLogger(os.Stderr)

func newLogger(out io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	return l
}

// Options configures the logger at startup
type Options struct {
	Level string // panic, fatal, error, warn, info, debug, trace
	File  string // Optional rotating log file, written in addition to stderr

	MaxSizeMB  int // Rotation threshold, default 10
	MaxBackups int // Rotated files kept, default 3
}

// Init applies options to the process logger
func Init(opts Options) error {
	level := logrus.InfoLevel
	if opts.Level != "" {
		parsed, err := logrus.ParseLevel(opts.Level)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		level = parsed
	}
	std.SetLevel(level)

	if opts.File == "" {
		std.SetOutput(os.Stderr)
		return nil
	}

	size := opts.MaxSizeMB
	if size <= 0 {
		size = 10
	}
	backups := opts.MaxBackups
	if backups <= 0 {
		backups = 3
	}
	std.SetOutput(io.MultiWriter(os.Stderr, &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    size,
		MaxBackups: backups,
		Compress:   false,
	}))
	return nil
}

// SetOutput redirects log output, mainly for tests
func SetOutput(w io.Writer) {
	std.SetOutput(w)
}

// Fields is a set of structured key/value pairs
type Fields = logrus.Fields

// WithFields returns an entry carrying the given fields
func WithFields(fields Fields) *logrus.Entry {
	return std.WithFields(fields)
}

// Infof logs a formatted message at info level
func Infof(format string, args ...interface{}) { std.Infof(format, args...) }

// Warnf logs a formatted message at warn level
func Warnf(format string, args ...interface{}) { std.Warnf(format, args...) }

// Package logger provides modifications to charmbracelet/log's default logger to be used in various files/packages.
//
// Everything logs to stderr or a log file: stdout carries the IPC stream in server mode.
package logger

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options control the package-level logger set up by Setup.
type Options struct {
	Level string // "debug", "info", "warn", "error"; unknown names fall back to warn
	Debug bool   // forces debug level and timestamps

	// File, when set, receives the log instead of stderr and is rotated
	// after MaxSizeMB megabytes, keeping MaxBackups old files.
	File       string
	MaxSizeMB  int
	MaxBackups int
}

// New creates a new default charm log.
func New(prefix string) *log.Logger {
	return NewWithConfig(os.Stderr, prefix, log.GetLevel(), false, true, log.TextFormatter)
}

// NewWithConfig creates a new charm log with custom config
func NewWithConfig(w io.Writer, prefix string, level log.Level, caller bool, showTimestamp bool, fmt log.Formatter) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Prefix:          prefix,
		Level:           level,
		ReportCaller:    caller,
		ReportTimestamp: showTimestamp,
		Formatter:       fmt,
	})
}

// Setup configures the package-level logger. The returned closer releases
// the log file, if any.
func Setup(opts Options) io.Closer {
	var out io.WriteCloser = nopCloser{os.Stderr}
	log.SetFormatter(log.TextFormatter)
	if opts.File != "" {
		out = &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
		}
		log.SetFormatter(log.LogfmtFormatter)
		log.SetReportTimestamp(true)
	}
	log.SetOutput(out)

	level, err := log.ParseLevel(opts.Level)
	if err != nil {
		level = log.WarnLevel
	}
	if opts.Debug {
		level = log.DebugLevel
		log.SetReportTimestamp(true)
	}
	log.SetLevel(level)
	return out
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

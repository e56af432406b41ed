package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	logDir            = "logs"
	fileBufferSize    = 32 * 1024
	consoleBufferSize = 1024
)

type Options struct {
	// Component names the log file, e.g. "api" writes logs/api.log.
	Component string
	Level     string
	// Dir overrides the log directory; empty keeps logs/.
	Dir string
	// DisableFile logs to the console only.
	DisableFile bool
}

// Logger bundles the logrus logger with the writers it owns so callers can
// flush them on shutdown.
type Logger struct {
	*logrus.Logger
	closers []io.Closer
}

func (l *Logger) Close() error {
	var firstErr error
	for i := len(l.closers) - 1; i >= 0; i-- {
		if err := l.closers[i].Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func NewLogger(opts Options) (*Logger, error) {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime: "time",
			logrus.FieldKeyMsg:  "msg",
		},
	})
	logger.SetLevel(ParseLevel(opts.Level))

	out := &Logger{Logger: logger}
	if opts.DisableFile {
		logger.SetOutput(os.Stdout)
		return out, nil
	}

	dir := opts.Dir
	if dir == "" {
		dir = logDir
	}
	component := strings.TrimSpace(opts.Component)
	if component == "" || strings.ContainsAny(component, `/\`) || component == ".." {
		return nil, fmt.Errorf("invalid log component %q", opts.Component)
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	fileWriter, err := NewAsyncFileWriter(filepath.Join(dir, component+".log"), fileBufferSize)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize async log writer: %w", err)
	}
	logger.SetOutput(fileWriter)

	consoleHook := NewAsyncConsoleHook(os.Stdout, consoleBufferSize)
	logger.AddHook(consoleHook)

	out.closers = append(out.closers, fileWriter, consoleHook)
	return out, nil
}

// NewCLILogger writes human-readable lines to stderr so stdout stays free
// for command output.
func NewCLILogger(level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
	})
	logger.SetLevel(ParseLevel(level))
	return logger
}

// ParseLevel falls back to LOG_LEVEL, then to info.
func ParseLevel(raw string) logrus.Level {
	if strings.TrimSpace(raw) == "" {
		raw = os.Getenv("LOG_LEVEL")
	}
	level, err := logrus.ParseLevel(strings.TrimSpace(raw))
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}

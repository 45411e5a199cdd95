package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	defaultLogDir     = "logs"
	fileBufferSize    = 32 * 1024
	consoleBufferSize = 1024
)

var componentName = regexp.MustCompile(`^[a-z][a-z0-9_-]*$`)

// Logger bundles the logrus logger with the async sinks it writes to.
type Logger struct {
	*logrus.Logger
	file    *AsyncFileWriter
	console *AsyncConsoleHook
}

// NewLogger writes JSON lines to <LOG_DIR>/<component>.log and mirrors them
// to stdout. LOG_LEVEL accepts any logrus level name; LOG_CONSOLE_LEVEL
// narrows what reaches the console and defaults to LOG_LEVEL.
func NewLogger(component string) (*Logger, error) {
	if !componentName.MatchString(component) {
		return nil, fmt.Errorf("invalid log component %q", component)
	}
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime: "time",
			logrus.FieldKeyMsg:  "msg",
		},
	})
	level := levelFromEnv("LOG_LEVEL", logrus.InfoLevel)
	logger.SetLevel(level)

	dir := os.Getenv("LOG_DIR")
	if dir == "" {
		dir = defaultLogDir
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create logs directory: %w", err)
	}
	file, err := NewAsyncFileWriter(filepath.Join(dir, component+".log"), fileBufferSize)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize async log writer: %w", err)
	}
	logger.SetOutput(file)

	console := NewAsyncConsoleHook(os.Stdout, levelFromEnv("LOG_CONSOLE_LEVEL", level), consoleBufferSize)
	logger.AddHook(console)

	return &Logger{Logger: logger, file: file, console: console}, nil
}

func levelFromEnv(key string, fallback logrus.Level) logrus.Level {
	level, err := logrus.ParseLevel(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return level
}

// Close flushes pending lines to both sinks.
func (l *Logger) Close() {
	l.console.Close()
	l.file.Close()
}

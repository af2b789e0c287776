package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
)

var logger *log.Logger = log.New(os.Stderr)

// Init opens a per-run log file under dir (created if missing) and tees
// logger output to it and stderr, at the given level ("debug", "info",
// "warn", "error").
func Init(appName, dir, level string) error {
	var out io.Writer = os.Stderr

	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create log dir: %w", err)
		}

		name := time.Now().Format("2006-01-02-150405") + ".log"
		f, err := os.Create(filepath.Join(dir, name))
		if err != nil {
			return fmt.Errorf("create log file: %w", err)
		}

		out = io.MultiWriter(os.Stderr, f)
	}

	logger = log.New(out)
	logger.SetPrefix(appName)
	logger.SetReportTimestamp(true)
	logger.SetTimeFormat(time.DateTime)
	logger.SetLevel(parseLevel(level))

	return nil
}

func parseLevel(level string) log.Level {
	switch level {
	case "debug":
		return log.DebugLevel
	case "warn":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

func Fatal(msg string, keyvals ...any) {
	logger.Fatal(msg, keyvals...)
}

func Info(msg string, keyvals ...any) {
	logger.Info(msg, keyvals...)
}

func Warn(msg string, keyvals ...any) {
	logger.Warn(msg, keyvals...)
}

func Error(msg string, keyvals ...any) {
	logger.Error(msg, keyvals...)
}

func Debug(msg string, keyvals ...any) {
	logger.Debug(msg, keyvals...)
}

// With returns a logger scoped with the given keyvals, for a single
// session's lifetime (e.g. "room", "name").
func With(keyvals ...any) *log.Logger {
	return logger.With(keyvals...)
}

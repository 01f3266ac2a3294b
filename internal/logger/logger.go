// internal/logger/logger.go
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

var (
	mu  sync.Mutex
	log = newLogger(os.Stderr)
)

func newLogger(w io.Writer) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}).
		With().
		Timestamp().
		Logger()
}

// Init initializes the logger with the info level
func Init() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

// SetOutput sets the output for the logger
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()

	log = newLogger(w)
}

// SetLevel sets the log level
func SetLevel(levelStr string) {
	switch strings.ToLower(levelStr) {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn", "warning":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// Logger returns the underlying structured logger
func Logger() *zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()

	l := log
	return &l
}

// Debug logs a debug message
func Debug(format string, v ...interface{}) {
	Logger().Debug().Msg(fmt.Sprintf(format, v...))
}

// Info logs an info message
func Info(format string, v ...interface{}) {
	Logger().Info().Msg(fmt.Sprintf(format, v...))
}

// Warn logs a warning message
func Warn(format string, v ...interface{}) {
	Logger().Warn().Msg(fmt.Sprintf(format, v...))
}

// Error logs an error message
func Error(format string, v ...interface{}) {
	Logger().Error().Msg(fmt.Sprintf(format, v...))
}

package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger is a leveled key/value logger on top of zerolog.
// Arguments after the message are alternating key/value pairs.
type Logger struct {
	zl zerolog.Logger
}

// New создает logger, пишущий JSON в stdout
func New(level string) *Logger {
	return NewWithWriter(level, os.Stdout)
}

// NewWithWriter создает logger с произвольным writer (используется в тестах)
func NewWithWriter(level string, w io.Writer) *Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	service := os.Getenv("LOG_SERVICE")
	if service == "" {
		service = "activity-globe"
	}

	zl := zerolog.New(w).
		Level(parseLevel(level)).
		With().
		Timestamp().
		Str("service", service).
		Logger()

	return &Logger{zl: zl}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info", "":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		if parsed, err := zerolog.ParseLevel(level); err == nil && parsed != zerolog.NoLevel {
			return parsed
		}
		return zerolog.InfoLevel
	}
}

// With returns a child logger that carries the given fields on every entry.
func (l *Logger) With(args ...interface{}) *Logger {
	return &Logger{zl: l.zl.With().Fields(pairs(args)).Logger()}
}

func (l *Logger) Debug(msg string, args ...interface{}) {
	l.zl.Debug().Fields(pairs(args)).Msg(msg)
}

func (l *Logger) Info(msg string, args ...interface{}) {
	l.zl.Info().Fields(pairs(args)).Msg(msg)
}

func (l *Logger) Warn(msg string, args ...interface{}) {
	l.zl.Warn().Fields(pairs(args)).Msg(msg)
}

func (l *Logger) Error(msg string, err error, args ...interface{}) {
	event := l.zl.Error()
	if err != nil {
		event = event.Err(err)
	}
	event.Fields(pairs(args)).Msg(msg)
}

// pairs turns alternating key/value arguments into a field map.
// A trailing key without value is dropped.
func pairs(args []interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, len(args)/2)
	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			key = fmt.Sprint(args[i])
		}
		fields[key] = args[i+1]
	}
	return fields
}

package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// ZerologAdapter wraps zerolog.Logger to implement the Logger interface.
// Key/value argument pairs become structured fields on the event.
type ZerologAdapter struct {
	logger zerolog.Logger
}

// NewZerologAdapter creates a Logger from an existing zerolog.Logger.
func NewZerologAdapter(logger zerolog.Logger) Logger {
	return &ZerologAdapter{logger: logger}
}

// NewConsoleLogger creates a zerolog-backed Logger with human friendly
// console output on w (stderr if nil).
func NewConsoleLogger(level LogLevel, w io.Writer) Logger {
	if w == nil {
		w = os.Stderr
	}
	cw := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	logger := zerolog.New(cw).Level(zerologLevel(level)).With().Timestamp().Logger()
	return &ZerologAdapter{logger: logger}
}

// NewJSONLogger creates a zerolog-backed Logger emitting one JSON line per
// record on w (stderr if nil).
func NewJSONLogger(level LogLevel, w io.Writer) Logger {
	if w == nil {
		w = os.Stderr
	}
	logger := zerolog.New(w).Level(zerologLevel(level)).With().Timestamp().Logger()
	return &ZerologAdapter{logger: logger}
}

func zerologLevel(l LogLevel) zerolog.Level {
	switch l {
	case LogLevelDebug:
		return zerolog.DebugLevel
	case LogLevelInfo:
		return zerolog.InfoLevel
	case LogLevelWarn:
		return zerolog.WarnLevel
	case LogLevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Debug logs a debug message.
func (z *ZerologAdapter) Debug(msg string, args ...any) { z.emit(z.logger.Debug(), msg, args) }

// Info logs an informational message.
func (z *ZerologAdapter) Info(msg string, args ...any) { z.emit(z.logger.Info(), msg, args) }

// Warn logs a warning message.
func (z *ZerologAdapter) Warn(msg string, args ...any) { z.emit(z.logger.Warn(), msg, args) }

// Error logs an error message.
func (z *ZerologAdapter) Error(msg string, args ...any) { z.emit(z.logger.Error(), msg, args) }

// emit folds slog-style key/value pairs into the event. A dangling value
// lands under !BADKEY, matching slog's convention.
func (z *ZerologAdapter) emit(ev *zerolog.Event, msg string, args []any) {
	i := 0
	for ; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", args[i])
		}
		ev = ev.Interface(key, args[i+1])
	}
	if i < len(args) {
		ev = ev.Interface("!BADKEY", args[i])
	}
	ev.Msg(msg)
}

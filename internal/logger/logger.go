package logger

import (
	"io"
	"strings"

	"github.com/rs/zerolog"
)

// New создаёт логгер с уровнем level. format "console" включает человекочитаемый вывод,
// любое другое значение даёт JSON.
func New(w io.Writer, level, format string) zerolog.Logger {
	if strings.EqualFold(format, "console") {
		w = zerolog.ConsoleWriter{Out: w}
	}

	return zerolog.New(w).
		Level(ParseLevel(level)).
		With().
		Timestamp().
		Logger()
}

// ParseLevel разбирает уровень, по умолчанию info.
func ParseLevel(level string) zerolog.Level {
	l, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || l == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return l
}

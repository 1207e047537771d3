package logger

import (
	"io"
	"log/slog"
	"strings"

	"github.com/gizetz/gbairai/internal/config"
)

// New builds the process logger. Format "json" selects the JSON handler;
// anything else logs text.
func New(w io.Writer, c config.Logger) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(c.Level)}
	if strings.EqualFold(c.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return l
}

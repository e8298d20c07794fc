package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

var (
	levelVar = new(slog.LevelVar)
	format   = "json"
	out      io.Writer = os.Stdout
)

var L = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: levelVar}))

// SetLevel configures the global log level (debug, info, warn, error).
func SetLevel(lvl string) {
	switch strings.ToLower(lvl) {
	case "debug":
		levelVar.Set(slog.LevelDebug)
	case "warn":
		levelVar.Set(slog.LevelWarn)
	case "error":
		levelVar.Set(slog.LevelError)
	default:
		levelVar.Set(slog.LevelInfo)
	}
}

// SetFormat switches between the JSON handler and a colored text handler ("text").
func SetFormat(f string) {
	format = strings.ToLower(f)
	rebuild()
}

// SetOutput redirects log output. Front ends that own stdout (tui, mcp) send logs to stderr.
func SetOutput(w io.Writer) {
	out = w
	rebuild()
}

func rebuild() {
	var h slog.Handler
	switch format {
	case "text":
		h = tint.NewHandler(out, &tint.Options{
			Level:      levelVar,
			TimeFormat: time.Kitchen,
		})
	default:
		h = slog.NewJSONHandler(out, &slog.HandlerOptions{Level: levelVar})
	}
	L = slog.New(h)
}

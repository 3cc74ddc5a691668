package logging

import (
	"io"
	"log/slog"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/seblin/curpy/internal/config"
)

// New builds an slog.Logger backed by a charmbracelet/log handler writing
// to w. Unknown levels fall back to warn and unknown formats to text.
func New(w io.Writer, cfg config.Log) *slog.Logger {
	level, err := log.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = log.WarnLevel
	}

	formatters := map[string]log.Formatter{
		"json":   log.JSONFormatter,
		"logfmt": log.LogfmtFormatter,
		"text":   log.TextFormatter,
	}
	formatter := log.TextFormatter
	if f, ok := formatters[strings.ToLower(cfg.Format)]; ok {
		formatter = f
	}

	handler := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "2006-01-02 15:04:05",
		Level:           level,
		Prefix:          cfg.Prefix,
		Formatter:       formatter,
	})
	handler.SetStyles(styles())

	return slog.New(handler)
}

func styles() *log.Styles {
	s := log.DefaultStyles()
	warn := lipgloss.AdaptiveColor{Light: "#B8860B", Dark: "#EE6FF8"}
	errColor := lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF6B6B"}

	s.Levels[log.WarnLevel] = lipgloss.NewStyle().
		SetString("WARN").
		Bold(true).
		Foreground(warn)
	s.Levels[log.ErrorLevel] = lipgloss.NewStyle().
		SetString("ERROR").
		Bold(true).
		Foreground(errColor)
	s.Keys["error"] = lipgloss.NewStyle().Foreground(errColor)
	s.Values["error"] = lipgloss.NewStyle().Bold(true)
	return s
}

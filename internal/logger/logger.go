// Package logger builds the slog.Logger used for diagnostics. Output goes to
// stderr through charmbracelet/log so stdout stays reserved for command results.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	charmLog "github.com/charmbracelet/log"

	"github.com/amtp-labs/amtp-cli/internal/branding"
)

const (
	defaultFormat = "text"
	defaultLevel  = "warn"
)

// Options controls logger construction. Environment variables
// (AMTP_LOG_LEVEL, AMTP_LOG_FORMAT) override the zero values only.
type Options struct {
	Verbose bool
	Level   string
	Format  string
}

// New returns a logger writing to stderr.
func New(opts Options) (*slog.Logger, error) {
	return newWithWriter(opts, os.Stderr)
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newWithWriter(opts Options, w io.Writer) (*slog.Logger, error) {
	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format == "" {
		format = strings.ToLower(strings.TrimSpace(os.Getenv(branding.EnvVar("LOG_FORMAT"))))
	}
	if format == "" {
		format = defaultFormat
	}

	var formatter charmLog.Formatter
	switch format {
	case "text":
		formatter = charmLog.TextFormatter
	case "json":
		formatter = charmLog.JSONFormatter
	case "logfmt":
		formatter = charmLog.LogfmtFormatter
	default:
		return nil, fmt.Errorf("unsupported log format %q", format)
	}

	level, err := parseLevel(opts)
	if err != nil {
		return nil, err
	}

	handler := charmLog.NewWithOptions(w, charmLog.Options{
		Level:           level,
		ReportTimestamp: true,
		Formatter:       formatter,
		Prefix:          branding.CLIName(),
	})
	return slog.New(handler), nil
}

func parseLevel(opts Options) (charmLog.Level, error) {
	if opts.Verbose {
		return charmLog.DebugLevel, nil
	}

	text := strings.ToLower(strings.TrimSpace(opts.Level))
	if text == "" {
		text = strings.ToLower(strings.TrimSpace(os.Getenv(branding.EnvVar("LOG_LEVEL"))))
	}
	if text == "" {
		text = defaultLevel
	}

	switch text {
	case "debug":
		return charmLog.DebugLevel, nil
	case "info":
		return charmLog.InfoLevel, nil
	case "warn", "warning":
		return charmLog.WarnLevel, nil
	case "error":
		return charmLog.ErrorLevel, nil
	default:
		return 0, fmt.Errorf("unsupported log level %q", text)
	}
}

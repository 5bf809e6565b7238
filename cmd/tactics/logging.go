package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"
)

// setupLogging installs a charm logger as the slog default. Terminals get
// the colored text format, pipes and files get JSON.
func setupLogging(level string, w io.Writer) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("log level %q: %w", level, err)
	}

	opts := log.Options{
		Level:           lvl,
		ReportTimestamp: true,
		Prefix:          "tactics",
	}
	if !isTerminal(w) {
		opts.Formatter = log.JSONFormatter
	}

	logger := log.NewWithOptions(w, opts)
	slog.SetDefault(slog.New(logger))
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// colorOutput reports whether map output to stdout should be styled.
func colorOutput() bool {
	return !flagNoColor && isTerminal(os.Stdout)
}

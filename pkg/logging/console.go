package logging

import (
	"io"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"golang.org/x/term"
)

// NewConsoleLogger creates a colored logger writing to w (stderr when nil).
// Colors are disabled when w is not a terminal.
func NewConsoleLogger(w io.Writer, level Level) Logger {
	if w == nil {
		w = os.Stderr
	}

	noColor := true
	if f, ok := w.(*os.File); ok {
		noColor = !term.IsTerminal(int(f.Fd()))
	}

	handler := tint.NewHandler(w, &tint.Options{
		Level:      slogLevel(level),
		TimeFormat: time.Kitchen,
		NoColor:    noColor,
	})
	return newHandlerLogger(handler, nil)
}

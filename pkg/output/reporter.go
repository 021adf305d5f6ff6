// Package output reports deploy progress to the terminal and logs.
package output

import (
	"context"
	"os"

	"github.com/sdejongh/ftpdeploy/pkg/logging"
	"golang.org/x/term"
)

// Reporter receives progress and log events from a deploy run.
// Start is called once with the total file count, Tick advances the count,
// Finish is called after a successful run.
type Reporter interface {
	Start(total int)
	Tick(n int)
	Debug(msg string, fields logging.Fields)
	Info(msg string, fields logging.Fields)
	Error(msg string, err error, fields logging.Fields)
	Finish()
}

// NullReporter discards everything
type NullReporter struct{}

func (NullReporter) Start(int) {}
func (NullReporter) Tick(int) {}
func (NullReporter) Debug(string, logging.Fields) {}
func (NullReporter) Info(string, logging.Fields) {}
func (NullReporter) Error(string, error, logging.Fields) {}
func (NullReporter) Finish() {}

// LogReporter forwards messages to a logger and records progress counts
type LogReporter struct {
	logger logging.Logger
	total  int
	done   int
}

// NewLogReporter creates a reporter writing to logger
func NewLogReporter(logger logging.Logger) *LogReporter {
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	return &LogReporter{logger: logger}
}

// Start records the total
func (r *LogReporter) Start(total int) {
	r.total = total
	r.done = 0
	r.logger.Debug(context.Background(), "processing files", logging.Fields{"total": total})
}

// Tick advances the processed count
func (r *LogReporter) Tick(n int) {
	r.done += n
}

// Progress returns processed and total file counts
func (r *LogReporter) Progress() (done, total int) {
	return r.done, r.total
}

func (r *LogReporter) Debug(msg string, fields logging.Fields) {
	r.logger.Debug(context.Background(), msg, fields)
}

func (r *LogReporter) Info(msg string, fields logging.Fields) {
	r.logger.Info(context.Background(), msg, fields)
}

func (r *LogReporter) Error(msg string, err error, fields logging.Fields) {
	r.logger.Error(context.Background(), msg, err, fields)
}

// Finish logs the final count
func (r *LogReporter) Finish() {
	r.logger.Debug(context.Background(), "processed files", logging.Fields{"done": r.done, "total": r.total})
}

// ReporterOptions selects the reporter built by NewReporter
type ReporterOptions struct {
	Logger logging.Logger
	Level  logging.Level
	// NoProgress disables the progress bar
	NoProgress bool
	// Out is where the progress bar is drawn (stderr when nil)
	Out *os.File
}

// NewReporter returns a progress bar reporter when Out is a terminal, the
// bar is not disabled and the level is above debug. Otherwise it returns a
// LogReporter.
func NewReporter(opts ReporterOptions) Reporter {
	out := opts.Out
	if out == nil {
		out = os.Stderr
	}
	logReporter := NewLogReporter(opts.Logger)

	if opts.NoProgress || opts.Level == logging.DebugLevel || !IsTerminal(out) {
		return logReporter
	}
	return NewProgressReporter(logReporter, out)
}

// IsTerminal reports whether f is attached to a terminal
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

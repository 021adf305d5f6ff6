package output

import (
	"io"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/sdejongh/ftpdeploy/pkg/logging"
)

const (
	progressTemplate pb.ProgressBarTemplate = `{{bar . "[" "=" ">" " " "]"}} {{percent .}} {{etime . "%s elapsed"}} {{rtime . "%s remaining"}}`
	progressWidth                           = 40
	progressRefresh                         = 200 * time.Millisecond
)

// ProgressReporter draws a file-count progress bar and forwards messages
// to an underlying LogReporter
type ProgressReporter struct {
	*LogReporter
	out io.Writer
	bar *pb.ProgressBar
}

// NewProgressReporter creates a progress reporter drawing on out
func NewProgressReporter(log *LogReporter, out io.Writer) *ProgressReporter {
	return &ProgressReporter{LogReporter: log, out: out}
}

// Start creates and starts the bar
func (r *ProgressReporter) Start(total int) {
	r.LogReporter.Start(total)

	bar := progressTemplate.New(total)
	bar.SetWriter(r.out)
	bar.SetWidth(progressWidth)
	bar.SetRefreshRate(progressRefresh)
	r.bar = bar.Start()
}

// Tick advances the bar
func (r *ProgressReporter) Tick(n int) {
	r.LogReporter.Tick(n)
	if r.bar != nil {
		r.bar.Add(n)
	}
}

// Error stops the bar before logging so the message is not overdrawn
func (r *ProgressReporter) Error(msg string, err error, fields logging.Fields) {
	r.stop()
	r.LogReporter.Error(msg, err, fields)
}

// Finish completes the bar
func (r *ProgressReporter) Finish() {
	r.stop()
	r.LogReporter.Finish()
}

func (r *ProgressReporter) stop() {
	if r.bar != nil {
		r.bar.Finish()
		r.bar = nil
	}
}

package output

import (
	"io"
	"time"

	"github.com/goccy/go-json"
	"github.com/sdejongh/ftpdeploy/pkg/models"
)

// JSONReport is the machine-readable form of a RunReport
type JSONReport struct {
	RunID       string        `json:"run_id"`
	Status      string        `json:"status"`
	DryRun      bool          `json:"dry_run"`
	Source      string        `json:"source"`
	Destination string        `json:"destination"`
	StartTime   time.Time     `json:"start_time"`
	EndTime     time.Time     `json:"end_time"`
	Duration    string        `json:"duration"`
	DurationMs  int64         `json:"duration_ms"`
	Stats       JSONStatsData `json:"stats"`
	Changed     []string      `json:"changed"`
}

// JSONStatsData represents statistics in JSON format
type JSONStatsData struct {
	DirsScanned   int   `json:"dirs_scanned"`
	DirsChanged   int   `json:"dirs_changed"`
	DirsSkipped   int   `json:"dirs_skipped"`
	FilesScanned  int   `json:"files_scanned"`
	FilesUploaded int   `json:"files_uploaded"`
	FilesSkipped  int   `json:"files_skipped"`
	BytesUploaded int64 `json:"bytes_uploaded"`
}

// NewJSONReport converts a run report
func NewJSONReport(report *models.RunReport) JSONReport {
	changed := report.Changed
	if changed == nil {
		changed = []string{}
	}
	return JSONReport{
		RunID:       report.RunID,
		Status:      string(report.Status),
		DryRun:      report.DryRun,
		Source:      report.LocalRoot,
		Destination: report.RemoteRoot,
		StartTime:   report.StartTime,
		EndTime:     report.EndTime,
		Duration:    report.Duration.String(),
		DurationMs:  report.Duration.Milliseconds(),
		Stats: JSONStatsData{
			DirsScanned:   report.Stats.DirsScanned,
			DirsChanged:   report.Stats.DirsChanged,
			DirsSkipped:   report.Stats.DirsSkipped,
			FilesScanned:  report.Stats.FilesScanned,
			FilesUploaded: report.Stats.FilesUploaded,
			FilesSkipped:  report.Stats.FilesSkipped,
			BytesUploaded: report.Stats.BytesUploaded,
		},
		Changed: changed,
	}
}

// WriteJSON writes the report as indented JSON
func WriteJSON(w io.Writer, report *models.RunReport) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(NewJSONReport(report))
}

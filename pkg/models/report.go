package models

import (
	"time"
)

// RunReport represents the results of a deploy run
type RunReport struct {
	RunID      string
	LocalRoot  string
	RemoteRoot string
	DryRun     bool

	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	Stats Statistics

	// Directories whose hash changed, in processing order
	Changed []string

	Status RunStatus
}

// Statistics holds deploy run metrics
type Statistics struct {
	DirsScanned  int
	DirsChanged  int
	DirsSkipped  int
	FilesScanned int

	FilesUploaded int
	FilesSkipped  int

	BytesUploaded int64
}

// RunStatus represents the overall result
type RunStatus string

const (
	// StatusSuccess indicates the run completed and the cache was persisted
	StatusSuccess RunStatus = "success"
	// StatusFailed indicates the run aborted; the cache was left untouched
	StatusFailed RunStatus = "failed"
)

// ExitCode returns the process exit code for the status
func (s RunStatus) ExitCode() int {
	if s == StatusSuccess {
		return 0
	}
	return 1
}

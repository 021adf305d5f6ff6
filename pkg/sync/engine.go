// Package sync uploads the changed directories of a local tree to a remote endpoint.
package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sdejongh/ftpdeploy/pkg/digest"
	"github.com/sdejongh/ftpdeploy/pkg/hashstore"
	"github.com/sdejongh/ftpdeploy/pkg/logging"
	"github.com/sdejongh/ftpdeploy/pkg/models"
	"github.com/sdejongh/ftpdeploy/pkg/output"
	"github.com/sdejongh/ftpdeploy/pkg/ratelimit"
	"github.com/sdejongh/ftpdeploy/pkg/remote"
	"github.com/sdejongh/ftpdeploy/pkg/scan"
	"github.com/spf13/afero"
)

// EngineConfig wires an Engine
type EngineConfig struct {
	Operation *models.DeployOperation

	// Fs is the local filesystem (the OS filesystem when nil)
	Fs afero.Fs
	// CachePath is the hash cache file
	CachePath string
	// SkipPaths are local files never uploaded, such as the cache and
	// credentials files
	SkipPaths []string

	Dial     remote.Dialer
	Remote   remote.Options
	Username string
	Password string

	Reporter output.Reporter
}

// Engine runs one deploy
type Engine struct {
	op        *models.DeployOperation
	fs        afero.Fs
	cachePath string
	skipPaths []string
	dial      remote.Dialer
	remote    remote.Options
	username  string
	password  string
	reporter  output.Reporter
}

// NewEngine creates a new deploy engine
func NewEngine(config EngineConfig) *Engine {
	fs := config.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	reporter := config.Reporter
	if reporter == nil {
		reporter = output.NullReporter{}
	}
	dial := config.Dial
	if dial == nil {
		dial = remote.DialFTP
	}
	return &Engine{
		op:        config.Operation,
		fs:        fs,
		cachePath: config.CachePath,
		skipPaths: config.SkipPaths,
		dial:      dial,
		remote:    config.Remote,
		username:  config.Username,
		password:  config.Password,
		reporter:  reporter,
	}
}

// Run loads the hash cache, connects, scans the local root and processes
// every directory in discovery order. The cache is written and the
// connection closed only when every directory succeeded. On failure the
// connection is closed best-effort, the cache file is left untouched, and
// the report is returned together with the error.
func (e *Engine) Run(ctx context.Context) (*models.RunReport, error) {
	op := e.op
	if op == nil {
		return nil, &models.ConfigError{Message: "no deploy operation"}
	}
	if op.ID == "" {
		op.ID = uuid.NewString()
	}

	report := &models.RunReport{
		RunID:      op.ID,
		LocalRoot:  op.LocalRoot,
		RemoteRoot: op.RemoteRoot,
		DryRun:     op.DryRun,
		StartTime:  time.Now(),
		Status:     models.StatusFailed,
	}

	var client remote.Client
	fail := func(err error) (*models.RunReport, error) {
		if client != nil {
			client.Quit()
		}
		e.finishReport(report)
		return report, err
	}

	if err := op.Validate(); err != nil {
		return fail(err)
	}

	store, err := e.loadStore()
	if err != nil {
		return fail(err)
	}

	hasher, err := digest.New(e.fs, op.HashAlgorithm, op.BufferSize)
	if err != nil {
		return fail(&models.ConfigError{Field: "hash_algorithm", Err: err})
	}
	scanner, err := scan.NewScanner(e.fs, scan.Options{Exclude: op.ExcludePatterns, Skip: e.skipPaths})
	if err != nil {
		return fail(&models.ConfigError{Field: "exclude", Err: err})
	}

	if !op.DryRun {
		client, err = e.connect(ctx)
		if err != nil {
			return fail(err)
		}
	}

	dirs, err := scanner.Scan(ctx, op.LocalRoot)
	if err != nil {
		return fail(err)
	}

	uploader := NewUploader(UploaderConfig{
		Client:     client,
		Fs:         e.fs,
		Detector:   NewDetector(hasher, store, op.Force),
		Reporter:   e.reporter,
		Limiter:    ratelimit.NewLimiter(op.BandwidthLimit),
		LocalRoot:  op.LocalRoot,
		RemoteRoot: op.RemoteRoot,
		DryRun:     op.DryRun,
	})

	e.reporter.Start(dirs.TotalFiles())
	for _, key := range dirs.Keys() {
		files, _ := dirs.Files(key)
		err := uploader.ProcessDirectory(ctx, key, files)
		report.Stats = uploader.Stats()
		report.Changed = uploader.Changed()
		if err != nil {
			return fail(err)
		}
	}

	if !op.DryRun {
		if err := store.Close(); err != nil {
			return fail(fmt.Errorf("failed to save hash cache: %w", err))
		}
		if err := client.Quit(); err != nil {
			e.reporter.Debug("closing remote connection failed", logging.Fields{"error": err.Error()})
		}
		client = nil
	}

	e.reporter.Finish()
	report.Status = models.StatusSuccess
	e.finishReport(report)

	if op.DryRun {
		e.reporter.Info("dry run completed", logging.Fields{"changed_dirs": report.Stats.DirsChanged})
	} else {
		e.reporter.Info("FTP upload completed", logging.Fields{
			"duration":       report.Duration.String(),
			"files_uploaded": report.Stats.FilesUploaded,
			"bytes_uploaded": report.Stats.BytesUploaded,
		})
	}
	return report, nil
}

// loadStore reads the hash cache, falling back to an empty one when the
// file cannot be read or parsed
func (e *Engine) loadStore() (*hashstore.Store, error) {
	store, err := hashstore.Load(e.fs, e.cachePath)
	if err == nil {
		return store, nil
	}

	var loadErr *models.CacheLoadError
	if !errors.As(err, &loadErr) {
		return nil, err
	}
	e.reporter.Error("hash cache unreadable, starting with an empty cache", err, logging.Fields{"path": e.cachePath})
	return hashstore.New(e.fs, e.cachePath), nil
}

// connect dials and authenticates
func (e *Engine) connect(ctx context.Context) (remote.Client, error) {
	e.reporter.Debug("connecting", logging.Fields{"host": e.remote.Host, "port": e.remote.Port})

	client, err := e.dial(ctx, e.remote)
	if err != nil {
		return nil, err
	}
	if err := client.Login(ctx, e.username, e.password); err != nil {
		client.Quit()
		return nil, err
	}
	return client, nil
}

func (e *Engine) finishReport(report *models.RunReport) {
	report.EndTime = time.Now()
	report.Duration = report.EndTime.Sub(report.StartTime)
}

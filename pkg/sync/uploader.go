package sync

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/sdejongh/ftpdeploy/internal/platform"
	"github.com/sdejongh/ftpdeploy/pkg/logging"
	"github.com/sdejongh/ftpdeploy/pkg/models"
	"github.com/sdejongh/ftpdeploy/pkg/output"
	"github.com/sdejongh/ftpdeploy/pkg/ratelimit"
	"github.com/sdejongh/ftpdeploy/pkg/remote"
	"github.com/spf13/afero"
)

// maxDirRetries bounds how often ChangeDir is retried after MakeDir
const maxDirRetries = 1

// UploaderConfig holds everything an Uploader needs
type UploaderConfig struct {
	// Client is the remote connection; unused in dry-run mode
	Client     remote.Client
	Fs         afero.Fs
	Detector   *Detector
	Reporter   output.Reporter
	Limiter    *ratelimit.Limiter
	LocalRoot  string
	RemoteRoot string
	DryRun     bool
}

// Uploader mirrors changed directories to the remote endpoint, one
// directory and one file at a time
type Uploader struct {
	client     remote.Client
	fs         afero.Fs
	detector   *Detector
	reporter   output.Reporter
	limiter    *ratelimit.Limiter
	localRoot  string
	remoteRoot string
	dryRun     bool

	stats   models.Statistics
	changed []string
}

// NewUploader creates an uploader
func NewUploader(config UploaderConfig) *Uploader {
	reporter := config.Reporter
	if reporter == nil {
		reporter = output.NullReporter{}
	}
	fs := config.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Uploader{
		client:     config.Client,
		fs:         fs,
		detector:   config.Detector,
		reporter:   reporter,
		limiter:    config.Limiter,
		localRoot:  config.LocalRoot,
		remoteRoot: config.RemoteRoot,
		dryRun:     config.DryRun,
	}
}

// EnsureRemoteDir makes remotePath the current remote directory, creating
// it when it cannot be entered. Parents must already exist.
func (u *Uploader) EnsureRemoteDir(ctx context.Context, remotePath string) error {
	for attempt := 0; ; attempt++ {
		err := u.client.ChangeDir(ctx, remotePath)
		if err == nil {
			return nil
		}
		if attempt >= maxDirRetries {
			return &models.RemoteDirError{Path: remotePath, Op: "chdir", Err: err}
		}

		u.reporter.Debug("creating remote directory", logging.Fields{"path": remotePath})
		if err := u.client.MakeDir(ctx, remotePath); err != nil {
			return &models.RemoteDirError{Path: remotePath, Op: "mkdir", Err: err}
		}
	}
}

// UploadFile stores localRoot/key/name under name in the current remote
// directory and returns the number of bytes sent
func (u *Uploader) UploadFile(ctx context.Context, key, name string) (int64, error) {
	localPath := filepath.Join(platform.LocalDir(u.localRoot, key), name)

	f, err := u.fs.Open(localPath)
	if err != nil {
		u.reporter.Error("upload failed", err, logging.Fields{"file": localPath})
		return 0, &models.UploadError{LocalPath: localPath, RemoteName: name, Err: err}
	}
	defer f.Close()

	counter := &countingReader{r: ratelimit.NewReader(ctx, f, u.limiter)}
	if err := u.client.Upload(ctx, name, counter); err != nil {
		u.reporter.Error("upload failed", err, logging.Fields{"file": localPath})
		return counter.n, &models.UploadError{LocalPath: localPath, RemoteName: name, Err: err}
	}

	u.reporter.Debug("uploaded file", logging.Fields{"file": localPath, "bytes": counter.n})
	return counter.n, nil
}

// ProcessDirectory ensures the remote directory for key exists, then
// uploads its files unless the directory is unchanged. A nil file list
// means key is unknown to the scan and is rejected.
func (u *Uploader) ProcessDirectory(ctx context.Context, key string, files []string) error {
	if files == nil {
		return &models.ConfigError{Field: "directory", Message: fmt.Sprintf("no file list for %q", key)}
	}

	remotePath := platform.RemoteDir(u.remoteRoot, key)
	if !u.dryRun {
		if err := u.EnsureRemoteDir(ctx, remotePath); err != nil {
			return err
		}
	}

	matched, err := u.detector.Matches(ctx, u.localRoot, key, files)
	if err != nil {
		return err
	}

	u.stats.DirsScanned++
	u.stats.FilesScanned += len(files)

	if matched {
		u.reporter.Debug("directory unchanged", logging.Fields{"dir": key, "files": len(files)})
		u.stats.DirsSkipped++
		u.stats.FilesSkipped += len(files)
		u.reporter.Tick(len(files))
		return nil
	}

	u.stats.DirsChanged++
	u.changed = append(u.changed, key)
	u.reporter.Info("uploading directory", logging.Fields{"dir": key, "remote": remotePath, "files": len(files)})

	for _, name := range files {
		var n int64
		if u.dryRun {
			n, err = u.localSize(key, name)
		} else {
			n, err = u.UploadFile(ctx, key, name)
		}
		if err != nil {
			return err
		}
		u.stats.FilesUploaded++
		u.stats.BytesUploaded += n
		u.reporter.Tick(1)
	}

	return nil
}

// Stats returns the counters accumulated so far
func (u *Uploader) Stats() models.Statistics {
	return u.stats
}

// Changed returns the keys of changed directories in processing order
func (u *Uploader) Changed() []string {
	return append([]string(nil), u.changed...)
}

func (u *Uploader) localSize(key, name string) (int64, error) {
	localPath := filepath.Join(platform.LocalDir(u.localRoot, key), name)
	info, err := u.fs.Stat(localPath)
	if err != nil {
		return 0, &models.ScanError{Path: localPath, Err: err}
	}
	return info.Size(), nil
}

// countingReader counts bytes read through it
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

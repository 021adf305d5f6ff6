package sync

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/sdejongh/ftpdeploy/pkg/hashstore"
	"github.com/sdejongh/ftpdeploy/pkg/models"
	"github.com/sdejongh/ftpdeploy/pkg/remote"
	"github.com/spf13/afero"
)

const testCachePath = "/project/.hashes.json"

type engineFixture struct {
	fs       afero.Fs
	client   *fakeRemote
	reporter *recordingReporter
	op       *models.DeployOperation
}

func newEngineFixture(t *testing.T, files map[string]string) *engineFixture {
	t.Helper()
	fs := afero.NewMemMapFs()
	fs.MkdirAll(testLocalRoot, 0755)
	writeFiles(t, fs, files)
	return &engineFixture{
		fs:     fs,
		client: newFakeRemote(),
		op: &models.DeployOperation{
			LocalRoot:     testLocalRoot,
			RemoteRoot:    "/www",
			HashAlgorithm: models.HashSHA1,
			BufferSize:    4096,
		},
	}
}

func (f *engineFixture) run(t *testing.T) (*models.RunReport, error) {
	t.Helper()
	f.client.ops = nil
	f.reporter = &recordingReporter{}
	op := *f.op
	engine := NewEngine(EngineConfig{
		Operation: &op,
		Fs:        f.fs,
		CachePath: testCachePath,
		Dial:      f.client.dialer(),
		Remote:    remote.Options{Host: "ftp.example.com"},
		Username:  "deploy",
		Password:  "secret",
		Reporter:  f.reporter,
	})
	return engine.Run(context.Background())
}

func (f *engineFixture) cache(t *testing.T) *hashstore.Store {
	t.Helper()
	store, err := hashstore.Load(f.fs, testCachePath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return store
}

func twoDirFiles() map[string]string {
	return map[string]string{
		testLocalRoot + "/a.txt":     "alpha",
		testLocalRoot + "/sub/b.txt": "bravo",
	}
}

func TestEngine_FirstRun(t *testing.T) {
	f := newEngineFixture(t, twoDirFiles())

	report, err := f.run(t)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := []string{
		"DIAL ftp.example.com",
		"USER deploy",
		"CWD /www", "MKD /www", "CWD /www",
		"STOR /www/a.txt",
		"CWD /www/sub", "MKD /www/sub", "CWD /www/sub",
		"STOR /www/sub/b.txt",
		"QUIT",
	}
	if !reflect.DeepEqual(f.client.ops, want) {
		t.Errorf("ops =\n%v\nwant\n%v", f.client.ops, want)
	}
	if f.client.files["/www/a.txt"] != "alpha" || f.client.files["/www/sub/b.txt"] != "bravo" {
		t.Errorf("remote files = %v", f.client.files)
	}

	store := f.cache(t)
	if got := store.Keys(); !reflect.DeepEqual(got, []string{"/", "sub"}) {
		t.Errorf("cache keys = %v, want [/ sub]", got)
	}

	if report.Status != models.StatusSuccess {
		t.Errorf("Status = %s", report.Status)
	}
	if report.RunID == "" {
		t.Error("RunID should be assigned")
	}
	if report.Stats.FilesUploaded != 2 || report.Stats.BytesUploaded != 10 {
		t.Errorf("Stats = %+v", report.Stats)
	}
	if f.reporter.started != 1 || f.reporter.total != 2 || f.reporter.ticks != 2 || f.reporter.finished != 1 {
		t.Errorf("reporter = %+v", f.reporter)
	}
}

func TestEngine_SecondRunUploadsNothing(t *testing.T) {
	f := newEngineFixture(t, twoDirFiles())
	if _, err := f.run(t); err != nil {
		t.Fatalf("first Run() error = %v", err)
	}
	before := f.cache(t)

	report, err := f.run(t)
	if err != nil {
		t.Fatalf("second Run() error = %v", err)
	}

	if uploads := f.client.uploads(); len(uploads) != 0 {
		t.Errorf("uploads = %v, want none", uploads)
	}
	if f.reporter.ticks != 2 {
		t.Errorf("ticks = %d, want 2", f.reporter.ticks)
	}
	if report.Stats.DirsSkipped != 2 || report.Stats.FilesSkipped != 2 {
		t.Errorf("Stats = %+v", report.Stats)
	}

	after := f.cache(t)
	for _, key := range before.Keys() {
		b, _ := before.Get(key)
		a, _ := after.Get(key)
		if a != b {
			t.Errorf("cache entry %s changed: %s -> %s", key, b, a)
		}
	}
}

func TestEngine_ModifiedFileReuploadsItsDirectory(t *testing.T) {
	f := newEngineFixture(t, twoDirFiles())
	if _, err := f.run(t); err != nil {
		t.Fatalf("first Run() error = %v", err)
	}

	writeFiles(t, f.fs, map[string]string{testLocalRoot + "/sub/b.txt": "bravo v2"})
	report, err := f.run(t)
	if err != nil {
		t.Fatalf("second Run() error = %v", err)
	}

	if want := []string{"/www/sub/b.txt"}; !reflect.DeepEqual(f.client.uploads(), want) {
		t.Errorf("uploads = %v, want %v", f.client.uploads(), want)
	}
	if !reflect.DeepEqual(report.Changed, []string{"sub"}) {
		t.Errorf("Changed = %v, want [sub]", report.Changed)
	}
	if f.client.files["/www/sub/b.txt"] != "bravo v2" {
		t.Errorf("remote b.txt = %q", f.client.files["/www/sub/b.txt"])
	}
}

func TestEngine_CacheMissReuploads(t *testing.T) {
	f := newEngineFixture(t, twoDirFiles())
	if _, err := f.run(t); err != nil {
		t.Fatalf("first Run() error = %v", err)
	}

	store := f.cache(t)
	store.Delete("/")
	if err := store.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if _, err := f.run(t); err != nil {
		t.Fatalf("second Run() error = %v", err)
	}
	if want := []string{"/www/a.txt"}; !reflect.DeepEqual(f.client.uploads(), want) {
		t.Errorf("uploads = %v, want %v", f.client.uploads(), want)
	}
	if _, ok := f.cache(t).Get("/"); !ok {
		t.Error("root digest should be recorded again")
	}
}

func TestEngine_UploadFailureLeavesCacheUntouched(t *testing.T) {
	f := newEngineFixture(t, twoDirFiles())
	original := []byte(`{"unrelated": "0000"}`)
	afero.WriteFile(f.fs, testCachePath, original, 0644)
	f.client.uploadErr["/www/sub/b.txt"] = errors.New("452 insufficient storage")

	report, err := f.run(t)

	var upErr *models.UploadError
	if !errors.As(err, &upErr) {
		t.Fatalf("error = %v, want *models.UploadError", err)
	}
	if report == nil || report.Status != models.StatusFailed {
		t.Fatalf("report = %+v, want failed status", report)
	}
	if report.Status.ExitCode() != 1 {
		t.Errorf("ExitCode() = %d, want 1", report.Status.ExitCode())
	}

	data, _ := afero.ReadFile(f.fs, testCachePath)
	if !bytes.Equal(data, original) {
		t.Errorf("cache file changed to %s", data)
	}
	if f.client.quitCalls != 1 {
		t.Errorf("Quit calls = %d, want 1", f.client.quitCalls)
	}
	if f.reporter.finished != 0 {
		t.Error("Finish should not be called on failure")
	}
	if len(f.reporter.errors) != 1 {
		t.Errorf("reporter errors = %d, want 1", len(f.reporter.errors))
	}
}

func TestEngine_MakeDirFailure(t *testing.T) {
	f := newEngineFixture(t, twoDirFiles())
	f.client.mkdirErr["/www/sub"] = errors.New("550 permission denied")

	_, err := f.run(t)

	var dirErr *models.RemoteDirError
	if !errors.As(err, &dirErr) || dirErr.Op != "mkdir" {
		t.Fatalf("error = %v, want mkdir *models.RemoteDirError", err)
	}
	if exists, _ := afero.Exists(f.fs, testCachePath); exists {
		t.Error("no cache file should be written")
	}
}

func TestEngine_CorruptCacheRecovers(t *testing.T) {
	f := newEngineFixture(t, twoDirFiles())
	afero.WriteFile(f.fs, testCachePath, []byte("{not json"), 0644)

	report, err := f.run(t)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(f.client.uploads()) != 2 {
		t.Errorf("uploads = %v, want everything", f.client.uploads())
	}
	var loadErr *models.CacheLoadError
	if len(f.reporter.errors) != 1 || !errors.As(f.reporter.errors[0], &loadErr) {
		t.Errorf("reporter errors = %v, want one CacheLoadError", f.reporter.errors)
	}
	if f.cache(t).Len() != 2 {
		t.Error("cache should be rewritten")
	}
	if report.Status != models.StatusSuccess {
		t.Errorf("Status = %s", report.Status)
	}
}

func TestEngine_Force(t *testing.T) {
	f := newEngineFixture(t, twoDirFiles())
	if _, err := f.run(t); err != nil {
		t.Fatalf("first Run() error = %v", err)
	}

	f.op.Force = true
	if _, err := f.run(t); err != nil {
		t.Fatalf("forced Run() error = %v", err)
	}
	if len(f.client.uploads()) != 2 {
		t.Errorf("uploads = %v, want everything", f.client.uploads())
	}
}

func TestEngine_DryRun(t *testing.T) {
	f := newEngineFixture(t, twoDirFiles())
	f.op.DryRun = true

	report, err := f.run(t)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(f.client.ops) != 0 {
		t.Errorf("dry run should not talk to the remote, ops = %v", f.client.ops)
	}
	if exists, _ := afero.Exists(f.fs, testCachePath); exists {
		t.Error("dry run should not write the cache")
	}
	if !reflect.DeepEqual(report.Changed, []string{"/", "sub"}) {
		t.Errorf("Changed = %v", report.Changed)
	}
	if report.Stats.FilesUploaded != 2 || report.Stats.BytesUploaded != 10 {
		t.Errorf("Stats = %+v", report.Stats)
	}
}

func TestEngine_ExcludeAndSkip(t *testing.T) {
	f := newEngineFixture(t, map[string]string{
		testLocalRoot + "/index.html": "<html>",
		testLocalRoot + "/debug.log":  "noise",
		testLocalRoot + "/.ftppass":   "{}",
	})
	f.op.ExcludePatterns = []string{"*.log"}

	op := *f.op
	f.reporter = &recordingReporter{}
	engine := NewEngine(EngineConfig{
		Operation: &op,
		Fs:        f.fs,
		CachePath: testCachePath,
		SkipPaths: []string{testLocalRoot + "/.ftppass"},
		Dial:      f.client.dialer(),
		Reporter:  f.reporter,
	})
	if _, err := engine.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if want := []string{"/www/index.html"}; !reflect.DeepEqual(f.client.uploads(), want) {
		t.Errorf("uploads = %v, want %v", f.client.uploads(), want)
	}
}

func TestEngine_LoginFailure(t *testing.T) {
	f := newEngineFixture(t, twoDirFiles())
	f.client.loginErr = errors.New("530 login incorrect")

	_, err := f.run(t)
	if err == nil {
		t.Fatal("Run() should fail when login fails")
	}
	if f.client.quitCalls != 1 {
		t.Errorf("Quit calls = %d, want 1", f.client.quitCalls)
	}
	if len(f.client.uploads()) != 0 {
		t.Error("nothing should be uploaded")
	}
}

func TestEngine_DialFailure(t *testing.T) {
	f := newEngineFixture(t, twoDirFiles())
	op := *f.op
	engine := NewEngine(EngineConfig{
		Operation: &op,
		Fs:        f.fs,
		CachePath: testCachePath,
		Dial: func(ctx context.Context, opts remote.Options) (remote.Client, error) {
			return nil, errors.New("connection refused")
		},
	})

	report, err := engine.Run(context.Background())
	if err == nil {
		t.Fatal("Run() should fail when the connection fails")
	}
	if report.Status != models.StatusFailed {
		t.Errorf("Status = %s", report.Status)
	}
}

func TestEngine_MissingLocalRoot(t *testing.T) {
	f := newEngineFixture(t, nil)
	f.op.LocalRoot = "/does/not/exist"

	_, err := f.run(t)

	var scanErr *models.ScanError
	if !errors.As(err, &scanErr) {
		t.Fatalf("error = %v, want *models.ScanError", err)
	}
	if f.client.quitCalls != 1 {
		t.Errorf("Quit calls = %d, want 1", f.client.quitCalls)
	}
}

func TestEngine_InvalidOperation(t *testing.T) {
	f := newEngineFixture(t, twoDirFiles())
	f.op.HashAlgorithm = "crc32"

	_, err := f.run(t)

	var cfgErr *models.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("error = %v, want *models.ConfigError", err)
	}
	if len(f.client.ops) != 0 {
		t.Errorf("no remote commands expected, got %v", f.client.ops)
	}
}

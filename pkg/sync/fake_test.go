package sync

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/sdejongh/ftpdeploy/pkg/logging"
	"github.com/sdejongh/ftpdeploy/pkg/remote"
)

var errNoSuchDir = errors.New("550 no such directory")

// fakeRemote is an in-memory remote.Client recording every command
type fakeRemote struct {
	dirs  map[string]bool
	files map[string]string
	cwd   string
	ops   []string

	loggedIn  bool
	quitCalls int

	loginErr error
	// mkdirErr fails MakeDir for the given paths
	mkdirErr map[string]error
	// phantomDirs are created by MakeDir but can never be entered
	phantomDirs map[string]bool
	// uploadErr fails Upload for the given remote paths
	uploadErr map[string]error
}

func newFakeRemote(existing ...string) *fakeRemote {
	f := &fakeRemote{
		dirs:        map[string]bool{"/": true},
		files:       make(map[string]string),
		cwd:         "/",
		mkdirErr:    make(map[string]error),
		phantomDirs: make(map[string]bool),
		uploadErr:   make(map[string]error),
	}
	for _, d := range existing {
		f.dirs[d] = true
	}
	return f
}

func (f *fakeRemote) dialer() remote.Dialer {
	return func(ctx context.Context, opts remote.Options) (remote.Client, error) {
		f.ops = append(f.ops, "DIAL "+opts.Host)
		return f, nil
	}
}

func (f *fakeRemote) Login(ctx context.Context, username, password string) error {
	f.ops = append(f.ops, "USER "+username)
	if f.loginErr != nil {
		return f.loginErr
	}
	f.loggedIn = true
	return nil
}

func (f *fakeRemote) ChangeDir(ctx context.Context, p string) error {
	f.ops = append(f.ops, "CWD "+p)
	if !f.dirs[p] || f.phantomDirs[p] {
		return errNoSuchDir
	}
	f.cwd = p
	return nil
}

func (f *fakeRemote) MakeDir(ctx context.Context, p string) error {
	f.ops = append(f.ops, "MKD "+p)
	if err := f.mkdirErr[p]; err != nil {
		return err
	}
	if !f.dirs[path.Dir(p)] {
		return fmt.Errorf("550 parent of %s missing", p)
	}
	f.dirs[p] = true
	return nil
}

func (f *fakeRemote) Upload(ctx context.Context, name string, r io.Reader) error {
	full := path.Join(f.cwd, name)
	f.ops = append(f.ops, "STOR "+full)
	if err := f.uploadErr[full]; err != nil {
		return err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.files[full] = string(data)
	return nil
}

func (f *fakeRemote) Quit() error {
	f.ops = append(f.ops, "QUIT")
	f.quitCalls++
	return nil
}

// uploads returns the STOR commands issued
func (f *fakeRemote) uploads() []string {
	var out []string
	for _, op := range f.ops {
		if len(op) > 5 && op[:5] == "STOR " {
			out = append(out, op[5:])
		}
	}
	return out
}

// recordingReporter keeps counts of reporter calls
type recordingReporter struct {
	started  int
	total    int
	ticks    int
	finished int
	errors   []error
	infos    []string
}

func (r *recordingReporter) Start(total int) {
	r.started++
	r.total = total
}

func (r *recordingReporter) Tick(n int) { r.ticks += n }

func (r *recordingReporter) Debug(msg string, fields logging.Fields) {}

func (r *recordingReporter) Info(msg string, fields logging.Fields) {
	r.infos = append(r.infos, msg)
}

func (r *recordingReporter) Error(msg string, err error, fields logging.Fields) {
	r.errors = append(r.errors, err)
}

func (r *recordingReporter) Finish() { r.finished++ }

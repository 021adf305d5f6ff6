package sync

import (
	"context"
	"path/filepath"

	"github.com/sdejongh/ftpdeploy/internal/platform"
	"github.com/sdejongh/ftpdeploy/pkg/digest"
	"github.com/sdejongh/ftpdeploy/pkg/hashstore"
)

// Detector decides whether a directory changed since the last recorded run
type Detector struct {
	hasher *digest.Hasher
	store  *hashstore.Store
	force  bool
}

// NewDetector creates a detector. With force set every directory is
// reported as changed, and its fresh digest is still recorded.
func NewDetector(hasher *digest.Hasher, store *hashstore.Store, force bool) *Detector {
	return &Detector{hasher: hasher, store: store, force: force}
}

// Matches hashes files (in order) under localRoot/key and compares the
// digest with the stored one. When they match the store is left alone and
// true is returned. Otherwise the new digest is recorded immediately and
// false is returned.
func (d *Detector) Matches(ctx context.Context, localRoot, key string, files []string) (bool, error) {
	dir := platform.LocalDir(localRoot, key)
	paths := make([]string, len(files))
	for i, name := range files {
		paths[i] = filepath.Join(dir, name)
	}

	sum, err := d.hasher.DirectoryDigest(ctx, paths)
	if err != nil {
		return false, err
	}

	if stored, ok := d.store.Get(key); ok && stored == sum && !d.force {
		return true, nil
	}

	// Recorded before upload; an interrupted upload leaves the new digest
	// in memory only, and nothing is persisted unless the run succeeds.
	d.store.Set(key, sum)
	return false, nil
}

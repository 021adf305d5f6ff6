// Package scan enumerates a local tree into per-directory file lists.
package scan

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/sdejongh/ftpdeploy/pkg/models"
	"github.com/spf13/afero"
)

// Options controls what the scanner leaves out
type Options struct {
	// Exclude holds glob patterns. Patterns without a slash match base
	// names, patterns with a slash match the relative path, and a trailing
	// slash restricts a pattern to directories.
	Exclude []string
	// Skip holds absolute paths that are never listed (the hash cache and
	// credentials file when they live inside the tree)
	Skip []string
}

// Scanner walks a directory tree on an afero filesystem
type Scanner struct {
	fs      afero.Fs
	exclude []string
	skip    map[string]bool
}

// NewScanner creates a scanner, validating the exclude patterns
func NewScanner(fs afero.Fs, opts Options) (*Scanner, error) {
	for _, p := range opts.Exclude {
		if !doublestar.ValidatePattern(strings.TrimSuffix(p, "/")) {
			return nil, fmt.Errorf("invalid exclude pattern: %q", p)
		}
	}

	skip := make(map[string]bool, len(opts.Skip))
	for _, p := range opts.Skip {
		skip[filepath.Clean(p)] = true
	}

	return &Scanner{
		fs:      fs,
		exclude: opts.Exclude,
		skip:    skip,
	}, nil
}

type pending struct {
	dir string // absolute
	key string
}

// Scan walks root depth-first and returns its DirectoryMap.
//
// Every directory reached gets an entry, empty ones included, and every file
// is listed under its immediate parent. Symlinks are followed. The first read
// error aborts the scan with a *models.ScanError.
func (s *Scanner) Scan(ctx context.Context, root string) (*DirectoryMap, error) {
	result := newDirectoryMap()
	stack := []pending{{dir: root, key: RootKey}}

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		result.register(current.key)

		entries, err := afero.ReadDir(s.fs, current.dir)
		if err != nil {
			return nil, &models.ScanError{Path: current.dir, Err: err}
		}

		var subdirs []pending
		for _, entry := range entries {
			name := entry.Name()
			abs := filepath.Join(current.dir, name)
			if s.skip[abs] {
				continue
			}

			isDir, err := s.isDir(abs, entry)
			if err != nil {
				return nil, err
			}

			rel := childKey(current.key, name)
			if s.excluded(rel, name, isDir) {
				continue
			}

			if isDir {
				subdirs = append(subdirs, pending{dir: abs, key: rel})
			} else {
				result.addFile(current.key, name)
			}
		}

		// Reverse push so the first subdirectory is visited next
		for i := len(subdirs) - 1; i >= 0; i-- {
			stack = append(stack, subdirs[i])
		}
	}

	return result, nil
}

// isDir resolves symlinks to decide whether an entry is a directory
func (s *Scanner) isDir(abs string, entry os.FileInfo) (bool, error) {
	if entry.Mode()&os.ModeSymlink == 0 {
		return entry.IsDir(), nil
	}
	info, err := s.fs.Stat(abs)
	if err != nil {
		return false, &models.ScanError{Path: abs, Err: err}
	}
	return info.IsDir(), nil
}

func (s *Scanner) excluded(rel, name string, isDir bool) bool {
	for _, pattern := range s.exclude {
		if strings.HasSuffix(pattern, "/") {
			if !isDir {
				continue
			}
			pattern = strings.TrimSuffix(pattern, "/")
		}

		target := rel
		if !strings.Contains(pattern, "/") {
			target = name
		}
		if ok, _ := doublestar.Match(pattern, target); ok {
			return true
		}
	}
	return false
}

func childKey(parent, name string) string {
	if parent == RootKey {
		return name
	}
	return parent + "/" + name
}

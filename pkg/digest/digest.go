// Package digest computes deterministic content digests over directories.
package digest

import (
	"context"
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/sdejongh/ftpdeploy/pkg/models"
	"github.com/spf13/afero"
)

const minBufferSize = 4096

// Hasher computes directory digests by streaming file contents
type Hasher struct {
	fs         afero.Fs
	algorithm  models.HashAlgorithm
	bufferPool *sync.Pool
}

// New creates a Hasher reading from fs with the given algorithm
func New(fs afero.Fs, algorithm models.HashAlgorithm, bufferSize int) (*Hasher, error) {
	if !algorithm.Valid() {
		return nil, fmt.Errorf("unsupported hash algorithm: %s", algorithm)
	}
	if bufferSize < minBufferSize {
		bufferSize = minBufferSize
	}
	return &Hasher{
		fs:        fs,
		algorithm: algorithm,
		bufferPool: &sync.Pool{
			New: func() interface{} {
				buf := make([]byte, bufferSize)
				return &buf
			},
		},
	}, nil
}

// Algorithm returns the configured algorithm
func (h *Hasher) Algorithm() models.HashAlgorithm {
	return h.algorithm
}

func (h *Hasher) newHash() hash.Hash {
	switch h.algorithm {
	case models.HashSHA256:
		return sha256.New()
	case models.HashMD5:
		return md5.New()
	default:
		return sha1.New()
	}
}

// DirectoryDigest hashes the given files in order and returns a hex digest.
//
// Each file contributes its base name, its content and its length, so adding,
// removing, renaming or editing a file changes the result. The same files in
// the same order always yield the same digest. An empty list hashes to the
// digest of no input.
func (h *Hasher) DirectoryDigest(ctx context.Context, paths []string) (string, error) {
	sum := h.newHash()
	for _, p := range paths {
		io.WriteString(sum, filepath.Base(p))
		sum.Write([]byte{0})

		n, err := h.copyFile(ctx, sum, p)
		if err != nil {
			return "", err
		}

		sum.Write([]byte{0})
		io.WriteString(sum, strconv.FormatInt(n, 10))
		sum.Write([]byte{'\n'})
	}
	return hex.EncodeToString(sum.Sum(nil)), nil
}

// copyFile streams path into w using a pooled buffer
func (h *Hasher) copyFile(ctx context.Context, w io.Writer, path string) (int64, error) {
	f, err := h.fs.Open(path)
	if err != nil {
		return 0, &models.ScanError{Path: path, Err: err}
	}
	defer f.Close()

	bufPtr := h.bufferPool.Get().(*[]byte)
	defer h.bufferPool.Put(bufPtr)
	buffer := *bufPtr

	var total int64
	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}

		n, err := f.Read(buffer)
		if n > 0 {
			w.Write(buffer[:n])
			total += int64(n)
		}
		if err == io.EOF {
			return total, nil
		}
		if err != nil {
			return total, &models.ScanError{Path: path, Err: err}
		}
	}
}

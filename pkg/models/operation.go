package models

import (
	"time"
)

// HashAlgorithm selects the digest used for directory change detection
type HashAlgorithm string

const (
	// HashSHA1 is the default, compatible with caches written by earlier deploy tools
	HashSHA1 HashAlgorithm = "sha1"
	// HashSHA256 uses SHA-256
	HashSHA256 HashAlgorithm = "sha256"
	// HashMD5 uses MD5 (fastest, weakest)
	HashMD5 HashAlgorithm = "md5"
)

// Valid reports whether the algorithm is supported
func (a HashAlgorithm) Valid() bool {
	switch a {
	case HashSHA1, HashSHA256, HashMD5:
		return true
	}
	return false
}

// DeployOperation describes a single deploy run
type DeployOperation struct {
	ID              string
	LocalRoot       string
	RemoteRoot      string
	HashAlgorithm   HashAlgorithm
	ExcludePatterns []string
	DryRun          bool
	// Force ignores cached hashes so every directory is uploaded
	Force          bool
	BandwidthLimit int64 // bytes per second, 0 = unlimited
	BufferSize     int
	CreatedAt      time.Time
}

// Validate checks if the operation configuration is valid
func (op *DeployOperation) Validate() error {
	if op.LocalRoot == "" {
		return &ConfigError{Field: "src", Message: "local root is required"}
	}
	if op.RemoteRoot == "" {
		return &ConfigError{Field: "dest", Message: "remote root is required"}
	}
	if !op.HashAlgorithm.Valid() {
		return &ConfigError{Field: "hash_algorithm", Message: "unsupported algorithm " + string(op.HashAlgorithm)}
	}
	if op.BufferSize < 1024 {
		return &ConfigError{Field: "buffer_size", Message: "must be at least 1024 bytes"}
	}
	if op.BandwidthLimit < 0 {
		return &ConfigError{Field: "bandwidth_limit", Message: "must not be negative"}
	}
	return nil
}

package models

import "fmt"

// ConfigError reports missing or malformed configuration or credentials
type ConfigError struct {
	Field   string
	Message string
	Err     error
}

func (e *ConfigError) Error() string {
	msg := "invalid configuration"
	if e.Field != "" {
		msg += " " + e.Field
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigError) Unwrap() error { return e.Err }

// ScanError reports a filesystem read failure while walking or hashing the local tree
type ScanError struct {
	Path string
	Err  error
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("failed to read %s: %v", e.Path, e.Err)
}

func (e *ScanError) Unwrap() error { return e.Err }

// RemoteDirError reports that a remote directory could not be entered or created
type RemoteDirError struct {
	Path string
	// Op is the remote operation that failed ("mkdir" or "chdir")
	Op  string
	Err error
}

func (e *RemoteDirError) Error() string {
	return fmt.Sprintf("remote %s %s failed: %v", e.Op, e.Path, e.Err)
}

func (e *RemoteDirError) Unwrap() error { return e.Err }

// UploadError reports a failed file transfer
type UploadError struct {
	LocalPath  string
	RemoteName string
	Err        error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("cannot upload %s as %s: %v", e.LocalPath, e.RemoteName, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

// CacheLoadError reports an unreadable or corrupt hash cache.
// It is recoverable: callers fall back to an empty cache.
type CacheLoadError struct {
	Path string
	Err  error
}

func (e *CacheLoadError) Error() string {
	return fmt.Sprintf("failed to load hash cache %s: %v", e.Path, e.Err)
}

func (e *CacheLoadError) Unwrap() error { return e.Err }

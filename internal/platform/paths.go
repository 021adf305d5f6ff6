// Package platform maps directory keys onto local and remote paths.
package platform

import (
	"path"
	"path/filepath"
	"runtime"
	"strings"
)

// rootKey mirrors scan.RootKey
const rootKey = "/"

// NormalizePath cleans a local path for the current platform
func NormalizePath(p string) string {
	normalized := filepath.Clean(p)

	// On Windows, ensure UNC paths are preserved
	if runtime.GOOS == "windows" {
		if strings.HasPrefix(p, "\\\\") && !strings.HasPrefix(normalized, "\\\\") {
			normalized = "\\\\" + normalized
		}
	}

	return normalized
}

// IsUNCPath checks if a path is a UNC path (Windows network share)
func IsUNCPath(p string) bool {
	if runtime.GOOS != "windows" {
		return false
	}
	return strings.HasPrefix(p, "\\\\") || strings.HasPrefix(p, "//")
}

// IsAbsolute checks if a path is absolute
func IsAbsolute(p string) bool {
	if IsUNCPath(p) {
		return true
	}
	return filepath.IsAbs(p)
}

// ResolveLocal makes p absolute against base and cleans it
func ResolveLocal(base, p string) string {
	if !IsAbsolute(p) {
		p = filepath.Join(base, p)
	}
	return NormalizePath(p)
}

// CleanRemote returns a slash-separated absolute remote path.
// Backslashes are treated as separators.
func CleanRemote(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	return path.Clean("/" + p)
}

// RemoteDir returns the remote directory for a directory key.
// The root key maps to remoteRoot itself.
func RemoteDir(remoteRoot, key string) string {
	if key == rootKey {
		return CleanRemote(remoteRoot)
	}
	return CleanRemote(path.Join(remoteRoot, key))
}

// LocalDir returns the local directory for a directory key
func LocalDir(localRoot, key string) string {
	if key == rootKey {
		return localRoot
	}
	return filepath.Join(localRoot, filepath.FromSlash(key))
}

// ValidatePath checks if a path is valid for the current platform
func ValidatePath(p string) error {
	if p == "" {
		return &PathError{Path: p, Message: "path is empty"}
	}

	// Check for invalid characters based on OS
	if runtime.GOOS == "windows" {
		invalidChars := []string{"<", ">", "\"", "|", "?", "*"}
		for _, char := range invalidChars {
			if strings.Contains(p, char) {
				return &PathError{Path: p, Message: "path contains invalid character: " + char}
			}
		}
	}

	return nil
}

// PathError represents a path validation error
type PathError struct {
	Path    string
	Message string
}

func (e *PathError) Error() string {
	return "invalid path '" + e.Path + "': " + e.Message
}

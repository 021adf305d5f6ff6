package models

import (
	"errors"
	"io/fs"
	"strings"
	"testing"
)

// ============== DeployOperation Tests ==============

func TestHashAlgorithm(t *testing.T) {
	tests := []struct {
		algorithm HashAlgorithm
		valid     bool
	}{
		{HashSHA1, true},
		{HashSHA256, true},
		{HashMD5, true},
		{HashAlgorithm("crc32"), false},
		{HashAlgorithm(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.algorithm), func(t *testing.T) {
			if got := tt.algorithm.Valid(); got != tt.valid {
				t.Errorf("Valid() = %v, want %v", got, tt.valid)
			}
		})
	}
}

func TestDeployOperationValidate(t *testing.T) {
	valid := func() *DeployOperation {
		return &DeployOperation{
			LocalRoot:     "/local",
			RemoteRoot:    "/www",
			HashAlgorithm: HashSHA1,
			BufferSize:    4096,
		}
	}

	t.Run("ValidOperation", func(t *testing.T) {
		if err := valid().Validate(); err != nil {
			t.Errorf("Validate() error = %v, want nil", err)
		}
	})

	tests := []struct {
		name   string
		mutate func(op *DeployOperation)
		field  string
	}{
		{"EmptyLocalRoot", func(op *DeployOperation) { op.LocalRoot = "" }, "src"},
		{"EmptyRemoteRoot", func(op *DeployOperation) { op.RemoteRoot = "" }, "dest"},
		{"BadAlgorithm", func(op *DeployOperation) { op.HashAlgorithm = "crc32" }, "hash_algorithm"},
		{"SmallBuffer", func(op *DeployOperation) { op.BufferSize = 10 }, "buffer_size"},
		{"NegativeBandwidth", func(op *DeployOperation) { op.BandwidthLimit = -1 }, "bandwidth_limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op := valid()
			tt.mutate(op)
			err := op.Validate()
			if err == nil {
				t.Fatal("Validate() should fail")
			}
			var ce *ConfigError
			if !errors.As(err, &ce) {
				t.Fatalf("error type = %T, want *ConfigError", err)
			}
			if ce.Field != tt.field {
				t.Errorf("Field = %s, want %s", ce.Field, tt.field)
			}
		})
	}
}

// ============== Error Tests ==============

func TestErrorsUnwrap(t *testing.T) {
	cause := fs.ErrPermission

	tests := []struct {
		name     string
		err      error
		contains string
	}{
		{"ConfigError", &ConfigError{Field: "auth", Message: "missing", Err: cause}, "auth: missing"},
		{"ScanError", &ScanError{Path: "/src/sub", Err: cause}, "/src/sub"},
		{"RemoteDirError", &RemoteDirError{Path: "/www/sub", Op: "mkdir", Err: cause}, "mkdir /www/sub"},
		{"UploadError", &UploadError{LocalPath: "/src/a.txt", RemoteName: "a.txt", Err: cause}, "/src/a.txt"},
		{"CacheLoadError", &CacheLoadError{Path: "/p/.hashes.json", Err: cause}, ".hashes.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, cause) {
				t.Error("errors.Is should find the wrapped cause")
			}
			if !strings.Contains(tt.err.Error(), tt.contains) {
				t.Errorf("Error() = %q, want it to contain %q", tt.err.Error(), tt.contains)
			}
		})
	}
}

func TestConfigErrorWithoutCause(t *testing.T) {
	err := &ConfigError{Field: "src", Message: "local root is required"}
	if err.Unwrap() != nil {
		t.Error("Unwrap() should be nil without a cause")
	}
	if err.Error() != "invalid configuration src: local root is required" {
		t.Errorf("Error() = %q", err.Error())
	}
}

// ============== Report Tests ==============

func TestRunStatusExitCode(t *testing.T) {
	if StatusSuccess.ExitCode() != 0 {
		t.Errorf("success exit code = %d, want 0", StatusSuccess.ExitCode())
	}
	if StatusFailed.ExitCode() == 0 {
		t.Error("failed exit code should be non-zero")
	}
}

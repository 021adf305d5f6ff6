// Package remote defines the remote endpoint deployments are uploaded to.
package remote

import (
	"context"
	"io"
	"time"
)

// Client is a stateful connection with a current working directory.
// Implementations include FTP; tests use in-memory fakes.
type Client interface {
	// Login authenticates the connection
	Login(ctx context.Context, username, password string) error

	// ChangeDir makes path the current directory
	ChangeDir(ctx context.Context, path string) error

	// MakeDir creates path. Parents are not created.
	MakeDir(ctx context.Context, path string) error

	// Upload stores r as name in the current directory, overwriting it
	Upload(ctx context.Context, name string, r io.Reader) error

	// Quit ends the session and closes the connection
	Quit() error
}

// Options describes how to reach the remote endpoint
type Options struct {
	Host string
	Port int
	// TLS enables explicit FTPS (AUTH TLS)
	TLS bool
	// InsecureSkipVerify disables certificate checks when TLS is on
	InsecureSkipVerify bool
	// Timeout bounds connection establishment
	Timeout time.Duration
}

// DefaultTimeout is used when Options.Timeout is zero
const DefaultTimeout = 30 * time.Second

// Dialer opens an unauthenticated connection
type Dialer func(ctx context.Context, opts Options) (Client, error)

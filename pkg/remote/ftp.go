package remote

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"strconv"

	"github.com/jlaffaye/ftp"
)

// FTP is a Client backed by a single FTP control connection
type FTP struct {
	conn *ftp.ServerConn
	addr string
}

// DialFTP connects to the FTP server described by opts
func DialFTP(ctx context.Context, opts Options) (Client, error) {
	if opts.Host == "" {
		return nil, fmt.Errorf("no FTP host configured")
	}
	port := opts.Port
	if port == 0 {
		port = 21
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	addr := net.JoinHostPort(opts.Host, strconv.Itoa(port))
	dialOpts := []ftp.DialOption{
		ftp.DialWithContext(ctx),
		ftp.DialWithTimeout(timeout),
	}
	if opts.TLS {
		dialOpts = append(dialOpts, ftp.DialWithExplicitTLS(&tls.Config{
			ServerName:         opts.Host,
			InsecureSkipVerify: opts.InsecureSkipVerify,
		}))
	}

	conn, err := ftp.Dial(addr, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}
	return &FTP{conn: conn, addr: addr}, nil
}

// Login authenticates with username and password
func (c *FTP) Login(ctx context.Context, username, password string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := c.conn.Login(username, password); err != nil {
		return fmt.Errorf("failed to log in to %s as %s: %w", c.addr, username, err)
	}
	return nil
}

// ChangeDir issues CWD
func (c *FTP) ChangeDir(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.conn.ChangeDir(path)
}

// MakeDir issues MKD
func (c *FTP) MakeDir(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.conn.MakeDir(path)
}

// Upload issues STOR in the current directory
func (c *FTP) Upload(ctx context.Context, name string, r io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.conn.Stor(name, r)
}

// Quit sends QUIT and closes the connection
func (c *FTP) Quit() error {
	return c.conn.Quit()
}

// Package sshutil dials SSH hosts the way the ssh command line would
// (agent, ~/.ssh/config aliases, known_hosts) and runs one-shot commands
// on them.
package sshutil

import "context"

// Runner executes commands on a remote host. Both the real Client and
// the mock in sshutil/testing satisfy it.
type Runner interface {
	// Exec runs a command and returns stdout, stderr, and exit code.
	// Exit code is -1 if the command couldn't be executed at all.
	// A non-zero exit code with nil error means the command ran but failed.
	Exec(ctx context.Context, cmd string) (stdout, stderr []byte, exitCode int, err error)

	// Close closes the connection.
	Close() error

	// GetHost returns the original host/alias used to connect.
	GetHost() string
}

// DialFunc opens a Runner. Sources take one so tests can swap in a mock.
type DialFunc func(host string, opts DialOptions) (Runner, error)

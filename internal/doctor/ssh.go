package doctor

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"

	"github.com/rileyhilliard/freqmon/internal/config"
	"github.com/rileyhilliard/freqmon/internal/errors"
	"github.com/rileyhilliard/freqmon/pkg/sshutil"
	"golang.org/x/crypto/ssh/agent"
)

// SSHKeyCheck looks at the private keys the SSH source would offer to Host.
type SSHKeyCheck struct {
	Host string

	// Files overrides sshutil.KeyFiles in tests.
	Files func(host string) []string
}

func (c *SSHKeyCheck) Name() string     { return "ssh_key" }
func (c *SSHKeyCheck) Category() string { return "SSH" }

func (c *SSHKeyCheck) Run() CheckResult {
	files := c.Files
	if files == nil {
		files = sshutil.KeyFiles
	}

	var usable, encrypted, loose []string
	for _, keyPath := range files(c.Host) {
		info, err := os.Stat(keyPath)
		if err != nil {
			continue
		}
		if info.Mode().Perm()&0077 != 0 {
			loose = append(loose, filepath.Base(keyPath))
		}

		var encErr *sshutil.EncryptedKeyError
		switch err := sshutil.ParseKeyFile(keyPath); {
		case err == nil:
			usable = append(usable, filepath.Base(keyPath))
		case stderrors.As(err, &encErr):
			encrypted = append(encrypted, filepath.Base(keyPath))
		}
	}

	switch {
	case len(usable) == 0 && len(encrypted) == 0:
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("No SSH key for %s", c.Host),
			Suggestion: "Generate a key with: ssh-keygen -t ed25519, then ssh-copy-id " + c.Host,
		}
	case len(loose) > 0:
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    fmt.Sprintf("Insecure permissions on: %s", strings.Join(loose, ", ")),
			Suggestion: "Fix: chmod 600 ~/.ssh/<keyfile>",
		}
	case len(usable) == 0:
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    fmt.Sprintf("SSH key%s need a passphrase: %s", pluralize(len(encrypted)), strings.Join(encrypted, ", ")),
			Suggestion: "Load them into the agent: ssh-add",
		}
	}
	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("SSH key found: ~/.ssh/%s", usable[0]),
	}
}

// SSHAgentCheck asks the agent behind SSH_AUTH_SOCK which keys it holds.
// A missing agent only warns: unencrypted key files work without one.
type SSHAgentCheck struct{}

func (c *SSHAgentCheck) Name() string     { return "ssh_agent" }
func (c *SSHAgentCheck) Category() string { return "SSH" }

func (c *SSHAgentCheck) Run() CheckResult {
	socket := os.Getenv("SSH_AUTH_SOCK")
	if socket == "" {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    "SSH agent not running",
			Suggestion: "Fix: eval $(ssh-agent) && ssh-add",
		}
	}

	conn, err := net.Dial("unix", socket)
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    "SSH agent socket not accessible",
			Suggestion: "Fix: eval $(ssh-agent) && ssh-add",
		}
	}
	defer conn.Close() //nolint:errcheck // Best-effort close, error not actionable

	keys, err := agent.NewClient(conn).List()
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("Cannot query SSH agent: %v", err),
			Suggestion: "Check SSH agent: ssh-add -l",
		}
	}
	if len(keys) == 0 {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    "SSH agent running but no keys loaded",
			Suggestion: "Add a key with: ssh-add",
		}
	}

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("SSH agent running with %d key%s loaded", len(keys), pluralize(len(keys))),
	}
}

// SSHDirCheck connects to the telemetry host and checks the directory exists.
type SSHDirCheck struct {
	SSH  config.SSHConfig
	Dial sshutil.DialFunc
}

func (c *SSHDirCheck) Name() string     { return "ssh_dir" }
func (c *SSHDirCheck) Category() string { return "SSH" }

func (c *SSHDirCheck) Run() CheckResult {
	dial := c.Dial
	if dial == nil {
		dial = sshutil.DialRunner
	}
	client, err := dial(c.SSH.Host, sshutil.DialOptions{
		Timeout:               c.SSH.Timeout,
		StrictHostKeyChecking: c.SSH.StrictHostKeyChecking,
	})
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("Can't connect to %s: %s", c.SSH.Host, errors.Short(err)),
			Suggestion: fmt.Sprintf("Try: ssh %s", c.SSH.Host),
		}
	}
	defer client.Close() //nolint:errcheck // Best-effort close, error not actionable

	ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
	defer cancel()
	_, stderr, exitCode, err := client.Exec(ctx, "test -d "+sshutil.QuotePath(c.SSH.Dir))
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("Cannot check directory: %s", errors.Short(err)),
			Suggestion: "Check SSH connection",
		}
	}
	if exitCode != 0 {
		msg := fmt.Sprintf("Directory does not exist on %s: %s", c.SSH.Host, c.SSH.Dir)
		if s := strings.TrimSpace(string(stderr)); s != "" {
			msg += " (" + s + ")"
		}
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    msg,
			Suggestion: "Set source.ssh.dir to where the producer writes recent_data_device_<N>.csv",
		}
	}

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("%s:%s is reachable", c.SSH.Host, c.SSH.Dir),
	}
}

// NewSSHChecks creates the SSH checks for an SSH source.
func NewSSHChecks(sc config.SSHConfig, dial sshutil.DialFunc) []Check {
	return []Check{
		&SSHKeyCheck{Host: sc.Host},
		&SSHAgentCheck{},
		&SSHDirCheck{SSH: sc, Dial: dial},
	}
}

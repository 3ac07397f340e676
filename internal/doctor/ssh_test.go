package doctor

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/rileyhilliard/freqmon/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
)

func writeKey(t *testing.T, path string, passphrase string, perm os.FileMode) ed25519.PrivateKey {
	t.Helper()
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	var block *pem.Block
	if passphrase == "" {
		block, err = ssh.MarshalPrivateKey(priv, "")
	} else {
		block, err = ssh.MarshalPrivateKeyWithPassphrase(priv, "", []byte(passphrase))
	}
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, pem.EncodeToMemory(block), perm))
	return priv
}

func TestSSHKeyCheck(t *testing.T) {
	dir := t.TempDir()
	plain := filepath.Join(dir, "id_ed25519")
	locked := filepath.Join(dir, "id_locked")
	loose := filepath.Join(dir, "id_loose")
	writeKey(t, plain, "", 0600)
	writeKey(t, locked, "hunter2", 0600)
	writeKey(t, loose, "", 0644)

	run := func(files ...string) CheckResult {
		c := &SSHKeyCheck{Host: "lab-pi", Files: func(host string) []string {
			assert.Equal(t, "lab-pi", host)
			return files
		}}
		return c.Run()
	}

	t.Run("usable key", func(t *testing.T) {
		result := run(filepath.Join(dir, "missing"), plain)
		assert.Equal(t, StatusPass, result.Status)
		assert.Contains(t, result.Message, "id_ed25519")
	})

	t.Run("no keys", func(t *testing.T) {
		result := run(filepath.Join(dir, "missing"))
		assert.Equal(t, StatusFail, result.Status)
		assert.Contains(t, result.Message, "lab-pi")
		assert.Contains(t, result.Suggestion, "ssh-keygen")
	})

	t.Run("only encrypted", func(t *testing.T) {
		result := run(locked)
		assert.Equal(t, StatusWarn, result.Status)
		assert.Contains(t, result.Message, "passphrase")
		assert.Contains(t, result.Suggestion, "ssh-add")
	})

	t.Run("loose permissions", func(t *testing.T) {
		result := run(plain, loose)
		assert.Equal(t, StatusWarn, result.Status)
		assert.Contains(t, result.Message, "id_loose")
	})
}

// serveAgent runs an in-memory agent on a unix socket and points
// SSH_AUTH_SOCK at it.
func serveAgent(t *testing.T, keys ...ed25519.PrivateKey) {
	t.Helper()
	// Unix socket paths are short; t.TempDir can exceed the limit.
	dir, err := os.MkdirTemp("", "agent")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })

	socket := filepath.Join(dir, "sock")
	l, err := net.Listen("unix", socket)
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })

	keyring := agent.NewKeyring()
	for _, k := range keys {
		require.NoError(t, keyring.Add(agent.AddedKey{PrivateKey: k}))
	}

	go func() {
		for {
			conn, err := l.Accept()
			if err != nil {
				return
			}
			go func() {
				defer conn.Close()
				agent.ServeAgent(keyring, conn) //nolint:errcheck // Ends when the client hangs up
			}()
		}
	}()

	t.Setenv("SSH_AUTH_SOCK", socket)
}

func TestSSHAgentCheck(t *testing.T) {
	t.Run("no agent", func(t *testing.T) {
		t.Setenv("SSH_AUTH_SOCK", "")
		result := (&SSHAgentCheck{}).Run()
		assert.Equal(t, StatusWarn, result.Status)
		assert.Equal(t, "SSH agent not running", result.Message)
	})

	t.Run("dead socket", func(t *testing.T) {
		t.Setenv("SSH_AUTH_SOCK", filepath.Join(t.TempDir(), "gone"))
		result := (&SSHAgentCheck{}).Run()
		assert.Equal(t, StatusWarn, result.Status)
		assert.Contains(t, result.Message, "not accessible")
	})

	t.Run("empty agent", func(t *testing.T) {
		serveAgent(t)
		result := (&SSHAgentCheck{}).Run()
		assert.Equal(t, StatusWarn, result.Status)
		assert.Contains(t, result.Message, "no keys loaded")
	})

	t.Run("keys loaded", func(t *testing.T) {
		_, k1, err := ed25519.GenerateKey(rand.Reader)
		require.NoError(t, err)
		_, k2, err := ed25519.GenerateKey(rand.Reader)
		require.NoError(t, err)

		serveAgent(t, k1, k2)
		result := (&SSHAgentCheck{}).Run()
		assert.Equal(t, StatusPass, result.Status)
		assert.Equal(t, "SSH agent running with 2 keys loaded", result.Message)
	})
}

func TestNewSSHChecks(t *testing.T) {
	checks := NewSSHChecks(config.SSHConfig{Host: "lab-pi"}, nil)
	require.Len(t, checks, 3)
	assert.Equal(t, "lab-pi", checks[0].(*SSHKeyCheck).Host)
	for _, c := range checks {
		assert.Equal(t, "SSH", c.Category())
	}
}

// Package testing provides an in-memory sshutil.Runner for tests.
package testing

import (
	"context"
	"errors"
	"path"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/rileyhilliard/freqmon/pkg/sshutil"
)

// ErrClosed is returned by Exec after Close.
var ErrClosed = errors.New("connection closed")

// CommandResponse defines a canned response for a specific command pattern.
type CommandResponse struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
	Error    error
}

// MockClient simulates an SSH host. It answers `cat <file>` and
// `ls -1 <dir>` from an in-memory file map; anything else needs a
// canned response.
type MockClient struct {
	mu       sync.Mutex
	host     string
	files    map[string][]byte
	dirs     map[string]bool
	commands map[string]CommandResponse
	calls    []string
	closed   bool
}

var _ sshutil.Runner = (*MockClient)(nil)

// NewMockClient creates a mock client with no files.
func NewMockClient(host string) *MockClient {
	return &MockClient{
		host:     host,
		files:    make(map[string][]byte),
		dirs:     make(map[string]bool),
		commands: make(map[string]CommandResponse),
	}
}

// WriteFile adds or replaces a file; its parent directory springs into existence.
func (m *MockClient) WriteFile(p string, content []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[p] = content
	m.dirs[path.Dir(p)] = true
}

// RemoveFile deletes a file, leaving its directory in place.
func (m *MockClient) RemoveFile(p string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, p)
}

// Mkdir registers an empty directory.
func (m *MockClient) Mkdir(dir string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dirs[strings.TrimRight(dir, "/")] = true
}

// SetCommandResponse registers a canned response. The pattern is matched
// exactly first, then as a regular expression.
func (m *MockClient) SetCommandResponse(pattern string, resp CommandResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commands[pattern] = resp
}

// Calls returns every command run so far.
func (m *MockClient) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// Closed reports whether Close was called.
func (m *MockClient) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Exec implements sshutil.Runner.
func (m *MockClient) Exec(ctx context.Context, cmd string) (stdout, stderr []byte, exitCode int, err error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, -1, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, nil, -1, ErrClosed
	}
	m.calls = append(m.calls, cmd)

	if resp, ok := m.commands[cmd]; ok {
		return resp.Stdout, resp.Stderr, resp.ExitCode, resp.Error
	}
	for pattern, resp := range m.commands {
		if matched, _ := regexp.MatchString(pattern, cmd); matched {
			return resp.Stdout, resp.Stderr, resp.ExitCode, resp.Error
		}
	}

	args := splitWords(cmd)
	switch {
	case len(args) == 2 && args[0] == "cat":
		return m.cat(args[1])
	case len(args) == 3 && args[0] == "ls" && args[1] == "-1":
		return m.ls(args[2])
	case len(args) == 3 && args[0] == "test" && args[1] == "-d":
		if m.dirs[strings.TrimRight(args[2], "/")] {
			return nil, nil, 0, nil
		}
		return nil, nil, 1, nil
	}
	return nil, []byte("sh: command not found: " + cmd), 127, nil
}

// Close marks the connection as closed.
func (m *MockClient) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// GetHost returns the host name.
func (m *MockClient) GetHost() string {
	return m.host
}

func (m *MockClient) cat(p string) ([]byte, []byte, int, error) {
	content, ok := m.files[p]
	if !ok {
		return nil, []byte("cat: " + p + ": No such file or directory\n"), 1, nil
	}
	return content, nil, 0, nil
}

func (m *MockClient) ls(dir string) ([]byte, []byte, int, error) {
	dir = strings.TrimRight(dir, "/")
	if !m.dirs[dir] {
		return nil, []byte("ls: cannot access '" + dir + "': No such file or directory\n"), 2, nil
	}
	var names []string
	for p := range m.files {
		if path.Dir(p) == dir {
			names = append(names, path.Base(p))
		}
	}
	sort.Strings(names)
	if len(names) == 0 {
		return nil, nil, 0, nil
	}
	return []byte(strings.Join(names, "\n") + "\n"), nil, 0, nil
}

// splitWords splits a command line on spaces, honoring single quotes and
// backslash escapes, which covers what sshutil.Quote produces.
func splitWords(s string) []string {
	var (
		words   []string
		cur     strings.Builder
		inWord  bool
		quoted  bool
		escaped bool
	)
	for _, r := range s {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case quoted:
			if r == '\'' {
				quoted = false
			} else {
				cur.WriteRune(r)
			}
		case r == '\\':
			escaped, inWord = true, true
		case r == '\'':
			quoted, inWord = true, true
		case r == ' ' || r == '\t':
			if inWord {
				words = append(words, cur.String())
				cur.Reset()
				inWord = false
			}
		default:
			cur.WriteRune(r)
			inWord = true
		}
	}
	if inWord {
		words = append(words, cur.String())
	}
	return words
}

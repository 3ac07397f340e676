package config

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ExpandTilde replaces ~ or ~/path with the user's home directory.
// Use this for LOCAL paths only. Remote paths keep ~ for the remote shell.
func ExpandTilde(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
	}
	return path
}

// Expand replaces variables in a local path:
//   - ${PROJECT} - git repo name or directory name
//   - ${USER}    - current username
//   - ${HOME}    - user's home directory
func Expand(s string) string {
	return expand(s, getHome)
}

// ExpandRemote is Expand for paths on an SSH host: ${HOME} becomes ~ so the
// remote shell resolves it.
func ExpandRemote(s string) string {
	return expand(s, func() string { return "~" })
}

func expand(s string, home func() string) string {
	if !strings.Contains(s, "${") {
		return s
	}
	if strings.Contains(s, "${PROJECT}") {
		s = strings.ReplaceAll(s, "${PROJECT}", getProject())
	}
	if strings.Contains(s, "${USER}") {
		s = strings.ReplaceAll(s, "${USER}", getUser())
	}
	if strings.Contains(s, "${HOME}") {
		s = strings.ReplaceAll(s, "${HOME}", home())
	}
	return s
}

// getProject returns the git toplevel directory name, or the cwd name.
func getProject() string {
	if out, err := exec.Command("git", "rev-parse", "--show-toplevel").Output(); err == nil {
		if name := strings.TrimSpace(string(out)); name != "" {
			return filepath.Base(name)
		}
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "project"
	}
	return filepath.Base(cwd)
}

func getUser() string {
	for _, key := range []string{"USER", "LOGNAME", "USERNAME"} {
		if u := os.Getenv(key); u != "" {
			return u
		}
	}
	return "user"
}

func getHome() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	return "~"
}

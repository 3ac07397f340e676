package sshutil

import "strings"

// Quote wraps s in single quotes so a POSIX shell treats it literally.
func Quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// QuotePath quotes a remote path but leaves a leading ~ bare so the remote
// shell still expands it.
func QuotePath(p string) string {
	switch {
	case p == "~":
		return p
	case strings.HasPrefix(p, "~/"):
		return "~/" + Quote(p[2:])
	default:
		return Quote(p)
	}
}

// JoinPath joins a remote directory and file name with a single slash.
func JoinPath(dir, name string) string {
	if dir == "" {
		return name
	}
	return strings.TrimRight(dir, "/") + "/" + name
}

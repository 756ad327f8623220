package session

import "path/filepath"

// WorkspaceInfo identifies a project by name and root path. Equality is
// path equality after normalization; the name plays no part in it.
type WorkspaceInfo struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// NormalizePath resolves "." and ".." segments and collapses separators so
// that /a/b/../c and /a/c compare equal.
func NormalizePath(p string) string {
	return filepath.Clean(p)
}

// SameWorkspace reports whether two workspaces identify the same project.
// Two absent workspaces are the same; one absent and one present are not.
func SameWorkspace(a, b *WorkspaceInfo) bool {
	if a == nil || b == nil {
		return a == b
	}
	return NormalizePath(a.Path) == NormalizePath(b.Path)
}

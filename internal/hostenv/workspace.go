package hostenv

import (
	"os"
	"path/filepath"

	"github.com/worklens/worklens/internal/session"
)

// CurrentWorkspace resolves the active project for dir (the working
// directory when empty): the nearest ancestor holding a .git entry, named
// after its base directory. Returns nil when dir is not inside any
// project; sessions captured there simply carry no workspace.
func CurrentWorkspace(dir string) *session.WorkspaceInfo {
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil
		}
		dir = cwd
	}

	root := findProjectRoot(dir)
	if root == "" {
		return nil
	}

	return &session.WorkspaceInfo{
		Name: filepath.Base(root),
		Path: root,
	}
}

// ExplicitWorkspace builds a workspace from a user-supplied root path.
func ExplicitWorkspace(root string) *session.WorkspaceInfo {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil
	}
	return &session.WorkspaceInfo{
		Name: filepath.Base(abs),
		Path: abs,
	}
}

// findProjectRoot walks upward from dir to the nearest directory
// containing .git.
func findProjectRoot(dir string) string {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

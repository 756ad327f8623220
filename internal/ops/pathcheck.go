package ops

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/worklens/worklens/internal/config"
	"github.com/worklens/worklens/internal/errors"
)

// PathCheckMode indicates whether the path check is for reading or writing.
type PathCheckMode int

const (
	PathCheckRead  PathCheckMode = iota // import
	PathCheckWrite                      // export
)

// ValidatePath validates an import/export path. Files must be .json,
// contain no traversal, not be symlinks, and sit directly inside
// <baseDir>/exports or one of cfg.AllowedPaths. AllowUnsafePaths lifts
// the directory restriction but never the symlink restriction.
func ValidatePath(path string, mode PathCheckMode, cfg *config.Config, baseDir string) error {
	if path == "" {
		return errors.NewInvalidRequest("path is required")
	}

	if containsTraversal(path) {
		return errors.NewInvalidRequest("path must not contain directory traversal (..)")
	}

	cleaned := filepath.Clean(path)
	if filepath.Ext(cleaned) != ".json" {
		return errors.NewInvalidRequest("path must have .json extension")
	}

	absPath, err := filepath.Abs(cleaned)
	if err != nil {
		return errors.NewInvalidRequest(fmt.Sprintf("invalid path: %v", err))
	}

	if cfg == nil || !cfg.AllowUnsafePaths {
		allowed := allowedDirs(cfg, baseDir)
		if !isDirectlyInAllowedDir(filepath.Dir(absPath), allowed) {
			return errors.NewInvalidRequest(
				fmt.Sprintf("file must be directly in an allowed directory (no subdirectories); allowed: %v",
					allowed))
		}

		if info, err := os.Lstat(filepath.Dir(absPath)); err == nil {
			if info.Mode()&os.ModeSymlink != 0 {
				return errors.NewInvalidRequest("parent directory must not be a symlink")
			}
		}
	}

	if mode == PathCheckRead {
		if _, err := os.Stat(absPath); os.IsNotExist(err) {
			return errors.NewInvalidRequest("file not found: " + path)
		}
	}

	if info, err := os.Lstat(absPath); err == nil {
		if info.Mode()&os.ModeSymlink != 0 {
			return errors.NewInvalidRequest("path must not be a symlink")
		}
	}

	return nil
}

// ExportsDir returns the default export directory under baseDir.
func ExportsDir(baseDir string) string {
	return filepath.Join(baseDir, "exports")
}

// allowedDirs returns the allowed directories: the default exports dir
// plus any absolute configured paths.
func allowedDirs(cfg *config.Config, baseDir string) []string {
	dirs := []string{filepath.Clean(ExportsDir(baseDir))}
	if cfg != nil {
		for _, p := range cfg.AllowedPaths {
			if filepath.IsAbs(p) {
				dirs = append(dirs, filepath.Clean(p))
			}
		}
	}
	return dirs
}

// isDirectlyInAllowedDir checks for an exact parent match: files in
// subdirectories of an allowed directory do not qualify.
func isDirectlyInAllowedDir(parentDir string, dirs []string) bool {
	parentDir = filepath.Clean(parentDir)
	for _, dir := range dirs {
		if parentDir == dir {
			return true
		}
	}
	return false
}

// containsTraversal checks if path contains ".." as a component.
func containsTraversal(path string) bool {
	for _, part := range strings.Split(path, string(filepath.Separator)) {
		if part == ".." {
			return true
		}
	}
	if filepath.Separator != '/' {
		for _, part := range strings.Split(path, "/") {
			if part == ".." {
				return true
			}
		}
	}
	return false
}

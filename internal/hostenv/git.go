package hostenv

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/worklens/worklens/internal/session"
)

// ReadGit reads the branch and head commit of the repository enclosing
// dir. It is deliberately fail-soft: any problem (no repository, unusual
// HEAD, unreadable refs) yields nil, never an error; git metadata is an
// annotation, not a dependency of capture.
func ReadGit(dir string) *session.GitSnapshot {
	gitDir := findGitDir(dir)
	if gitDir == "" {
		return nil
	}

	head, err := os.ReadFile(filepath.Join(gitDir, "HEAD"))
	if err != nil {
		return nil
	}

	content := strings.TrimSpace(string(head))

	// Detached HEAD: the file holds the commit hash directly
	if !strings.HasPrefix(content, "ref: ") {
		if content == "" {
			return nil
		}
		return &session.GitSnapshot{Head: content}
	}

	ref := strings.TrimPrefix(content, "ref: ")
	branch := strings.TrimPrefix(ref, "refs/heads/")

	snap := &session.GitSnapshot{Branch: branch}
	snap.Head = resolveRef(gitDir, ref)
	return snap
}

// findGitDir walks upward from dir looking for a .git directory. A .git
// file (worktree/submodule indirection) is followed one level.
func findGitDir(dir string) string {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return ""
	}

	for {
		candidate := filepath.Join(dir, ".git")
		info, err := os.Stat(candidate)
		if err == nil {
			if info.IsDir() {
				return candidate
			}
			return followGitFile(candidate, dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// followGitFile resolves a "gitdir: <path>" indirection file.
func followGitFile(path, base string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	content := strings.TrimSpace(string(data))
	if !strings.HasPrefix(content, "gitdir: ") {
		return ""
	}
	target := strings.TrimPrefix(content, "gitdir: ")
	if !filepath.IsAbs(target) {
		target = filepath.Join(base, target)
	}
	return target
}

// resolveRef resolves a symbolic ref to a commit hash via the loose ref
// file, falling back to packed-refs. Returns "" when it cannot.
func resolveRef(gitDir, ref string) string {
	if data, err := os.ReadFile(filepath.Join(gitDir, filepath.FromSlash(ref))); err == nil {
		return strings.TrimSpace(string(data))
	}

	packed, err := os.ReadFile(filepath.Join(gitDir, "packed-refs"))
	if err != nil {
		return ""
	}

	for _, line := range strings.Split(string(packed), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "^") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) == 2 && fields[1] == ref {
			return fields[0]
		}
	}

	return ""
}

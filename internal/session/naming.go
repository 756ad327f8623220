package session

import (
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// branchSlugRegex extracts the slug from conventional branch names like
// feature/add-login or fix/null_deref.
var branchSlugRegex = regexp.MustCompile(`(?i)(?:feature|fix|bugfix|hotfix|feat)/([\w-]+)`)

// trunkBranches are branch names too generic to name a session after.
var trunkBranches = map[string]bool{
	"main":    true,
	"master":  true,
	"develop": true,
}

// GenerateName picks a session title from the captured context.
// Priority: git branch, then the first interesting open file, then a
// time-of-day fallback. Always returns a non-empty string.
func GenerateName(git *GitSnapshot, editors []Editor, now time.Time) string {
	if name := gitBasedName(git); name != "" {
		return name
	}
	if name := fileBasedName(editors); name != "" {
		return name
	}
	return timeBasedName(now)
}

// gitBasedName derives a title from the branch name, or "" when the branch
// is absent or too generic.
func gitBasedName(git *GitSnapshot) string {
	if git == nil || git.Branch == "" {
		return ""
	}

	if m := branchSlugRegex.FindStringSubmatch(git.Branch); m != nil {
		return humanize(m[1])
	}

	if !trunkBranches[git.Branch] {
		return humanize(git.Branch)
	}

	return ""
}

// fileBasedName derives a title from the first open file that is not a
// test, config, manifest, or markdown file; falls back to the first editor
// when everything is filtered out.
func fileBasedName(editors []Editor) string {
	if len(editors) == 0 {
		return ""
	}

	chosen := editors[0]
	for _, e := range editors {
		p := strings.ToLower(e.Path)
		if strings.Contains(p, "test") ||
			strings.Contains(p, "config") ||
			strings.Contains(p, "package.json") ||
			strings.Contains(p, ".md") {
			continue
		}
		chosen = e
		break
	}

	base := filepath.Base(chosen.Path)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return "Working on " + capitalize(name)
}

// timeBasedName names the session after the local time of day.
func timeBasedName(now time.Time) string {
	hour := now.Hour()

	timeOfDay := "Morning"
	if hour >= 12 && hour < 17 {
		timeOfDay = "Afternoon"
	} else if hour >= 17 {
		timeOfDay = "Evening"
	}

	return timeOfDay + " session"
}

// humanize turns a branch slug into a readable title: separators become
// spaces and each word is capitalized.
func humanize(slug string) string {
	slug = strings.NewReplacer("-", " ", "_", " ").Replace(slug)
	words := strings.Fields(slug)
	for i, w := range words {
		words[i] = capitalize(w)
	}
	return strings.Join(words, " ")
}

// capitalize uppercases the first letter only, leaving the rest untouched.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

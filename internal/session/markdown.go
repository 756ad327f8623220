package session

import (
	"fmt"
	"strings"
	"time"
)

// Markdown renders the session as a standalone markdown document, suitable
// for sharing or for the web dashboard's detail view.
func (s *Session) Markdown() string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", s.Title)

	captured := s.Timestamp
	if t := s.CapturedAt(); !t.IsZero() {
		captured = t.Format(time.RFC1123)
	}
	fmt.Fprintf(&b, "**Captured:** %s  \n", captured)
	fmt.Fprintf(&b, "**Branch:** %s  \n", orNA(gitBranch(s.Git)))
	fmt.Fprintf(&b, "**Commit:** %s\n\n", orNA(gitHead(s.Git)))

	fmt.Fprintf(&b, "## Open Files (%d)\n\n", len(s.Editors))
	for i, e := range s.Editors {
		fmt.Fprintf(&b, "%d. `%s`", i+1, e.Path)
		if e.Cursor != nil {
			fmt.Fprintf(&b, " (Line %d)", e.Cursor.Line+1)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "\n## Terminals (%d)\n\n", len(s.Terminals))
	for i, t := range s.Terminals {
		fmt.Fprintf(&b, "%d. **%s**", i+1, t.Name)
		if t.LastCommand != "" {
			fmt.Fprintf(&b, " - Last command: `%s`", t.LastCommand)
		}
		b.WriteString("\n")
	}

	if s.Notes != "" {
		fmt.Fprintf(&b, "\n## Notes\n\n%s\n", s.Notes)
	}

	if len(s.Tags) > 0 {
		fmt.Fprintf(&b, "\n**Tags:** %s\n", strings.Join(s.Tags, ", "))
	}

	return b.String()
}

func gitBranch(g *GitSnapshot) string {
	if g == nil {
		return ""
	}
	return g.Branch
}

func gitHead(g *GitSnapshot) string {
	if g == nil {
		return ""
	}
	return g.Head
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

package session

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// Session is the canonical snapshot of a working arrangement: the open
// editors with their cursors, the open terminals, and the git/workspace
// context they were captured in.
type Session struct {
	// ID is a ULID assigned at creation time, never reused
	ID string `json:"id"`

	// Title is a human-readable label; never empty (falls back to a
	// generated name when the user supplies none)
	Title string `json:"title"`

	// Timestamp is the creation instant in RFC 3339, immutable
	Timestamp string `json:"timestamp"`

	// Editors is the ordered list of captured editors (capture order)
	Editors []Editor `json:"editors"`

	// Terminals is the ordered list of captured terminals
	Terminals []Terminal `json:"terminals"`

	// Git is the branch/commit pair at capture time (nil when no
	// repository was available)
	Git *GitSnapshot `json:"git,omitempty"`

	// Workspace identifies the project the session belongs to (nil for
	// sessions captured outside any project)
	Workspace *WorkspaceInfo `json:"workspace,omitempty"`

	// Notes is an optional free-text annotation, attachable after capture
	Notes string `json:"notes,omitempty"`

	// Tags is an optional list of labels (insertion order preserved)
	Tags []string `json:"tags,omitempty"`
}

// Editor records one visible editor: the file and, when known, the active
// cursor position.
type Editor struct {
	Path   string  `json:"path"`
	Cursor *Cursor `json:"cursor,omitempty"`
}

// Cursor is a zero-based line/column position.
type Cursor struct {
	Line int `json:"line"`
	Col  int `json:"col"`
}

// Terminal records one open terminal by display name. LastCommand is
// informational only and is never executed on restore.
type Terminal struct {
	Name        string `json:"name"`
	LastCommand string `json:"last_command,omitempty"`
}

// GitSnapshot is a best-effort branch/commit pair.
type GitSnapshot struct {
	Branch string `json:"branch,omitempty"`
	Head   string `json:"head,omitempty"`
}

// NewID generates a new ULID.
func NewID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Stamp assigns a fresh id and timestamp to the session.
// Returns the generated id.
func (s *Session) Stamp(now time.Time) (string, error) {
	id, err := NewID()
	if err != nil {
		return "", err
	}
	s.ID = id
	s.Timestamp = now.UTC().Format(time.RFC3339Nano)
	return id, nil
}

// CapturedAt parses the session timestamp. Returns the zero time if the
// stored value is malformed.
func (s *Session) CapturedAt() time.Time {
	t, err := time.Parse(time.RFC3339Nano, s.Timestamp)
	if err != nil {
		return time.Time{}
	}
	return t
}

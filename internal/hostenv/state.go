// Package hostenv reads the live environment: the host state file the
// editor plugin maintains, the git HEAD of the enclosing repository, and
// the workspace identity. Everything here is a read; capture never mutates
// host state.
package hostenv

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/worklens/worklens/internal/config"
	"github.com/worklens/worklens/internal/errors"
	"github.com/worklens/worklens/internal/session"
)

// StateEnvVar overrides the host state file location.
const StateEnvVar = "WORKLENS_STATE"

// HostState is the JSON document the editor plugin writes with the
// currently visible editors and open terminals.
type HostState struct {
	Editors   []session.Editor   `json:"editors"`
	Terminals []session.Terminal `json:"terminals"`
}

// StatePath resolves the host state file location: the WORKLENS_STATE
// environment variable wins, then config, then baseDir/state.json.
func StatePath(cfg *config.Config, baseDir string) string {
	if p := os.Getenv(StateEnvVar); p != "" {
		return p
	}
	if cfg != nil && cfg.StatePath != "" {
		return cfg.StatePath
	}
	return filepath.Join(baseDir, "state.json")
}

// ReadState loads the host state file. A missing file means nothing is
// open: an empty state, not an error. A malformed file is an error the
// caller should surface.
func ReadState(path string) (*HostState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &HostState{Editors: []session.Editor{}, Terminals: []session.Terminal{}}, nil
		}
		return nil, errors.NewInternal(err)
	}

	state := &HostState{}
	if err := json.Unmarshal(data, state); err != nil {
		return nil, errors.NewInvalidRequest("malformed host state file: " + err.Error())
	}

	if state.Editors == nil {
		state.Editors = []session.Editor{}
	}
	if state.Terminals == nil {
		state.Terminals = []session.Terminal{}
	}

	// Live capture never knows the last command; templates are the only
	// place that metadata comes from.
	for i := range state.Terminals {
		state.Terminals[i].LastCommand = ""
	}

	return state, nil
}

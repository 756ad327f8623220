package restore

import (
	"bufio"
	"os"
)

// OpenedFile is one entry in an FSHost restore plan.
type OpenedFile struct {
	Path string `json:"path"`
	Line int    `json:"line"`
	Col  int    `json:"col"`
}

// FSHost is the filesystem-backed host used by the CLI and MCP surfaces.
// It verifies each file is openable, measures it for cursor clamping, and
// accumulates a plan of opened files and created terminals for the editor
// plugin to enact. It never executes anything.
type FSHost struct {
	Opened    []OpenedFile `json:"opened"`
	Terminals []string     `json:"terminals"`
}

// OpenEditor opens the file to prove it is readable and returns its line
// count. The plan entry starts at line 0 until MoveCursor places it.
func (h *FSHost) OpenEditor(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	lines := 0
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines++
	}
	if err := scanner.Err(); err != nil {
		return 0, err
	}

	h.Opened = append(h.Opened, OpenedFile{Path: path})
	return lines, nil
}

// MoveCursor records the clamped cursor position for the most recently
// opened file.
func (h *FSHost) MoveCursor(path string, line, col int) error {
	for i := len(h.Opened) - 1; i >= 0; i-- {
		if h.Opened[i].Path == path {
			h.Opened[i].Line = line
			h.Opened[i].Col = col
			return nil
		}
	}
	return nil
}

// CreateTerminal records a terminal to re-create by name.
func (h *FSHost) CreateTerminal(name string) error {
	h.Terminals = append(h.Terminals, name)
	return nil
}

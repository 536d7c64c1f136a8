// Package viewstate holds the tree editor's expand/collapse and selection
// state and persists it to a small JSON file.
//
// File format:
//
//	{
//	  "version": 1,
//	  "expanded": {"<node id>": true, "<node id>": false},
//	  "selected": {"<project id>": "<node id>"}
//	}
//
// Only deviations from the default are stored: nodes shallower than
// DefaultDepth start expanded, deeper ones collapsed. A missing or corrupt
// file means defaults.
package viewstate

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/alexanderramin/casetree/internal/tree"
	"github.com/goccy/go-json"
)

const Version = 1

// DefaultDepth is the depth below which nodes start expanded.
const DefaultDepth = 2

type State struct {
	Version  int               `json:"version"`
	Expanded map[string]bool   `json:"expanded"`
	Selected map[string]string `json:"selected,omitempty"`
}

func Default() *State {
	return &State{
		Version:  Version,
		Expanded: make(map[string]bool),
		Selected: make(map[string]string),
	}
}

func defaultExpanded(depth int) bool { return depth < DefaultDepth }

// IsExpanded reports whether the node at depth is shown open.
func (s *State) IsExpanded(id string, depth int) bool {
	if v, ok := s.Expanded[id]; ok {
		return v
	}
	return defaultExpanded(depth)
}

// SetExpanded records v for id, forgetting it when it matches the default.
func (s *State) SetExpanded(id string, depth int, v bool) {
	if v == defaultExpanded(depth) {
		delete(s.Expanded, id)
		return
	}
	s.Expanded[id] = v
}

// Toggle flips id and returns the new value.
func (s *State) Toggle(id string, depth int) bool {
	v := !s.IsExpanded(id, depth)
	s.SetExpanded(id, depth, v)
	return v
}

func (s *State) Select(projectID, nodeID string) {
	if nodeID == "" {
		delete(s.Selected, projectID)
		return
	}
	s.Selected[projectID] = nodeID
}

func (s *State) SelectedIn(projectID string) string { return s.Selected[projectID] }

// Prune forgets expansion entries for nodes no longer in f. It returns how
// many were dropped.
func (s *State) Prune(f *tree.Forest) int {
	n := 0
	for id := range s.Expanded {
		if f.Find(id) == nil {
			delete(s.Expanded, id)
			n++
		}
	}
	return n
}

// Load reads the state at path. It always returns a usable State; the error
// reports a file that exists but could not be used.
func Load(path string) (*State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return Default(), fmt.Errorf("reading view state: %w", err)
	}

	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return Default(), fmt.Errorf("invalid view state %s, using defaults: %w", path, err)
	}
	if s.Version != Version {
		return Default(), fmt.Errorf("view state %s has version %d, want %d", path, s.Version, Version)
	}
	if s.Expanded == nil {
		s.Expanded = make(map[string]bool)
	}
	if s.Selected == nil {
		s.Selected = make(map[string]string)
	}
	return &s, nil
}

// Save writes the state atomically, creating the directory if needed.
func (s *State) Save(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding view state: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing view state: %w", err)
	}
	return os.Rename(tmp, path)
}

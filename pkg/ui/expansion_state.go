package ui

import (
	"os"
	"path/filepath"
	"slices"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// ExpansionState is the persisted set of expanded sections. It is saved to
// .sectionview/state.json so a restart reopens what was open.
//
// File format (JSON):
//
//	{
//	  "version": 1,
//	  "expanded": ["inbox", "archive"]
//	}
//
// Sections are keyed by catalog ID, not index, so reordering the catalog keeps
// them open. Unknown IDs are ignored on restore. A corrupted or missing file
// means nothing is expanded.
type ExpansionState struct {
	Version  int      `json:"version"`
	Expanded []string `json:"expanded"`
}

// ExpansionStateVersion is the current schema version.
const ExpansionStateVersion = 1

// NewExpansionState returns an empty state.
func NewExpansionState() *ExpansionState {
	return &ExpansionState{Version: ExpansionStateVersion, Expanded: []string{}}
}

// LoadExpansionState reads the state at path. Problems are logged and an
// empty state is returned.
func LoadExpansionState(path string, log *zap.Logger) *ExpansionState {
	if log == nil {
		log = zap.NewNop()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn("cannot read expansion state", zap.String("path", path), zap.Error(err))
		}
		return NewExpansionState()
	}

	var state ExpansionState
	if err := json.Unmarshal(data, &state); err != nil {
		log.Warn("invalid expansion state file, starting collapsed", zap.String("path", path), zap.Error(err))
		return NewExpansionState()
	}
	if state.Version != ExpansionStateVersion {
		log.Warn("unsupported expansion state version", zap.Int("version", state.Version))
		return NewExpansionState()
	}
	if state.Expanded == nil {
		state.Expanded = []string{}
	}
	return &state
}

// Save writes the state to path, creating the directory if needed. The file
// is replaced atomically.
func (s *ExpansionState) Save(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// IsExpanded reports whether a section ID is recorded as expanded.
func (s *ExpansionState) IsExpanded(id string) bool {
	return slices.Contains(s.Expanded, id)
}

// SetExpanded records or forgets a section. It reports whether anything
// changed.
func (s *ExpansionState) SetExpanded(id string, expanded bool) bool {
	i := slices.Index(s.Expanded, id)
	switch {
	case expanded && i < 0:
		s.Expanded = append(s.Expanded, id)
		slices.Sort(s.Expanded)
		return true
	case !expanded && i >= 0:
		s.Expanded = slices.Delete(s.Expanded, i, i+1)
		return true
	}
	return false
}

// Clear forgets every section.
func (s *ExpansionState) Clear() bool {
	if len(s.Expanded) == 0 {
		return false
	}
	s.Expanded = s.Expanded[:0]
	return true
}

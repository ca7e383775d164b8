package model

import (
	"fmt"
	"time"
)

// Catalog is the document shown by sv: an ordered list of sections.
type Catalog struct {
	Title    string    `json:"title" yaml:"title"`
	Sections []Section `json:"sections" yaml:"sections"`
}

// Validate checks every section and that section IDs are unique
func (c *Catalog) Validate() error {
	seen := make(map[string]int, len(c.Sections))
	for i := range c.Sections {
		s := &c.Sections[i]
		if err := s.Validate(); err != nil {
			return fmt.Errorf("section %d: %w", i, err)
		}
		if prev, dup := seen[s.ID]; dup {
			return fmt.Errorf("section %d: duplicate section ID %q (first used by section %d)", i, s.ID, prev)
		}
		seen[s.ID] = i
	}
	return nil
}

// SectionIndex returns the position of the section with the given ID, or -1.
func (c *Catalog) SectionIndex(id string) int {
	for i := range c.Sections {
		if c.Sections[i].ID == id {
			return i
		}
	}
	return -1
}

// Clone creates a deep copy of the catalog
func (c Catalog) Clone() Catalog {
	clone := c
	if c.Sections != nil {
		clone.Sections = make([]Section, len(c.Sections))
		for i, s := range c.Sections {
			clone.Sections[i] = s.Clone()
		}
	}
	return clone
}

// Section groups rows under a title
type Section struct {
	ID      string      `json:"id" yaml:"id"`
	Title   string      `json:"title" yaml:"title"`
	Kind    SectionKind `json:"kind" yaml:"kind"`
	Summary string      `json:"summary,omitempty" yaml:"summary,omitempty"`
	Rows    []Row       `json:"rows,omitempty" yaml:"rows,omitempty"`
}

// Clone creates a deep copy of the section
func (s Section) Clone() Section {
	clone := s
	if s.Rows != nil {
		clone.Rows = make([]Row, len(s.Rows))
		for i, r := range s.Rows {
			clone.Rows[i] = r.Clone()
		}
	}
	return clone
}

// Validate checks if the section data is logically valid
func (s *Section) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("section ID cannot be empty")
	}
	if s.Title == "" {
		return fmt.Errorf("section title cannot be empty")
	}
	if !s.Kind.IsValid() {
		return fmt.Errorf("invalid section kind: %s", s.Kind)
	}
	if s.Kind == KindRemote && len(s.Rows) > 0 {
		return fmt.Errorf("remote section %q cannot declare inline rows", s.ID)
	}
	for i := range s.Rows {
		if err := s.Rows[i].Validate(); err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
	}
	return nil
}

// SectionKind decides how a section behaves in the list
type SectionKind string

const (
	KindStatic     SectionKind = "static"     // Rows always shown, no header row
	KindExpandable SectionKind = "expandable" // Inline rows behind a header
	KindRemote     SectionKind = "remote"     // Rows fetched from the row store on first expand
)

// IsValid returns true if the kind is a recognized value.
// An empty kind is treated as static.
func (k SectionKind) IsValid() bool {
	switch k {
	case "", KindStatic, KindExpandable, KindRemote:
		return true
	}
	return false
}

// IsExpandable returns true if the section gets a header row
func (k SectionKind) IsExpandable() bool {
	return k == KindExpandable || k == KindRemote
}

// NeedsDownload returns true if the rows live in the row store
func (k SectionKind) NeedsDownload() bool {
	return k == KindRemote
}

// Row is one line of content. Body is markdown shown in the detail pane.
type Row struct {
	ID        string    `json:"id" yaml:"id"`
	Title     string    `json:"title" yaml:"title"`
	Body      string    `json:"body,omitempty" yaml:"body,omitempty"`
	Tags      []string  `json:"tags,omitempty" yaml:"tags,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitzero" yaml:"updated_at,omitempty"`
}

// Clone creates a deep copy of the row
func (r Row) Clone() Row {
	clone := r
	if r.Tags != nil {
		clone.Tags = make([]string, len(r.Tags))
		copy(clone.Tags, r.Tags)
	}
	return clone
}

// Validate checks if the row data is logically valid
func (r *Row) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("row ID cannot be empty")
	}
	if r.Title == "" {
		return fmt.Errorf("row title cannot be empty")
	}
	return nil
}

package expansion

import "fmt"

// Tri is a cached yes/no answer that may not have been asked yet.
type Tri int

const (
	Unknown Tri = iota
	Yes
	No
)

func (t Tri) String() string {
	switch t {
	case Yes:
		return "yes"
	case No:
		return "no"
	default:
		return "unknown"
	}
}

// TriOf converts a provider answer to a cached value.
func TriOf(b bool) Tri {
	if b {
		return Yes
	}
	return No
}

// SectionFacts are the four independent facts kept for one section.
type SectionFacts struct {
	Expandable  Tri
	Expanded    bool
	Downloading bool
	Animating   bool
}

// State derives the controller state from the facts.
func (f SectionFacts) State() SectionState {
	switch {
	case f.Animating && f.Expanded:
		return StateExpanding
	case f.Animating:
		return StateCollapsing
	case f.Downloading:
		return StateDownloading
	case f.Expanded:
		return StateExpanded
	default:
		return StateCollapsed
	}
}

// check returns a description of the first violated invariant, or "".
func (f SectionFacts) check() string {
	switch {
	case f.Expanded && f.Expandable != Yes:
		return "expanded section is not expandable"
	case f.Downloading && f.Expanded:
		return "section is downloading and expanded"
	case f.Downloading && f.Animating:
		return "section is downloading and animating"
	case f.Downloading && f.Expandable != Yes:
		return "downloading section is not expandable"
	}
	return ""
}

// SectionState is the expansion state of one section.
type SectionState int

const (
	StateCollapsed SectionState = iota
	StateDownloading
	StateExpanding
	StateExpanded
	StateCollapsing
)

func (s SectionState) String() string {
	switch s {
	case StateCollapsed:
		return "collapsed"
	case StateDownloading:
		return "downloading"
	case StateExpanding:
		return "expanding"
	case StateExpanded:
		return "expanded"
	case StateCollapsing:
		return "collapsing"
	default:
		return fmt.Sprintf("SectionState(%d)", int(s))
	}
}

// Steady reports whether no transition is in flight.
func (s SectionState) Steady() bool {
	return s == StateCollapsed || s == StateExpanded
}

// SectionStateStore holds SectionFacts per section index. Sections that were
// never recorded read as the zero value: unknown, collapsed, idle.
type SectionStateStore struct {
	facts map[int]SectionFacts
}

// NewSectionStateStore returns an empty store.
func NewSectionStateStore() *SectionStateStore {
	return &SectionStateStore{facts: make(map[int]SectionFacts)}
}

// Get returns the facts for a section.
func (s *SectionStateStore) Get(section int) SectionFacts {
	return s.facts[section]
}

// Set records the facts for a section. Invariant violations panic: they can
// only come from a bug in the controller.
func (s *SectionStateStore) Set(section int, f SectionFacts) {
	if section < 0 {
		panic(fmt.Sprintf("expansion: negative section %d", section))
	}
	if msg := f.check(); msg != "" {
		panic(fmt.Sprintf("expansion: section %d: %s (%+v)", section, msg, f))
	}
	if f == (SectionFacts{}) {
		delete(s.facts, section)
		return
	}
	s.facts[section] = f
}

// Update applies fn to a section's facts and stores the result.
func (s *SectionStateStore) Update(section int, fn func(*SectionFacts)) SectionFacts {
	f := s.Get(section)
	fn(&f)
	s.Set(section, f)
	return f
}

// ClearAll forgets every section, including in-flight animation bookkeeping.
func (s *SectionStateStore) ClearAll() {
	clear(s.facts)
}

// Prune drops sections at or beyond sectionCount.
func (s *SectionStateStore) Prune(sectionCount int) {
	for section := range s.facts {
		if section >= sectionCount {
			delete(s.facts, section)
		}
	}
}

// Sections returns the recorded section indexes in no particular order.
func (s *SectionStateStore) Sections() []int {
	out := make([]int, 0, len(s.facts))
	for section := range s.facts {
		out = append(out, section)
	}
	return out
}

// Len returns the number of recorded sections.
func (s *SectionStateStore) Len() int {
	return len(s.facts)
}

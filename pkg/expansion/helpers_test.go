package expansion

import "fmt"

// fakeSection describes one section served by fakeProvider.
type fakeSection struct {
	expandable    bool
	needsDownload bool
	rows          int
}

type fakeProvider struct {
	BaseDataProvider
	sections []fakeSection
	headers  map[int]*fakeHeader

	canExpandCalls     map[int]int
	needsDownloadCalls map[int]int
}

func newFakeProvider(sections ...fakeSection) *fakeProvider {
	return &fakeProvider{
		sections:           sections,
		headers:            make(map[int]*fakeHeader),
		canExpandCalls:     make(map[int]int),
		needsDownloadCalls: make(map[int]int),
	}
}

func (p *fakeProvider) SectionCount() int        { return len(p.sections) }
func (p *fakeProvider) RowCount(section int) int { return p.sections[section].rows }

func (p *fakeProvider) CellFor(path IndexPath) Cell {
	return fmt.Sprintf("cell %d/%d", path.Section, path.Row)
}

func (p *fakeProvider) CanExpand(section int) bool {
	p.canExpandCalls[section]++
	return p.sections[section].expandable
}

func (p *fakeProvider) NeedsDownload(section int) bool {
	p.needsDownloadCalls[section]++
	return p.sections[section].needsDownload
}

func (p *fakeProvider) HeaderCellFor(section int) HeaderCell {
	h, ok := p.headers[section]
	if !ok {
		h = &fakeHeader{}
		p.headers[section] = h
	}
	return h
}

type fakeHeader struct {
	loading bool
	style   ExpansionStyle
	styled  []ExpansionStyle
}

func (h *fakeHeader) Loading() bool                  { return h.loading }
func (h *fakeHeader) SetLoading(loading bool)        { h.loading = loading }
func (h *fakeHeader) ExpansionStyle() ExpansionStyle { return h.style }

func (h *fakeHeader) SetExpansionStyle(style ExpansionStyle, animated bool) {
	h.style = style
	h.styled = append(h.styled, style)
}

// recordingSink records every event as a string.
type recordingSink struct {
	BaseEventSink
	events     []string
	onDownload func(section int)
}

func (s *recordingSink) record(format string, args ...any) {
	s.events = append(s.events, fmt.Sprintf(format, args...))
}

func (s *recordingSink) DownloadRequested(section int) {
	s.record("downloadRequested(%d)", section)
	if s.onDownload != nil {
		s.onDownload(section)
	}
}

func (s *recordingSink) DownloadCancelled(section int) { s.record("downloadCancelled(%d)", section) }
func (s *recordingSink) WillExpand(section int, animated bool) {
	s.record("willExpand(%d,%t)", section, animated)
}
func (s *recordingSink) DidExpand(section int, animated bool) {
	s.record("didExpand(%d,%t)", section, animated)
}
func (s *recordingSink) WillCollapse(section int, animated bool) {
	s.record("willCollapse(%d,%t)", section, animated)
}
func (s *recordingSink) DidCollapse(section int, animated bool) {
	s.record("didCollapse(%d,%t)", section, animated)
}
func (s *recordingSink) WillDisplayDuringAnimation(cell Cell, path IndexPath) {
	s.record("willDisplayDuringAnimation(%d,%d)", path.Section, path.Row)
}
func (s *recordingSink) WillDisplayCell(cell Cell, path IndexPath) {
	s.record("willDisplayCell(%d,%d)", path.Section, path.Row)
}
func (s *recordingSink) DidSelectRow(path IndexPath) {
	s.record("didSelectRow(%d,%d)", path.Section, path.Row)
}

func (s *recordingSink) reset() { s.events = nil }

// fakeHost records batches. With deferred set, completions are held until
// finish is called, which simulates a running animation.
type fakeHost struct {
	batches  []Batch
	reloads  int
	deferred bool
	pending  []func()
	visible  map[IndexPath]Cell
	chrome   []bool
	events   *[]string
}

func newFakeHost() *fakeHost {
	return &fakeHost{visible: make(map[IndexPath]Cell)}
}

func (h *fakeHost) ReloadData() { h.reloads++ }

func (h *fakeHost) PerformBatch(b Batch, done func()) {
	h.batches = append(h.batches, b)
	if h.events != nil {
		*h.events = append(*h.events, fmt.Sprintf("batch(%s,%d,%d,%t)", b.Kind, b.Section, len(b.Rows), b.Animated()))
	}
	if h.deferred {
		h.pending = append(h.pending, done)
		return
	}
	done()
}

func (h *fakeHost) VisibleCell(path IndexPath) (Cell, bool) {
	c, ok := h.visible[path]
	return c, ok
}

func (h *fakeHost) SetChromeVisible(visible bool) { h.chrome = append(h.chrome, visible) }

// finish runs every held completion.
func (h *fakeHost) finish() {
	pending := h.pending
	h.pending = nil
	for _, done := range pending {
		done()
	}
}

type fixture struct {
	provider *fakeProvider
	sink     *recordingSink
	host     *fakeHost
	c        *Controller
}

func newFixture(cfg Config, sections ...fakeSection) *fixture {
	f := &fixture{
		provider: newFakeProvider(sections...),
		sink:     &recordingSink{},
		host:     newFakeHost(),
	}
	f.host.events = &f.sink.events
	f.c = NewController(f.provider, f.sink, f.host, WithConfig(cfg))
	f.c.Reload(false)
	f.sink.reset()
	return f
}

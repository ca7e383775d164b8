package ui

import (
	"go.uber.org/zap"

	"github.com/vanderheijden86/sectionview/pkg/expansion"
	"github.com/vanderheijden86/sectionview/pkg/model"
)

// Downloader starts and cancels section fetches. *DownloadWorker satisfies it.
type Downloader interface {
	Start(section int, sectionID string) string
	Cancel(sectionID string) bool
	CancelAll()
}

// CatalogSource serves a catalog to the expansion controller. It is both the
// controller's DataProvider and its EventSink.
//
// Static sections are plain lists. Expandable sections carry their rows
// inline; remote sections get theirs from the Downloader the first time they
// are expanded and keep them until the catalog changes or the cache is reset.
type CatalogSource struct {
	catalog *model.Catalog

	headers    map[string]*HeaderCell
	cells      map[string][]*RowCell
	downloaded map[string][]model.Row
	tickets    map[string]string

	downloader Downloader
	state      *ExpansionState
	statePath  string
	log        *zap.Logger

	selected *model.Row
}

// NewCatalogSource creates a source serving a copy of cat. state may be nil; statePath ""
// disables persistence.
func NewCatalogSource(cat *model.Catalog, downloader Downloader, state *ExpansionState, statePath string, log *zap.Logger) *CatalogSource {
	own := model.Catalog{}
	if cat != nil {
		own = cat.Clone()
	}
	if state == nil {
		state = NewExpansionState()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &CatalogSource{
		catalog:    &own,
		headers:    make(map[string]*HeaderCell),
		cells:      make(map[string][]*RowCell),
		downloaded: make(map[string][]model.Row),
		tickets:    make(map[string]string),
		downloader: downloader,
		state:      state,
		statePath:  statePath,
		log:        log,
	}
}

// Catalog returns the catalog being served.
func (s *CatalogSource) Catalog() *model.Catalog { return s.catalog }

// State returns the persisted expansion state.
func (s *CatalogSource) State() *ExpansionState { return s.state }

// Selected returns the last selected row, if any.
func (s *CatalogSource) Selected() (model.Row, bool) {
	if s.selected == nil {
		return model.Row{}, false
	}
	return *s.selected, true
}

// SetCatalog swaps in a copy of a new catalog. Pending downloads are cancelled and
// cached content of sections that disappeared or stopped being remote is
// dropped. The controller must be reloaded with a reset afterwards.
func (s *CatalogSource) SetCatalog(cat *model.Catalog) {
	s.CancelDownloads()
	keep := make(map[string]model.Section, len(cat.Sections))
	for _, sec := range cat.Sections {
		keep[sec.ID] = sec
	}
	for id := range s.headers {
		if _, ok := keep[id]; !ok {
			delete(s.headers, id)
		}
	}
	for id := range s.downloaded {
		if sec, ok := keep[id]; !ok || !sec.Kind.NeedsDownload() {
			delete(s.downloaded, id)
		}
	}
	clear(s.cells)
	for id, h := range s.headers {
		sec := keep[id]
		h.Title, h.Summary, h.Remote = sec.Title, sec.Summary, sec.Kind.NeedsDownload()
		h.Count = s.countFor(sec)
	}
	own := cat.Clone()
	s.catalog = &own
	s.selected = nil
}

// ResetCache forgets every downloaded section and cancels pending downloads.
func (s *CatalogSource) ResetCache() {
	s.CancelDownloads()
	clear(s.downloaded)
	clear(s.cells)
	for _, h := range s.headers {
		if h.Remote {
			h.Count = -1
		}
	}
}

// CancelDownloads drops every pending ticket. Used when the controller is
// reset, which forgets downloading sections without cancelling them.
func (s *CatalogSource) CancelDownloads() {
	clear(s.tickets)
	if s.downloader != nil {
		s.downloader.CancelAll()
	}
}

// PendingDownloads returns how many sections wait for their rows.
func (s *CatalogSource) PendingDownloads() int { return len(s.tickets) }

// HandleDownload accepts a finished fetch. It returns the section to report to
// the controller and whether the message is still current.
func (s *CatalogSource) HandleDownload(msg DownloadDoneMsg) (int, bool) {
	if ticket, ok := s.tickets[msg.SectionID]; !ok || ticket != msg.Ticket {
		s.log.Debug("dropping stale download", zap.String("section", msg.SectionID))
		return 0, false
	}
	delete(s.tickets, msg.SectionID)

	section := s.catalog.SectionIndex(msg.SectionID)
	if section < 0 {
		return 0, false
	}
	if msg.Err == nil {
		rows := msg.Rows
		if rows == nil {
			rows = []model.Row{}
		}
		s.downloaded[msg.SectionID] = rows
		delete(s.cells, msg.SectionID)
		if h, ok := s.headers[msg.SectionID]; ok {
			h.Count = len(rows)
		}
	}
	return section, true
}

// ExpandedSections returns the indexes of sections recorded as expanded in
// the persisted state, in catalog order.
func (s *CatalogSource) ExpandedSections() []int {
	var out []int
	for i, sec := range s.catalog.Sections {
		if sec.Kind.IsExpandable() && s.state.IsExpanded(sec.ID) {
			out = append(out, i)
		}
	}
	return out
}

func (s *CatalogSource) section(i int) (model.Section, bool) {
	if i < 0 || i >= len(s.catalog.Sections) {
		return model.Section{}, false
	}
	return s.catalog.Sections[i], true
}

func (s *CatalogSource) rows(i int) []model.Row {
	sec, ok := s.section(i)
	if !ok {
		return nil
	}
	if sec.Kind.NeedsDownload() {
		return s.downloaded[sec.ID]
	}
	return sec.Rows
}

func (s *CatalogSource) countFor(sec model.Section) int {
	if !sec.Kind.NeedsDownload() {
		return len(sec.Rows)
	}
	if rows, ok := s.downloaded[sec.ID]; ok {
		return len(rows)
	}
	return -1
}

// SectionCount implements expansion.DataProvider.
func (s *CatalogSource) SectionCount() int { return len(s.catalog.Sections) }

// RowCount implements expansion.DataProvider.
func (s *CatalogSource) RowCount(section int) int { return len(s.rows(section)) }

// CellFor implements expansion.DataProvider. Cells are cached so the list
// sees the same cell for the same row across redraws.
func (s *CatalogSource) CellFor(path expansion.IndexPath) expansion.Cell {
	sec, ok := s.section(path.Section)
	if !ok {
		return nil
	}
	rows := s.rows(path.Section)
	if path.Row < 0 || path.Row >= len(rows) {
		return nil
	}
	cells := s.cells[sec.ID]
	if len(cells) != len(rows) {
		cells = make([]*RowCell, len(rows))
		for i, row := range rows {
			cells[i] = &RowCell{Row: row, Indent: sec.Kind.IsExpandable()}
		}
		s.cells[sec.ID] = cells
	}
	return cells[path.Row]
}

// TitleForSection implements expansion.DataProvider. Expandable sections show
// their title in the header row instead.
func (s *CatalogSource) TitleForSection(section int) string {
	sec, ok := s.section(section)
	if !ok || sec.Kind.IsExpandable() {
		return ""
	}
	return sec.Title
}

// CanExpand implements expansion.DataProvider.
func (s *CatalogSource) CanExpand(section int) bool {
	sec, ok := s.section(section)
	return ok && sec.Kind.IsExpandable()
}

// NeedsDownload implements expansion.DataProvider.
func (s *CatalogSource) NeedsDownload(section int) bool {
	sec, ok := s.section(section)
	if !ok || !sec.Kind.NeedsDownload() {
		return false
	}
	_, cached := s.downloaded[sec.ID]
	return !cached
}

// HeaderCellFor implements expansion.DataProvider.
func (s *CatalogSource) HeaderCellFor(section int) expansion.HeaderCell {
	sec, ok := s.section(section)
	if !ok {
		return nil
	}
	h, ok := s.headers[sec.ID]
	if !ok {
		h = NewHeaderCell(sec)
		h.Count = s.countFor(sec)
		s.headers[sec.ID] = h
	}
	return h
}

// DownloadRequested implements expansion.EventSink.
func (s *CatalogSource) DownloadRequested(section int) {
	sec, ok := s.section(section)
	if !ok || s.downloader == nil {
		return
	}
	s.tickets[sec.ID] = s.downloader.Start(section, sec.ID)
	s.log.Debug("download started", zap.String("section", sec.ID))
}

// DownloadCancelled implements expansion.EventSink.
func (s *CatalogSource) DownloadCancelled(section int) {
	sec, ok := s.section(section)
	if !ok {
		return
	}
	delete(s.tickets, sec.ID)
	if s.downloader != nil {
		s.downloader.Cancel(sec.ID)
	}
}

// WillExpand implements expansion.EventSink.
func (s *CatalogSource) WillExpand(section int, animated bool) {
	s.log.Debug("will expand", zap.Int("section", section), zap.Bool("animated", animated))
}

// DidExpand implements expansion.EventSink.
func (s *CatalogSource) DidExpand(section int, _ bool) { s.record(section, true) }

// WillCollapse implements expansion.EventSink.
func (s *CatalogSource) WillCollapse(section int, animated bool) {
	s.log.Debug("will collapse", zap.Int("section", section), zap.Bool("animated", animated))
}

// DidCollapse implements expansion.EventSink.
func (s *CatalogSource) DidCollapse(section int, _ bool) { s.record(section, false) }

// WillDisplayDuringAnimation implements expansion.EventSink.
func (s *CatalogSource) WillDisplayDuringAnimation(cell expansion.Cell, _ expansion.IndexPath) {
	if rc, ok := cell.(*RowCell); ok {
		rc.SetDimmed(true)
	}
}

// WillDisplayCell implements expansion.EventSink.
func (s *CatalogSource) WillDisplayCell(cell expansion.Cell, _ expansion.IndexPath) {
	if rc, ok := cell.(*RowCell); ok {
		rc.SetDimmed(false)
	}
}

// DidSelectRow implements expansion.EventSink.
func (s *CatalogSource) DidSelectRow(path expansion.IndexPath) {
	rows := s.rows(path.Section)
	if path.Row < 0 || path.Row >= len(rows) {
		return
	}
	row := rows[path.Row]
	s.selected = &row
}

// RowAt returns the application row at a conceptual path.
func (s *CatalogSource) RowAt(path expansion.IndexPath) (model.Row, bool) {
	rows := s.rows(path.Section)
	if path.Row < 0 || path.Row >= len(rows) {
		return model.Row{}, false
	}
	return rows[path.Row], true
}

// record updates and saves the persisted state.
func (s *CatalogSource) record(section int, expanded bool) {
	sec, ok := s.section(section)
	if !ok || !s.state.SetExpanded(sec.ID, expanded) {
		return
	}
	s.SaveState()
}

// SaveState writes the expansion state if persistence is on.
func (s *CatalogSource) SaveState() {
	if s.statePath == "" {
		return
	}
	if err := s.state.Save(s.statePath); err != nil {
		s.log.Warn("failed to save expansion state", zap.String("path", s.statePath), zap.Error(err))
	}
}

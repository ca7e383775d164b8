// Package expansion adds per-section expand/collapse behavior to a sectioned
// list surface.
//
// The package sits between a host surface (which draws rows and owns
// scrolling) and an application DataProvider/EventSink pair. It keeps the
// per-section expansion facts, translates between application row indexes and
// the rows the host actually renders (every expandable section gets a
// synthetic header row at physical row 0), and drives the expand, collapse and
// download transitions, including the batched row mutations.
//
// Everything here runs on the host's event loop. Nothing is locked; work done
// on other goroutines must be marshalled back before calling into a
// Controller.
package expansion

// Cell is whatever the host surface renders for one row. The core never looks
// inside it apart from asserting HeaderCell on header rows.
type Cell = any

// IndexPath addresses a row inside a section.
type IndexPath struct {
	Section int
	Row     int
}

// ExpansionStyle is the visual state of a header cell.
type ExpansionStyle int

const (
	ExpansionStyleCollapsedRow ExpansionStyle = iota
	ExpansionStyleExpandedRow
	ExpansionStyleCollapsedHeader
	ExpansionStyleExpandedHeader
)

func (s ExpansionStyle) String() string {
	switch s {
	case ExpansionStyleCollapsedRow:
		return "collapsed_row"
	case ExpansionStyleExpandedRow:
		return "expanded_row"
	case ExpansionStyleCollapsedHeader:
		return "collapsed_header"
	case ExpansionStyleExpandedHeader:
		return "expanded_header"
	default:
		return "unknown"
	}
}

// IsExpanded reports whether the style shows an open section.
func (s ExpansionStyle) IsExpanded() bool {
	return s == ExpansionStyleExpandedRow || s == ExpansionStyleExpandedHeader
}

// HeaderCell is the capability set a section header cell must provide.
type HeaderCell interface {
	Loading() bool
	SetLoading(loading bool)
	ExpansionStyle() ExpansionStyle
	SetExpansionStyle(style ExpansionStyle, animated bool)
}

// DataProvider supplies content. Row indexes are application rows: the
// synthetic header row is never counted or requested through CellFor.
//
// The controller does not own the provider; the application keeps it alive
// for as long as the controller is in use.
type DataProvider interface {
	SectionCount() int
	RowCount(section int) int
	CellFor(path IndexPath) Cell
	TitleForSection(section int) string

	// CanExpand is asked once per section and data generation.
	CanExpand(section int) bool
	// NeedsDownload is asked on every expand attempt.
	NeedsDownload(section int) bool
	HeaderCellFor(section int) HeaderCell
}

// BaseDataProvider supplies defaults for the optional DataProvider methods.
// Embed it to only implement what matters.
type BaseDataProvider struct{}

func (BaseDataProvider) TitleForSection(int) string { return "" }

// EventSink receives lifecycle and interaction events.
//
// DownloadRequested is the only method without a default: the sink must
// eventually call Controller.DownloadCompleted or Controller.DownloadFailed
// for that section, unless the download is cancelled first.
type EventSink interface {
	DownloadRequested(section int)
	DownloadCancelled(section int)

	WillExpand(section int, animated bool)
	DidExpand(section int, animated bool)
	WillCollapse(section int, animated bool)
	DidCollapse(section int, animated bool)

	// WillDisplayDuringAnimation replaces WillDisplayCell for every row of a
	// section that is mid-animation. The path is physical.
	WillDisplayDuringAnimation(cell Cell, path IndexPath)
	// WillDisplayCell is never called for header rows. The path is conceptual.
	WillDisplayCell(cell Cell, path IndexPath)
	DidSelectRow(path IndexPath)
}

// BaseEventSink is a no-op implementation of every optional EventSink method.
type BaseEventSink struct{}

func (BaseEventSink) DownloadCancelled(int) {}
func (BaseEventSink) WillExpand(int, bool) {}
func (BaseEventSink) DidExpand(int, bool) {}
func (BaseEventSink) WillCollapse(int, bool) {}
func (BaseEventSink) DidCollapse(int, bool) {}
func (BaseEventSink) WillDisplayDuringAnimation(Cell, IndexPath) {}
func (BaseEventSink) WillDisplayCell(Cell, IndexPath) {}
func (BaseEventSink) DidSelectRow(IndexPath) {}

// RowAnimation selects how the host animates inserted or deleted rows.
type RowAnimation int

const (
	RowAnimationNone RowAnimation = iota
	RowAnimationFade
	RowAnimationTop
	RowAnimationBottom
	RowAnimationAutomatic
)

var rowAnimationNames = map[RowAnimation]string{
	RowAnimationNone:      "none",
	RowAnimationFade:      "fade",
	RowAnimationTop:       "top",
	RowAnimationBottom:    "bottom",
	RowAnimationAutomatic: "automatic",
}

func (a RowAnimation) String() string {
	if name, ok := rowAnimationNames[a]; ok {
		return name
	}
	return "unknown"
}

// ParseRowAnimation maps a config value back to a RowAnimation.
func ParseRowAnimation(s string) (RowAnimation, bool) {
	for a, name := range rowAnimationNames {
		if name == s {
			return a, true
		}
	}
	return RowAnimationNone, false
}

// MutationKind is the direction of a batched row mutation.
type MutationKind int

const (
	MutationInsert MutationKind = iota
	MutationDelete
)

func (k MutationKind) String() string {
	if k == MutationDelete {
		return "delete"
	}
	return "insert"
}

// Batch is one atomic row mutation. Rows are physical, ascending.
type Batch struct {
	Section   int
	Kind      MutationKind
	Rows      []int
	Animation RowAnimation
}

// Animated reports whether the host should animate the batch.
func (b Batch) Animated() bool {
	return b.Animation != RowAnimationNone
}

// HostSurface is the list surface the controller drives.
type HostSurface interface {
	// ReloadData drops all cached rows and re-asks the data source.
	ReloadData()
	// PerformBatch applies the mutation in one step and calls done once the
	// (possibly animated) update has finished. done may run synchronously.
	PerformBatch(b Batch, done func())
	// VisibleCell returns the cell currently on screen at a physical path.
	VisibleCell(path IndexPath) (Cell, bool)
	// SetChromeVisible shows or hides the surface's header and footer views.
	SetChromeVisible(visible bool)
}

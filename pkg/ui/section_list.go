package ui

import (
	"fmt"
	"slices"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/sectionview/pkg/expansion"
)

const (
	// maxAnimationFrames bounds how long an insert or delete animation runs.
	maxAnimationFrames = 8
	// fadeFrames is how long rows stay faded for RowAnimationFade.
	fadeFrames = 4
	// defaultAnimationFrame is used when no frame duration is configured.
	defaultAnimationFrame = 16 * time.Millisecond
)

// ListDataSource is what SectionList reads rows from.
// *expansion.ProxyDataSource satisfies it.
type ListDataSource interface {
	NumberOfSections() int
	NumberOfRows(section int) int
	CellAt(path expansion.IndexPath) expansion.Cell
	TitleForSection(section int) string
	IsHeader(path expansion.IndexPath) bool
}

// ListDelegate receives display and selection events.
// *expansion.ProxyDelegate satisfies it.
type ListDelegate interface {
	WillDisplayCell(cell expansion.Cell, path expansion.IndexPath)
	DidSelectRow(path expansion.IndexPath) error
}

// ListTickMsg advances row animations by one frame.
type ListTickMsg struct{}

type lineKind int

const (
	lineTitle lineKind = iota // Plain section title, not selectable
	lineCell                  // A row served by the data source
	lineGhost                 // A deleted row still on screen while it animates out
)

type listLine struct {
	kind  lineKind
	path  expansion.IndexPath // Physical path; the original one for ghosts
	cell  expansion.Cell
	title string
}

// rowAnimation is one batched mutation playing out over several frames.
type rowAnimation struct {
	batch   expansion.Batch
	done    func()
	pending []int          // Inserted rows not yet revealed
	ghosts  []cellRenderer // Deleted rows still shown
	fade    int
	chunk   int
}

// step advances the animation and reports whether it has finished.
func (a *rowAnimation) step() bool {
	if a.fade > 0 {
		a.fade--
		if a.fade == 0 {
			a.pending, a.ghosts = nil, nil
		}
		return a.fade == 0
	}

	n := a.chunk
	bottom := a.batch.Animation == expansion.RowAnimationBottom
	if a.batch.Kind == expansion.MutationInsert {
		n = min(n, len(a.pending))
		if bottom {
			a.pending = a.pending[:len(a.pending)-n]
		} else {
			a.pending = a.pending[n:]
		}
	} else {
		n = min(n, len(a.ghosts))
		if bottom {
			a.ghosts = a.ghosts[n:]
		} else {
			a.ghosts = a.ghosts[:len(a.ghosts)-n]
		}
	}
	return len(a.pending) == 0 && len(a.ghosts) == 0
}

func (a *rowAnimation) hides(row int) bool {
	return slices.Contains(a.pending, row)
}

// SectionList is the terminal list the expansion controller drives. It
// implements expansion.HostSurface: batches arrive through PerformBatch and
// animated ones are played out on ListTickMsg frames.
type SectionList struct {
	ds       ListDataSource
	delegate ListDelegate
	theme    Theme

	width, height int
	frame         time.Duration

	lines   []listLine
	cursor  int
	offset  int
	visible map[expansion.IndexPath]expansion.Cell

	anims       map[int]*rowAnimation
	tickPending bool
	spinner     string

	chrome bool
	title  string
	footer string
}

// NewSectionList creates an empty list. Attach a data source before use.
func NewSectionList(theme Theme, frame time.Duration) *SectionList {
	if frame <= 0 {
		frame = defaultAnimationFrame
	}
	return &SectionList{
		theme:   theme,
		frame:   frame,
		visible: make(map[expansion.IndexPath]expansion.Cell),
		anims:   make(map[int]*rowAnimation),
		chrome:  true,
		width:   80,
		height:  24,
	}
}

// Attach connects the list to the controller's proxies.
func (l *SectionList) Attach(ds ListDataSource, delegate ListDelegate) {
	l.ds = ds
	l.delegate = delegate
}

// SetSize sets the area the list renders into.
func (l *SectionList) SetSize(width, height int) {
	l.width = width
	l.height = height
	l.ensureCursorVisible()
	l.refreshVisible()
}

// SetTitle sets the title bar text.
func (l *SectionList) SetTitle(title string) { l.title = title }

// SetFooter sets the footer text.
func (l *SectionList) SetFooter(footer string) { l.footer = footer }

// SetSpinner sets the frame shown in loading headers.
func (l *SectionList) SetSpinner(frame string) { l.spinner = frame }

// ChromeVisible reports whether the title bar and footer are shown.
func (l *SectionList) ChromeVisible() bool { return l.chrome }

// ReloadData implements expansion.HostSurface. Animations in flight are
// dropped without calling their completions.
func (l *SectionList) ReloadData() {
	clear(l.anims)
	clear(l.visible)
	l.rebuild()
}

// PerformBatch implements expansion.HostSurface.
func (l *SectionList) PerformBatch(b expansion.Batch, done func()) {
	if prev, ok := l.anims[b.Section]; ok {
		delete(l.anims, b.Section)
		prev.done()
	}
	l.tickPending = true

	if !b.Animated() || len(b.Rows) == 0 {
		l.rebuild()
		done()
		l.redisplay(b.Section)
		return
	}

	a := &rowAnimation{
		batch: b,
		done:  done,
		chunk: max(1, (len(b.Rows)+maxAnimationFrames-1)/maxAnimationFrames),
	}
	if b.Kind == expansion.MutationDelete {
		a.ghosts = l.captureGhosts(b)
	}
	if b.Animation == expansion.RowAnimationFade {
		a.fade = fadeFrames
	} else if b.Kind == expansion.MutationInsert {
		a.pending = slices.Clone(b.Rows)
	}

	if a.fade == 0 && len(a.pending) == 0 && len(a.ghosts) == 0 {
		l.rebuild()
		done()
		l.redisplay(b.Section)
		return
	}
	l.anims[b.Section] = a
	l.rebuild()
}

// VisibleCell implements expansion.HostSurface.
func (l *SectionList) VisibleCell(path expansion.IndexPath) (expansion.Cell, bool) {
	cell, ok := l.visible[path]
	return cell, ok
}

// SetChromeVisible implements expansion.HostSurface.
func (l *SectionList) SetChromeVisible(visible bool) {
	if l.chrome == visible {
		return
	}
	l.chrome = visible
	l.ensureCursorVisible()
	l.refreshVisible()
}

// Animating reports whether any batch is still playing.
func (l *SectionList) Animating() bool { return len(l.anims) > 0 }

// TickCmd returns a command for the next animation frame if one was
// requested since the last call.
func (l *SectionList) TickCmd() tea.Cmd {
	if !l.tickPending {
		return nil
	}
	l.tickPending = false
	return tea.Tick(l.frame, func(time.Time) tea.Msg { return ListTickMsg{} })
}

// Tick advances every animation by one frame and reports whether another
// frame is needed.
func (l *SectionList) Tick() bool {
	var finished []*rowAnimation
	for section, a := range l.anims {
		if a.step() {
			finished = append(finished, a)
			delete(l.anims, section)
		}
	}
	if len(finished) > 0 || len(l.anims) > 0 {
		l.rebuild()
	}
	slices.SortFunc(finished, func(a, b *rowAnimation) int { return a.batch.Section - b.batch.Section })
	for _, a := range finished {
		a.done()
		l.redisplay(a.batch.Section)
	}

	pulsing := false
	for _, cell := range l.visible {
		if h, ok := cell.(*HeaderCell); ok && h.Tick() {
			pulsing = true
		}
	}
	more := len(l.anims) > 0 || pulsing
	if more {
		l.tickPending = true
	}
	return more
}

// captureGhosts snapshots the rows a delete batch removes so they can stay on
// screen while animating out.
func (l *SectionList) captureGhosts(b expansion.Batch) []cellRenderer {
	var ghosts []cellRenderer
	for _, line := range l.lines {
		if line.kind != lineCell || line.path.Section != b.Section || !slices.Contains(b.Rows, line.path.Row) {
			continue
		}
		switch c := line.cell.(type) {
		case *RowCell:
			dim := *c
			dim.dimmed = true
			ghosts = append(ghosts, &dim)
		case cellRenderer:
			ghosts = append(ghosts, c)
		}
	}
	return ghosts
}

// rebuild flattens the data source into lines, applying running animations,
// and keeps the cursor on the same row where possible.
func (l *SectionList) rebuild() {
	key, hadKey := l.CursorPath()
	l.lines = l.lines[:0]

	if l.ds != nil {
		for section := 0; section < l.ds.NumberOfSections(); section++ {
			if title := l.ds.TitleForSection(section); title != "" {
				l.lines = append(l.lines, listLine{kind: lineTitle, path: expansion.IndexPath{Section: section, Row: -1}, title: title})
			}
			anim := l.anims[section]
			rows := l.ds.NumberOfRows(section)
			for row := 0; row < rows; row++ {
				path := expansion.IndexPath{Section: section, Row: row}
				if anim != nil && anim.hides(row) {
					continue
				}
				l.lines = append(l.lines, listLine{kind: lineCell, path: path, cell: l.ds.CellAt(path)})
				if row == 0 && anim != nil && l.ds.IsHeader(path) {
					for _, g := range anim.ghosts {
						l.lines = append(l.lines, listLine{kind: lineGhost, path: path, cell: g})
					}
				}
			}
		}
	}

	restored := false
	if hadKey {
		for i, line := range l.lines {
			if line.kind == lineCell && line.path == key {
				l.cursor = i
				restored = true
				break
			}
		}
	}
	if !restored {
		l.cursor = min(l.cursor, len(l.lines)-1)
		l.cursor = max(l.cursor, 0)
		l.settleCursor(1)
	}
	l.ensureCursorVisible()
	l.refreshVisible()
}

// refreshVisible announces cells that scrolled into view and records what is
// on screen for VisibleCell.
func (l *SectionList) refreshVisible() {
	start, end := l.window()
	seen := make(map[expansion.IndexPath]expansion.Cell, end-start)
	for i := start; i < end; i++ {
		line := l.lines[i]
		if line.kind != lineCell || line.cell == nil {
			continue
		}
		seen[line.path] = line.cell
		if prev, ok := l.visible[line.path]; (!ok || prev != line.cell) && l.delegate != nil {
			l.delegate.WillDisplayCell(line.cell, line.path)
		}
	}
	l.visible = seen
}

// redisplay re-announces the visible cells of a section, used once its
// animation has ended so they are configured for the steady state.
func (l *SectionList) redisplay(section int) {
	for path := range l.visible {
		if path.Section == section {
			delete(l.visible, path)
		}
	}
	l.refreshVisible()
}

// rowsHeight is the number of lines available for rows.
func (l *SectionList) rowsHeight() int {
	h := l.height
	if l.chrome {
		h -= 2
	}
	return max(h, 1)
}

// window returns the [start, end) range of lines on screen.
func (l *SectionList) window() (start, end int) {
	start = min(l.offset, len(l.lines))
	end = min(start+l.rowsHeight(), len(l.lines))
	return start, end
}

func (l *SectionList) ensureCursorVisible() {
	h := l.rowsHeight()
	if l.cursor < l.offset {
		l.offset = l.cursor
	}
	if l.cursor >= l.offset+h {
		l.offset = l.cursor - h + 1
	}
	l.offset = min(l.offset, max(len(l.lines)-h, 0))
	l.offset = max(l.offset, 0)
}

func (l *SectionList) selectable(i int) bool {
	return i >= 0 && i < len(l.lines) && l.lines[i].kind == lineCell
}

// settleCursor moves the cursor onto a selectable line, searching in dir
// first and then the other way.
func (l *SectionList) settleCursor(dir int) {
	if l.selectable(l.cursor) {
		return
	}
	for _, d := range []int{dir, -dir} {
		for i := l.cursor + d; i >= 0 && i < len(l.lines); i += d {
			if l.selectable(i) {
				l.cursor = i
				return
			}
		}
	}
}

// move shifts the cursor by delta selectable-or-not lines and settles it.
func (l *SectionList) move(delta int) {
	if len(l.lines) == 0 {
		return
	}
	dir := 1
	if delta < 0 {
		dir = -1
	}
	target := l.cursor + delta
	target = max(min(target, len(l.lines)-1), 0)
	// Single steps skip over titles and ghosts
	if delta == dir {
		for target != l.cursor && !l.selectable(target) {
			next := target + dir
			if next < 0 || next >= len(l.lines) {
				target = l.cursor
				break
			}
			target = next
		}
	}
	l.cursor = target
	l.settleCursor(dir)
	l.ensureCursorVisible()
	l.refreshVisible()
}

// MoveUp moves the cursor up one row.
func (l *SectionList) MoveUp() { l.move(-1) }

// MoveDown moves the cursor down one row.
func (l *SectionList) MoveDown() { l.move(1) }

// PageUp moves the cursor up by half a screen.
func (l *SectionList) PageUp() { l.move(-max(l.rowsHeight()/2, 1)) }

// PageDown moves the cursor down by half a screen.
func (l *SectionList) PageDown() { l.move(max(l.rowsHeight()/2, 1)) }

// Top jumps to the first row.
func (l *SectionList) Top() { l.move(-len(l.lines)) }

// Bottom jumps to the last row.
func (l *SectionList) Bottom() { l.move(len(l.lines)) }

// CursorPath returns the physical path of the selected row.
func (l *SectionList) CursorPath() (expansion.IndexPath, bool) {
	if !l.selectable(l.cursor) {
		return expansion.IndexPath{}, false
	}
	return l.lines[l.cursor].path, true
}

// SelectPath moves the cursor to a physical path. It reports whether the row
// is currently shown.
func (l *SectionList) SelectPath(path expansion.IndexPath) bool {
	for i, line := range l.lines {
		if line.kind == lineCell && line.path == path {
			l.cursor = i
			l.ensureCursorVisible()
			l.refreshVisible()
			return true
		}
	}
	return false
}

// Select reports a selection of the row under the cursor to the delegate.
func (l *SectionList) Select() error {
	path, ok := l.CursorPath()
	if !ok || l.delegate == nil {
		return nil
	}
	return l.delegate.DidSelectRow(path)
}

// LineCount returns the number of lines currently laid out, ghosts included.
func (l *SectionList) LineCount() int { return len(l.lines) }

// View renders the list.
func (l *SectionList) View() string {
	t := l.theme
	r := t.Renderer
	var sb strings.Builder

	if l.chrome {
		bar := r.NewStyle().
			Background(t.BgBar).
			Foreground(t.Primary).
			Bold(true).
			Width(l.width).
			Padding(0, 1)
		sb.WriteString(bar.Render(truncate(l.title, l.width-2)))
		sb.WriteString("\n")
	}

	start, end := l.window()
	if start == end {
		sb.WriteString(r.NewStyle().Foreground(t.Muted).Italic(true).Render("No rows."))
		sb.WriteString("\n")
	}
	for i := start; i < end; i++ {
		sb.WriteString(l.renderLine(i))
		sb.WriteString("\n")
	}
	for i := end - start; i < l.rowsHeight() && start != end; i++ {
		sb.WriteString("\n")
	}

	if l.chrome {
		footer := l.footer
		if footer == "" {
			footer = fmt.Sprintf("%d lines", len(l.lines))
		}
		sb.WriteString(r.NewStyle().Foreground(t.Subtext).Render(truncate(footer, l.width)))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (l *SectionList) renderLine(i int) string {
	line := l.lines[i]
	rc := renderContext{
		Theme:    l.theme,
		Width:    l.width,
		Selected: i == l.cursor && line.kind == lineCell,
		Spinner:  l.spinner,
	}
	switch line.kind {
	case lineTitle:
		return l.theme.Renderer.NewStyle().
			Foreground(l.theme.Secondary).
			Bold(true).
			Render(truncate(line.title, l.width))
	default:
		if cr, ok := line.cell.(cellRenderer); ok {
			return cr.Render(rc)
		}
		return fmt.Sprint(line.cell)
	}
}

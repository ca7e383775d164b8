package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/sectionview/pkg/expansion"
	"github.com/vanderheijden86/sectionview/pkg/model"
)

// headerPulseFrames is how long a header's arrow stays highlighted after an
// animated expand or collapse.
const headerPulseFrames = 6

// renderContext carries what a cell needs to draw itself.
type renderContext struct {
	Theme    Theme
	Width    int
	Selected bool
	Spinner  string // Current spinner frame for loading headers
}

// cellRenderer is implemented by everything SectionList can draw.
type cellRenderer interface {
	Render(rc renderContext) string
}

// HeaderCell is the synthetic first row of an expandable section. It
// implements expansion.HeaderCell.
type HeaderCell struct {
	SectionID string
	Title     string
	Summary   string
	Remote    bool
	Count     int // Known row count, -1 while unknown

	loading bool
	style   expansion.ExpansionStyle
	pulse   int
}

// NewHeaderCell creates a collapsed header for section s.
func NewHeaderCell(s model.Section) *HeaderCell {
	h := &HeaderCell{
		SectionID: s.ID,
		Title:     s.Title,
		Summary:   s.Summary,
		Remote:    s.Kind.NeedsDownload(),
		Count:     len(s.Rows),
	}
	if h.Remote {
		h.Count = -1
	}
	return h
}

func (h *HeaderCell) Loading() bool                            { return h.loading }
func (h *HeaderCell) SetLoading(loading bool)                  { h.loading = loading }
func (h *HeaderCell) ExpansionStyle() expansion.ExpansionStyle { return h.style }

// SetExpansionStyle switches the arrow. Animated changes highlight the arrow
// for a few frames.
func (h *HeaderCell) SetExpansionStyle(style expansion.ExpansionStyle, animated bool) {
	h.style = style
	if animated {
		h.pulse = headerPulseFrames
	} else {
		h.pulse = 0
	}
}

// Tick advances the highlight and reports whether it is still running.
func (h *HeaderCell) Tick() bool {
	if h.pulse > 0 {
		h.pulse--
	}
	return h.pulse > 0
}

// indicator returns the arrow (or spinner) shown in front of the title.
func (h *HeaderCell) indicator(spinner string) string {
	if h.loading {
		if spinner == "" {
			return "…"
		}
		return spinner
	}
	if h.style.IsExpanded() {
		return "▾"
	}
	return "▸"
}

// Render draws the header line.
func (h *HeaderCell) Render(rc renderContext) string {
	t := rc.Theme
	r := t.Renderer

	indStyle := r.NewStyle().Foreground(t.Secondary)
	if h.pulse > 0 {
		indStyle = indStyle.Foreground(t.Highlight).Bold(true)
	}
	if h.loading {
		indStyle = r.NewStyle().Foreground(t.Primary)
	}

	var badge string
	switch {
	case h.loading:
		badge = "loading"
	case h.Count >= 0:
		badge = fmt.Sprintf("%d", h.Count)
	case h.Remote:
		badge = "remote"
	}

	ind := indStyle.Render(h.indicator(rc.Spinner)) + " "
	badgeText := ""
	if badge != "" {
		badgeText = " " + r.NewStyle().Foreground(t.Muted).Render("("+badge+")")
	}

	room := rc.Width - lipgloss.Width(ind) - lipgloss.Width(badgeText)
	title := t.Header.Render(truncate(h.Title, room))
	line := ind + title + badgeText

	if h.Summary != "" && !h.style.IsExpanded() {
		room = rc.Width - lipgloss.Width(line) - 3
		if room > 8 {
			line += r.NewStyle().Foreground(t.Subtext).Italic(true).Render(" · " + truncate(h.Summary, room))
		}
	}

	if rc.Selected {
		return t.Selected.Render(line)
	}
	return line
}

// RowCell draws one application row.
type RowCell struct {
	Row    model.Row
	Indent bool // Rows under a header are indented

	dimmed bool
}

// SetDimmed draws the row faded, used while its section animates.
func (c *RowCell) SetDimmed(dimmed bool) { c.dimmed = dimmed }

// Dimmed reports whether the row is drawn faded.
func (c *RowCell) Dimmed() bool { return c.dimmed }

// Render draws the row line.
func (c *RowCell) Render(rc renderContext) string {
	t := rc.Theme
	r := t.Renderer

	prefix := ""
	if c.Indent {
		prefix = "   "
	}

	var tags string
	if len(c.Row.Tags) > 0 {
		tags = " " + r.NewStyle().Foreground(t.Muted).Render("#"+strings.Join(c.Row.Tags, " #"))
	}
	room := rc.Width - len(prefix) - lipgloss.Width(tags)
	title := truncate(c.Row.Title, room)

	style := t.Base
	if c.dimmed {
		style = r.NewStyle().Foreground(t.Muted)
	}
	line := prefix + style.Render(title) + tags

	if rc.Selected {
		return t.Selected.Render(line)
	}
	return line
}

// truncate shortens s to fit width display columns.
func truncate(s string, width int) string {
	if width <= 1 {
		return "…"
	}
	return runewidth.Truncate(s, width, "…")
}

package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/sectionview/pkg/expansion"
	"github.com/vanderheijden86/sectionview/pkg/model"
)

func renderCtx(width int) renderContext {
	return renderContext{Theme: testTheme(), Width: width}
}

func TestHeaderCell_Indicator(t *testing.T) {
	h := NewHeaderCell(model.Section{ID: "inbox", Title: "Inbox", Kind: model.KindExpandable})

	if got := h.indicator(""); got != "▸" {
		t.Errorf("collapsed indicator = %q", got)
	}
	h.SetExpansionStyle(expansion.ExpansionStyleExpandedRow, false)
	if got := h.indicator(""); got != "▾" {
		t.Errorf("expanded indicator = %q", got)
	}
	h.SetLoading(true)
	if got := h.indicator(""); got != "…" {
		t.Errorf("loading indicator without spinner = %q", got)
	}
	if got := h.indicator("⠋"); got != "⠋" {
		t.Errorf("loading indicator = %q", got)
	}
}

func TestHeaderCell_Pulse(t *testing.T) {
	h := NewHeaderCell(model.Section{ID: "inbox", Title: "Inbox", Kind: model.KindExpandable})

	h.SetExpansionStyle(expansion.ExpansionStyleExpandedRow, false)
	if h.Tick() {
		t.Error("a non-animated change should not pulse")
	}

	h.SetExpansionStyle(expansion.ExpansionStyleCollapsedRow, true)
	ticks := 0
	for h.Tick() {
		ticks++
	}
	if ticks != headerPulseFrames-1 {
		t.Errorf("pulse lasted %d ticks, want %d", ticks, headerPulseFrames-1)
	}
	if h.ExpansionStyle().IsExpanded() {
		t.Error("style should be collapsed")
	}
}

func TestHeaderCell_Render(t *testing.T) {
	tests := []struct {
		name    string
		section model.Section
		prepare func(h *HeaderCell)
		want    []string
		notWant []string
	}{
		{
			name:    "inline rows show count",
			section: model.Section{ID: "a", Title: "Inbox", Kind: model.KindExpandable, Rows: testRows("i", 3)},
			want:    []string{"▸", "Inbox", "(3)"},
		},
		{
			name:    "remote before download",
			section: model.Section{ID: "b", Title: "Archive", Kind: model.KindRemote},
			want:    []string{"Archive", "(remote)"},
		},
		{
			name:    "loading",
			section: model.Section{ID: "b", Title: "Archive", Kind: model.KindRemote},
			prepare: func(h *HeaderCell) { h.SetLoading(true) },
			want:    []string{"(loading)"},
			notWant: []string{"(remote)"},
		},
		{
			name:    "summary while collapsed",
			section: model.Section{ID: "c", Title: "Notes", Summary: "things to remember", Kind: model.KindExpandable},
			want:    []string{"Notes", "· things to remember"},
		},
		{
			name:    "summary hidden when expanded",
			section: model.Section{ID: "c", Title: "Notes", Summary: "things to remember", Kind: model.KindExpandable},
			prepare: func(h *HeaderCell) { h.SetExpansionStyle(expansion.ExpansionStyleExpandedRow, false) },
			want:    []string{"▾", "Notes"},
			notWant: []string{"things to remember"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHeaderCell(tt.section)
			if tt.prepare != nil {
				tt.prepare(h)
			}
			out := h.Render(renderCtx(80))
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("expected %q in %q", w, out)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(out, w) {
					t.Errorf("did not expect %q in %q", w, out)
				}
			}
		})
	}
}

func TestRowCell_Render(t *testing.T) {
	c := &RowCell{Row: model.Row{ID: "r", Title: "A fairly long row title that will not fit", Tags: []string{"ops", "q3"}}, Indent: true}

	out := c.Render(renderCtx(80))
	if !strings.HasPrefix(out, "   ") {
		t.Errorf("indented row should start with spaces: %q", out)
	}
	if !strings.Contains(out, "#ops #q3") {
		t.Errorf("tags missing: %q", out)
	}

	narrow := c.Render(renderCtx(30))
	if w := lipgloss.Width(narrow); w > 30 {
		t.Errorf("row should fit 30 columns, got %d: %q", w, narrow)
	}
	if !strings.Contains(narrow, "…") {
		t.Errorf("long title should be truncated: %q", narrow)
	}
}

func TestRowCell_Dimmed(t *testing.T) {
	c := &RowCell{Row: model.Row{ID: "r", Title: "Row"}}
	if c.Dimmed() {
		t.Error("new cells are not dimmed")
	}
	c.SetDimmed(true)
	if !c.Dimmed() || !strings.Contains(c.Render(renderCtx(40)), "Row") {
		t.Error("dimmed row should still render its title")
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"exactly", 7, "exactly"},
		{"too long", 5, "too …"},
		{"anything", 1, "…"},
		{"anything", 0, "…"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.width); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}

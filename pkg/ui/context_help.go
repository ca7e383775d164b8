package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Context identifies which part of the UI has focus.
type Context int

const (
	ContextList Context = iota
	ContextDetail
	ContextHelp
)

func (c Context) String() string {
	switch c {
	case ContextList:
		return "list"
	case ContextDetail:
		return "detail"
	case ContextHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ContextHelpContent contains compact help content for each context.
// Content should fit on one screen (~20 lines) without scrolling.
var ContextHelpContent = map[Context]string{
	ContextList:   contextHelpList,
	ContextDetail: contextHelpDetail,
}

// GetContextHelp returns the help content for a given context.
// Falls back to generic help if the context has no specific content.
func GetContextHelp(ctx Context) string {
	if content, ok := ContextHelpContent[ctx]; ok {
		return content
	}
	return contextHelpGeneric
}

// RenderContextHelp renders the help modal for ctx.
func RenderContextHelp(ctx Context, theme Theme, width, height int) string {
	content := GetContextHelp(ctx)

	r := theme.Renderer

	modalWidth := 60
	if modalWidth > width-4 {
		modalWidth = width - 4
	}
	modalWidth = max(modalWidth, 20)

	titleStyle := r.NewStyle().
		Bold(true).
		Foreground(theme.Primary)

	contentStyle := r.NewStyle().
		Foreground(theme.Subtext)

	footerStyle := r.NewStyle().
		Foreground(theme.Muted).
		Italic(true)

	var b strings.Builder
	b.WriteString(titleStyle.Render("Quick Reference"))
	b.WriteString("\n")
	b.WriteString(r.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", modalWidth-4)))
	b.WriteString("\n\n")
	b.WriteString(contentStyle.Render(content))
	b.WriteString("\n\n")
	b.WriteString(footerStyle.Render("? or Esc to close"))

	modalStyle := r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Secondary).
		Padding(1, 2).
		Width(modalWidth)

	modal := modalStyle.Render(b.String())
	if width <= 0 || height <= 0 {
		return modal
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, modal)
}

const contextHelpList = `## Sections

**Navigation**
  j/k       Move up/down
  pgup/pgdn Half a page
  g/G       Jump to top/bottom

**Expanding**
  Enter     Toggle header / select row
  l/→       Expand section
  h/←       Collapse section
  E / C     Expand all / collapse all
  Enter on a loading header cancels it

**Data**
  r         Reload the catalog
  R         Reset: collapse all, drop downloads
  y         Copy selected row title
  Tab       Toggle detail pane`

const contextHelpDetail = `## Detail Pane

  j/k       Scroll
  Tab       Back to the list
  y         Copy row title
  q         Quit`

const contextHelpGeneric = `## sv

  ?         Toggle this help
  q         Quit`

package ui

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/lipgloss"
)

// MarkdownRenderer renders row bodies for the detail pane.
type MarkdownRenderer struct {
	renderer *glamour.TermRenderer
	width    int
	useTheme bool
	theme    *Theme
}

// NewMarkdownRenderer creates a renderer using glamour's auto style.
func NewMarkdownRenderer(width int) *MarkdownRenderer {
	mr := &MarkdownRenderer{width: width}
	mr.renderer = mr.build()
	return mr
}

// NewMarkdownRendererWithTheme creates a renderer whose colors follow theme.
func NewMarkdownRendererWithTheme(width int, theme Theme) *MarkdownRenderer {
	mr := &MarkdownRenderer{width: width, useTheme: true, theme: &theme}
	mr.renderer = mr.build()
	return mr
}

func (mr *MarkdownRenderer) build() *glamour.TermRenderer {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(mr.width)}
	if mr.useTheme && mr.theme != nil {
		opts = append(opts, glamour.WithStyles(buildStyleFromTheme(*mr.theme, mr.IsDarkMode())))
	} else {
		opts = append(opts, glamour.WithAutoStyle())
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil
	}
	return r
}

// Render converts markdown to ANSI text. Without a renderer the input is
// returned as-is.
func (mr *MarkdownRenderer) Render(markdown string) (string, error) {
	if mr.renderer == nil {
		return markdown, nil
	}
	out, err := mr.renderer.Render(markdown)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(out, "\n"), nil
}

// SetWidth rebuilds the renderer for a new wrap width. Non-positive widths
// are ignored.
func (mr *MarkdownRenderer) SetWidth(width int) {
	if width <= 0 || width == mr.width {
		return
	}
	mr.width = width
	mr.renderer = mr.build()
}

// SetWidthWithTheme switches to theme colors and a new width.
func (mr *MarkdownRenderer) SetWidthWithTheme(width int, theme Theme) {
	if width > 0 {
		mr.width = width
	}
	mr.useTheme = true
	mr.theme = &theme
	mr.renderer = mr.build()
}

// IsDarkMode reports the terminal background the theme resolves against.
func (mr *MarkdownRenderer) IsDarkMode() bool {
	if mr.theme != nil && mr.theme.Renderer != nil {
		return mr.theme.Renderer.HasDarkBackground()
	}
	return lipgloss.HasDarkBackground()
}

func extractHex(c lipgloss.AdaptiveColor, dark bool) string {
	if dark {
		return c.Dark
	}
	return c.Light
}

func buildStyleFromTheme(theme Theme, dark bool) ansi.StyleConfig {
	text := extractHex(theme.Text, dark)
	primary := extractHex(theme.Primary, dark)
	secondary := extractHex(theme.Secondary, dark)
	highlight := extractHex(theme.Highlight, dark)
	muted := extractHex(theme.Muted, dark)
	bold := true
	margin := uint(0)

	return ansi.StyleConfig{
		Document: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{Color: &text},
			Margin:         &margin,
		},
		Heading: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{Color: &primary, Bold: &bold},
		},
		H1: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{Prefix: "# ", Color: &primary, Bold: &bold},
		},
		H2: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{Prefix: "## ", Color: &primary},
		},
		H3: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{Prefix: "### ", Color: &secondary},
		},
		Strong:   ansi.StylePrimitive{Bold: &bold},
		Link:     ansi.StylePrimitive{Color: &highlight, Underline: &bold},
		LinkText: ansi.StylePrimitive{Color: &highlight},
		Code: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{Color: &secondary},
		},
		CodeBlock: ansi.StyleCodeBlock{
			StyleBlock: ansi.StyleBlock{
				StylePrimitive: ansi.StylePrimitive{Color: &muted},
				Margin:         &margin,
			},
		},
		BlockQuote: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{Color: &muted},
			Indent:         &margin,
		},
		Item:        ansi.StylePrimitive{BlockPrefix: "• "},
		Enumeration: ansi.StylePrimitive{BlockPrefix: ". "},
	}
}

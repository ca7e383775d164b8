// Package export renders a catalog, including rows from the row store, as a
// Markdown report.
package export

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/vanderheijden86/sectionview/pkg/model"
)

// RowSource supplies the rows of remote sections. *store.RowStore satisfies it.
type RowSource interface {
	FetchRows(ctx context.Context, sectionID string) ([]model.Row, error)
}

// GenerateMarkdown creates a Markdown report of every section in cat. Rows of
// remote sections come from src; a nil src, or a fetch error, leaves the
// section marked as not loaded.
func GenerateMarkdown(ctx context.Context, cat *model.Catalog, src RowSource, now time.Time) (string, error) {
	var sb strings.Builder

	title := cat.Title
	if title == "" {
		title = "Sections"
	}
	sb.WriteString(fmt.Sprintf("# %s\n\n", title))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", now.Format(time.RFC1123)))

	rows := make([][]model.Row, len(cat.Sections))
	loaded := make([]bool, len(cat.Sections))
	total := 0
	for i, sec := range cat.Sections {
		if !sec.Kind.NeedsDownload() {
			rows[i], loaded[i] = sec.Rows, true
		} else if src != nil {
			r, err := src.FetchRows(ctx, sec.ID)
			if err == nil {
				rows[i], loaded[i] = r, true
			} else if ctx.Err() != nil {
				return "", ctx.Err()
			}
		}
		total += len(rows[i])
	}

	// Summary
	sb.WriteString("## Summary\n\n")
	sb.WriteString(fmt.Sprintf("- **Sections**: %d\n", len(cat.Sections)))
	sb.WriteString(fmt.Sprintf("- **Rows**: %d\n\n", total))

	sb.WriteString("| Section | Kind | Rows |\n")
	sb.WriteString("|---|---|---|\n")
	for i, sec := range cat.Sections {
		count := fmt.Sprintf("%d", len(rows[i]))
		if !loaded[i] {
			count = "not loaded"
		}
		sb.WriteString(fmt.Sprintf("| [%s](#%s) | %s | %s |\n", escapeCell(sec.Title), anchor(sec.Title), kindName(sec.Kind), count))
	}
	sb.WriteString("\n---\n\n")

	for i, sec := range cat.Sections {
		sb.WriteString(fmt.Sprintf("## %s\n\n", sec.Title))
		if sec.Summary != "" {
			sb.WriteString("_" + sec.Summary + "_\n\n")
		}
		if !loaded[i] {
			sb.WriteString("Rows not loaded. Seed the row store with `sv seed`.\n\n---\n\n")
			continue
		}
		if len(rows[i]) == 0 {
			sb.WriteString("No rows.\n\n---\n\n")
			continue
		}
		for _, row := range rows[i] {
			sb.WriteString(fmt.Sprintf("### %s\n\n", row.Title))
			var meta []string
			if len(row.Tags) > 0 {
				meta = append(meta, "`"+strings.Join(row.Tags, "` `")+"`")
			}
			if !row.UpdatedAt.IsZero() {
				meta = append(meta, "updated "+row.UpdatedAt.Format("2006-01-02"))
			}
			if len(meta) > 0 {
				sb.WriteString(strings.Join(meta, " · ") + "\n\n")
			}
			if row.Body != "" {
				sb.WriteString(strings.TrimSpace(row.Body) + "\n\n")
			}
		}
		sb.WriteString("---\n\n")
	}

	return sb.String(), nil
}

// SaveMarkdownToFile writes the generated markdown to a file
func SaveMarkdownToFile(ctx context.Context, cat *model.Catalog, src RowSource, filename string) error {
	content, err := GenerateMarkdown(ctx, cat, src, time.Now())
	if err != nil {
		return err
	}
	return os.WriteFile(filename, []byte(content), 0644)
}

func kindName(k model.SectionKind) string {
	if k == "" {
		return string(model.KindStatic)
	}
	return string(k)
}

// anchor approximates the heading anchors GitHub generates.
func anchor(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		switch {
		case r == ' ' || r == '-':
			b.WriteRune('-')
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		}
	}
	return b.String()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

package ui

import (
	"strings"
	"testing"
)

func TestContext_String(t *testing.T) {
	tests := []struct {
		ctx  Context
		want string
	}{
		{ContextList, "list"},
		{ContextDetail, "detail"},
		{ContextHelp, "help"},
		{Context(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.ctx.String(); got != tt.want {
			t.Errorf("Context(%d).String() = %q, want %q", tt.ctx, got, tt.want)
		}
	}
}

func TestGetContextHelp(t *testing.T) {
	if !strings.Contains(GetContextHelp(ContextList), "Expand all") {
		t.Error("list help should describe expanding")
	}
	if !strings.Contains(GetContextHelp(ContextDetail), "Detail Pane") {
		t.Error("detail help missing")
	}
	if GetContextHelp(ContextHelp) != contextHelpGeneric {
		t.Error("contexts without content should fall back to generic help")
	}
}

func TestRenderContextHelp(t *testing.T) {
	out := RenderContextHelp(ContextList, testTheme(), 100, 40)
	for _, want := range []string{"Quick Reference", "Sections", "Esc to close"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in help modal", want)
		}
	}
	if lines := strings.Count(out, "\n") + 1; lines != 40 {
		t.Errorf("modal should be placed in the full height, got %d lines", lines)
	}

	// Tiny terminals still get a modal
	if out := RenderContextHelp(ContextDetail, testTheme(), 0, 0); !strings.Contains(out, "Quick Reference") {
		t.Error("unplaced modal missing title")
	}
}

package loader

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCoversDir(t *testing.T) {
	tests := []struct {
		line    string
		matches bool
	}{
		{".sectionview", true},
		{".sectionview/", true},
		{".sectionview/*", true},
		{".sectionview/**", true},
		{".sectionview/**/*", true},
		{"/.sectionview", true},
		{"/.sectionview/", true},

		{"", false},
		{".sectionview2", false},
		{"sectionview/", false},
		{".cache/", false},
		{"*.sectionview", false},
		{".sectionview-backup", false},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			if got := coversDir(tt.line, ".sectionview"); got != tt.matches {
				t.Errorf("coversDir(%q) = %v, want %v", tt.line, got, tt.matches)
			}
		})
	}
}

func TestGitignoreCovers(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected bool
	}{
		{"empty file", "", false},
		{"has dir", "node_modules/\n.sectionview\n*.log\n", true},
		{"has dir with slash", ".sectionview/\n", true},
		{"rooted", "/.sectionview/\n", true},
		{"commented out", "# .sectionview/\n", false},
		{"similar names", ".sectionview2/\nsectionview/\n", false},
		{"with whitespace", "  .sectionview/  \n", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := gitignoreCovers([]byte(tt.content), ".sectionview")
			if err != nil {
				t.Fatalf("gitignoreCovers() error = %v", err)
			}
			if got != tt.expected {
				t.Errorf("gitignoreCovers() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestEnsureIgnored(t *testing.T) {
	tests := []struct {
		name       string
		existing   string
		wantPrefix string
		wantCount  int
		wantNote   bool
	}{
		{"new file", "", "#", 1, true},
		{"existing with newline", "node_modules/\n", "node_modules/\n\n#", 1, true},
		{"existing without newline", "node_modules/", "node_modules/\n\n#", 1, true},
		{"already ignored", ".sectionview/\n", ".sectionview/", 1, false},
		{"ignored without slash", ".sectionview\n", ".sectionview", 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, ".gitignore")
			if tt.existing != "" {
				if err := os.WriteFile(path, []byte(tt.existing), 0644); err != nil {
					t.Fatal(err)
				}
			}

			if err := EnsureIgnored(dir, ".sectionview"); err != nil {
				t.Fatalf("EnsureIgnored() error = %v", err)
			}
			// Second call must be a no-op.
			if err := EnsureIgnored(dir, ".sectionview"); err != nil {
				t.Fatalf("EnsureIgnored() second call error = %v", err)
			}

			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			content := string(data)
			if !strings.HasPrefix(content, tt.wantPrefix) {
				t.Errorf("expected prefix %q, got:\n%s", tt.wantPrefix, content)
			}
			if got := strings.Count(content, ".sectionview"); got != tt.wantCount {
				t.Errorf("expected %d mention(s) of .sectionview, got %d:\n%s", tt.wantCount, got, content)
			}
			if got := strings.Contains(content, gitignoreComment); got != tt.wantNote {
				t.Errorf("comment present = %v, want %v", got, tt.wantNote)
			}
		})
	}
}

func TestEnsureIgnored_UsesCurrentDir(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	if err := EnsureIgnored("", ".sectionview"); err != nil {
		t.Fatalf("EnsureIgnored() error = %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), ".sectionview/") {
		t.Errorf("expected .sectionview/ in .gitignore, got:\n%s", data)
	}
}

func TestEnsureIgnored_EmptyDir(t *testing.T) {
	if err := EnsureIgnored(t.TempDir(), "/"); err == nil {
		t.Error("expected error for empty directory name")
	}
}

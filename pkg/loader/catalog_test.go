package loader

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vanderheijden86/sectionview/pkg/model"
)

const sampleCatalog = `title: Handbook
sections:
  - id: intro
    title: Introduction
    rows:
      - id: welcome
        title: Welcome
        body: "# Hi"
  - id: setup
    title: Setup
    kind: expandable
    rows:
      - id: install
        title: Install
        tags: [cli]
  - id: archive
    title: Archive
    kind: remote
`

func TestParseCatalog(t *testing.T) {
	c, err := ParseCatalog(strings.NewReader(sampleCatalog))
	if err != nil {
		t.Fatalf("ParseCatalog() error = %v", err)
	}
	if c.Title != "Handbook" {
		t.Errorf("title = %q", c.Title)
	}
	if len(c.Sections) != 3 {
		t.Fatalf("expected 3 sections, got %d", len(c.Sections))
	}
	if c.Sections[0].Kind != model.KindStatic {
		t.Errorf("missing kind should default to static, got %q", c.Sections[0].Kind)
	}
	if c.Sections[1].Rows[0].Tags[0] != "cli" {
		t.Errorf("tags not decoded: %+v", c.Sections[1].Rows[0])
	}
	if !c.Sections[2].Kind.NeedsDownload() {
		t.Error("archive should be a remote section")
	}
}

func TestParseCatalog_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{"unknown key", "title: x\nsectons: []\n", "decode catalog"},
		{"bad kind", "sections:\n  - id: a\n    title: A\n    kind: drawer\n", "invalid section kind"},
		{"duplicate id", "sections:\n  - id: a\n    title: A\n  - id: a\n    title: B\n", "duplicate section ID"},
		{"not yaml", "sections: [", "decode catalog"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCatalog(strings.NewReader(tt.input))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestParseCatalog_EmptyInput(t *testing.T) {
	c, err := ParseCatalog(strings.NewReader(""))
	if err != nil {
		t.Fatalf("empty catalog should load, got %v", err)
	}
	if len(c.Sections) != 0 {
		t.Errorf("expected no sections, got %d", len(c.Sections))
	}
}

func TestLoadCatalogAndHash(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	if err := os.WriteFile(path, []byte(sampleCatalog), 0644); err != nil {
		t.Fatal(err)
	}

	c, hash, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("LoadCatalog() error = %v", err)
	}
	if len(c.Sections) != 3 {
		t.Errorf("expected 3 sections, got %d", len(c.Sections))
	}
	if hash != ContentHash([]byte(sampleCatalog)) || len(hash) != 64 {
		t.Errorf("unexpected hash %q", hash)
	}

	if _, _, err := LoadCatalog(filepath.Join(dir, "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestFindCatalog(t *testing.T) {
	dir := t.TempDir()
	if _, err := FindCatalog(dir); !errors.Is(err, ErrNoCatalog) {
		t.Fatalf("expected ErrNoCatalog, got %v", err)
	}

	yml := filepath.Join(dir, "catalog.yml")
	if err := os.WriteFile(yml, []byte("sections: []\n"), 0644); err != nil {
		t.Fatal(err)
	}
	got, err := FindCatalog(dir)
	if err != nil || got != yml {
		t.Fatalf("FindCatalog() = %q, %v", got, err)
	}

	yaml := filepath.Join(dir, "catalog.yaml")
	if err := os.WriteFile(yaml, []byte("sections: []\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if got, _ := FindCatalog(dir); got != yaml {
		t.Errorf("catalog.yaml should win, got %q", got)
	}
}

package ui

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/vanderheijden86/sectionview/pkg/loader"
)

const watchedCatalog = `title: Watched
sections:
  - id: inbox
    title: Inbox
    kind: expandable
    rows:
      - id: r1
        title: First
`

func startWatcher(t *testing.T, content string) (string, chanSender, *CatalogWatcher) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	_, hash, err := loader.LoadCatalog(path)
	if err != nil {
		t.Fatalf("LoadCatalog() error = %v", err)
	}

	sender := make(chanSender, 4)
	w, err := NewCatalogWatcher(path, hash, sender, nil)
	if err != nil {
		t.Fatalf("NewCatalogWatcher() error = %v", err)
	}
	w.debounce = 20 * time.Millisecond
	if err := w.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(w.Stop)
	return path, sender, w
}

func watcherHash(w *CatalogWatcher) string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastHash
}

func TestCatalogWatcher_SendsChangedCatalog(t *testing.T) {
	path, sender, w := startWatcher(t, watchedCatalog)
	before := watcherHash(w)

	updated := watchedCatalog + "  - id: done\n    title: Done\n"
	if err := os.WriteFile(path, []byte(updated), 0644); err != nil {
		t.Fatal(err)
	}

	msg, ok := sender.wait(t).(CatalogChangedMsg)
	if !ok {
		t.Fatal("expected CatalogChangedMsg")
	}
	if len(msg.Catalog.Sections) != 2 || msg.Catalog.Sections[1].ID != "done" {
		t.Errorf("unexpected sections %+v", msg.Catalog.Sections)
	}
	if msg.Hash == before || watcherHash(w) != msg.Hash {
		t.Error("hash should be updated")
	}
}

func TestCatalogWatcher_IgnoresIdenticalContent(t *testing.T) {
	path, sender, _ := startWatcher(t, watchedCatalog)

	if err := os.WriteFile(path, []byte(watchedCatalog), 0644); err != nil {
		t.Fatal(err)
	}
	sender.none(t, 150*time.Millisecond)
}

func TestCatalogWatcher_SetLastHashSuppressesResend(t *testing.T) {
	path, sender, w := startWatcher(t, watchedCatalog)

	updated := watchedCatalog + "  - id: done\n    title: Done\n"
	w.SetLastHash(loader.ContentHash([]byte(updated)))
	if err := os.WriteFile(path, []byte(updated), 0644); err != nil {
		t.Fatal(err)
	}
	sender.none(t, 150*time.Millisecond)
}

func TestCatalogWatcher_ReportsInvalidCatalog(t *testing.T) {
	path, sender, w := startWatcher(t, watchedCatalog)
	before := watcherHash(w)

	if err := os.WriteFile(path, []byte("sections: ["), 0644); err != nil {
		t.Fatal(err)
	}

	msg, ok := sender.wait(t).(CatalogErrorMsg)
	if !ok || msg.Err == nil {
		t.Fatalf("expected CatalogErrorMsg, got %#v", msg)
	}
	if watcherHash(w) != before {
		t.Error("a bad catalog should not replace the last hash")
	}
}

func TestCatalogWatcher_IgnoresOtherFiles(t *testing.T) {
	path, sender, _ := startWatcher(t, watchedCatalog)

	other := filepath.Join(filepath.Dir(path), "notes.txt")
	if err := os.WriteFile(other, []byte("hello"), 0644); err != nil {
		t.Fatal(err)
	}
	sender.none(t, 150*time.Millisecond)
}

func TestHashPrefix(t *testing.T) {
	if got := hashPrefix("0123456789abcdef0123"); got != "0123456789abcdef" {
		t.Errorf("hashPrefix() = %q", got)
	}
	if got := hashPrefix("abc"); got != "abc" {
		t.Errorf("hashPrefix() = %q", got)
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestScanForRoots(t *testing.T) {
	root := t.TempDir()

	proj1 := filepath.Join(root, "project1")
	proj2 := filepath.Join(root, "subdir", "project2")
	plain := filepath.Join(root, "plain")

	for _, dir := range []string{
		filepath.Join(proj1, StateDirName),
		filepath.Join(proj2, StateDirName),
		plain,
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
	}

	results := ScanForRoots(root, 3)
	if len(results) != 2 {
		t.Fatalf("expected 2 projects, got %d: %v", len(results), results)
	}

	found := make(map[string]bool)
	for _, r := range results {
		found[r] = true
	}
	if !found[proj1] || !found[proj2] {
		t.Errorf("expected project1 and project2, got %v", results)
	}
}

func TestScanForRoots_DepthLimit(t *testing.T) {
	root := t.TempDir()

	deep := filepath.Join(root, "a", "b", "c", "d", "deep")
	shallow := filepath.Join(root, "shallow")
	for _, p := range []string{deep, shallow} {
		if err := os.MkdirAll(filepath.Join(p, StateDirName), 0o755); err != nil {
			t.Fatal(err)
		}
	}

	results := ScanForRoots(root, 2)
	if len(results) != 1 || results[0] != shallow {
		t.Fatalf("expected only %q at depth 2, got %v", shallow, results)
	}
}

func TestScanForRoots_SkipsHiddenDirs(t *testing.T) {
	root := t.TempDir()

	hidden := filepath.Join(root, ".hidden", "project")
	if err := os.MkdirAll(filepath.Join(hidden, StateDirName), 0o755); err != nil {
		t.Fatal(err)
	}

	if results := ScanForRoots(root, 3); len(results) != 0 {
		t.Errorf("expected hidden dir to be skipped, got %v", results)
	}
}

func TestScanForRoots_RootItself(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, StateDirName), 0o755); err != nil {
		t.Fatal(err)
	}
	results := ScanForRoots(root, 0)
	if len(results) != 1 || results[0] != root {
		t.Errorf("expected root itself, got %v", results)
	}
}

func TestFindRoot(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, StateDirName), 0o755); err != nil {
		t.Fatal(err)
	}
	sub := filepath.Join(root, "src", "pkg")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}

	found, ok := findRoot(sub)
	if !ok {
		t.Fatal("expected to find project root")
	}
	if found != root {
		t.Errorf("expected %q, got %q", root, found)
	}
}

func TestFindRoot_IgnoresStateFile(t *testing.T) {
	root := t.TempDir()
	// A regular file with the state dir's name is not a project marker.
	if err := os.WriteFile(filepath.Join(root, StateDirName), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if found, ok := findRoot(root); ok && found == root {
		t.Errorf("file should not mark %q as a project root", root)
	}
}

func TestDetectRoot(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, StateDirName), 0o755); err != nil {
		t.Fatal(err)
	}
	t.Chdir(root)

	found, ok := DetectRoot()
	if !ok {
		t.Fatal("expected DetectRoot to succeed")
	}
	// The temp dir may sit behind a symlink (macOS /var -> /private/var).
	want, _ := filepath.EvalSymlinks(root)
	got, _ := filepath.EvalSymlinks(found)
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

package config

import (
	"os"
	"path/filepath"
	"strings"
)

// StateDirName is the per-project directory holding config, catalog, row
// store, log and persisted expansion state.
const StateDirName = ".sectionview"

// DetectRoot finds the project root by walking up from the current
// directory looking for a .sectionview/ directory.
func DetectRoot() (string, bool) {
	dir, err := os.Getwd()
	if err != nil {
		return "", false
	}
	return findRoot(dir)
}

// findRoot walks up from dir looking for a .sectionview/ directory. It stops
// at the filesystem root or the user's home directory.
func findRoot(dir string) (string, bool) {
	home, _ := os.UserHomeDir()

	for {
		if isDir(filepath.Join(dir, StateDirName)) {
			return dir, true
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		if home != "" && dir == home {
			break
		}
		dir = parent
	}
	return "", false
}

// ScanForRoots looks below root, up to maxDepth levels deep, for directories
// that contain a .sectionview/ directory. It is used to suggest projects when
// sv is started outside of one.
func ScanForRoots(root string, maxDepth int) []string {
	if maxDepth <= 0 {
		maxDepth = 3
	}
	var results []string
	rootDepth := strings.Count(filepath.Clean(root), string(filepath.Separator))

	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return filepath.SkipDir
		}
		if !d.IsDir() {
			return nil
		}
		if strings.Count(filepath.Clean(path), string(filepath.Separator))-rootDepth > maxDepth {
			return filepath.SkipDir
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if isDir(filepath.Join(path, StateDirName)) {
			results = append(results, path)
			return filepath.SkipDir
		}
		return nil
	})

	return results
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// Package loader reads catalogs from disk and keeps the local state
// directory out of version control.
package loader

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const gitignoreComment = "# sectionview local state"

// EnsureIgnored makes sure the project's .gitignore covers dir (a directory
// name relative to the project root, e.g. ".sectionview"). The file is created
// when missing; an existing entry for dir in any of its usual spellings is
// left alone. An empty projectDir means the current directory.
func EnsureIgnored(projectDir, dir string) error {
	if projectDir == "" {
		var err error
		projectDir, err = os.Getwd()
		if err != nil {
			return err
		}
	}
	dir = strings.Trim(dir, "/")
	if dir == "" {
		return fmt.Errorf("ensure ignored: empty directory name")
	}

	path := filepath.Join(projectDir, ".gitignore")
	content, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	covered, err := gitignoreCovers(content, dir)
	if err != nil {
		return err
	}
	if covered {
		return nil
	}
	return appendIgnore(path, content, dir+"/")
}

// gitignoreCovers scans gitignore content for a line that ignores dir.
func gitignoreCovers(content []byte, dir string) (bool, error) {
	scanner := bufio.NewScanner(bytes.NewReader(content))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if coversDir(line, dir) {
			return true, nil
		}
	}
	return false, scanner.Err()
}

// coversDir reports whether a single gitignore pattern ignores dir.
func coversDir(line, dir string) bool {
	switch strings.TrimPrefix(line, "/") {
	case dir, dir + "/", dir + "/*", dir + "/**", dir + "/**/*":
		return true
	}
	return false
}

// appendIgnore appends pattern under a comment, keeping a blank line between
// it and any existing content.
func appendIgnore(path string, existing []byte, pattern string) error {
	var sb strings.Builder
	if len(existing) > 0 {
		if existing[len(existing)-1] != '\n' {
			sb.WriteByte('\n')
		}
		sb.WriteByte('\n')
	}
	sb.WriteString(gitignoreComment + "\n" + pattern + "\n")

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(sb.String()); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

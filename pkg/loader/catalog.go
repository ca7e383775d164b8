package loader

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/vanderheijden86/sectionview/pkg/model"
	"gopkg.in/yaml.v3"
)

// CatalogFileNames are tried in order when looking for a catalog in a
// directory.
var CatalogFileNames = []string{"catalog.yaml", "catalog.yml"}

// ErrNoCatalog is returned by FindCatalog when no catalog file exists.
var ErrNoCatalog = errors.New("no catalog file found")

// FindCatalog returns the first catalog file present in dir.
func FindCatalog(dir string) (string, error) {
	for _, name := range CatalogFileNames {
		path := filepath.Join(dir, name)
		info, err := os.Stat(path)
		if err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w in %s", ErrNoCatalog, dir)
}

// LoadCatalog reads, decodes and validates a YAML catalog. It also returns a
// content hash so callers can skip reloads when the file did not change.
func LoadCatalog(path string) (*model.Catalog, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("read catalog: %w", err)
	}
	catalog, err := ParseCatalog(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", path, err)
	}
	return catalog, ContentHash(data), nil
}

// ParseCatalog decodes a catalog from r. Unknown keys are rejected so typos
// in the file surface as errors instead of silently missing sections.
func ParseCatalog(r io.Reader) (*model.Catalog, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var catalog model.Catalog
	if err := dec.Decode(&catalog); err != nil {
		if errors.Is(err, io.EOF) {
			return &catalog, nil
		}
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if err := catalog.Validate(); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}
	for i := range catalog.Sections {
		if catalog.Sections[i].Kind == "" {
			catalog.Sections[i].Kind = model.KindStatic
		}
	}
	return &catalog, nil
}

// ContentHash returns the hex sha256 of data.
func ContentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

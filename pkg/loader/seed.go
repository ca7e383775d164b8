package loader

import (
	"fmt"
	"os"

	"github.com/vanderheijden86/sectionview/pkg/model"
	"gopkg.in/yaml.v3"
)

// SeedFile is the YAML layout accepted by "sv seed": rows keyed by the ID of
// the remote section they belong to.
type SeedFile struct {
	Sections map[string][]model.Row `yaml:"sections"`
}

// LoadSeed reads a seed file and validates every row in it.
func LoadSeed(path string) (map[string][]model.Row, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed: %w", err)
	}
	var seed SeedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("%s: decode seed: %w", path, err)
	}
	for id, rows := range seed.Sections {
		for i := range rows {
			if err := rows[i].Validate(); err != nil {
				return nil, fmt.Errorf("%s: section %s row %d: %w", path, id, i, err)
			}
		}
	}
	return seed.Sections, nil
}

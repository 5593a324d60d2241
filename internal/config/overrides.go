package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// overridesFile is the on-disk shape of the image override table.
type overridesFile struct {
	Images map[string]string `yaml:"images"`
}

// DefaultOverrides returns the built-in image override table. Keys are
// event names as they appear in the sheet; matching is exact after
// lowercasing and trimming.
func DefaultOverrides() map[string]string {
	return map[string]string{
		"na pista":      "/assets/na-pista.jpg",
		"beije":         "/assets/beije.jpg",
		"wav & friends": "/assets/wav.jpg",
		"wav & sunset":  "/assets/wav.jpg",
	}
}

// LoadOverrides reads the YAML image override table from path and merges
// it over the built-in defaults. A missing file yields just the
// defaults; a malformed file is an error.
func LoadOverrides(path string) (map[string]string, error) {
	merged := DefaultOverrides()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return merged, nil
		}
		return nil, fmt.Errorf("read overrides file: %w", err)
	}

	var f overridesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse overrides file: %w", err)
	}

	for name, url := range f.Images {
		merged[name] = url
	}
	return merged, nil
}

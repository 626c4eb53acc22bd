package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ManifestFilename is the descriptor filename inside each mountain directory.
const ManifestFilename = "mountain.yaml"

// Load reads and parses the manifest for a mountain under dir.
// Pure read, no side effects.
func Load(dir, mountainID string) (*Manifest, error) {
	path := filepath.Join(dir, mountainID, ManifestFilename)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrManifestMissing, path)
		}
		return nil, fmt.Errorf("%w: reading %s: %v", ErrManifestMissing, path, err)
	}

	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if m.Name == "" {
		m.Name = mountainID
	}
	return m, nil
}

// Parse parses manifest YAML and validates it.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrManifestParse, err)
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Package groundtruth supplies reference elevation gains for labeled tracks.
// Lookups are keyed by track filename; a zero gain means the reference is
// unknown and the track is excluded from accuracy scoring.
package groundtruth

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Lookup resolves a track filename to its reference elevation gain in
// metres. Implementations return 0 for unknown tracks.
type Lookup interface {
	GainM(filename string) uint32
}

// Map is an in-memory Lookup backed by a filename → gain map.
type Map map[string]uint32

// GainM implements Lookup.
func (m Map) GainM(filename string) uint32 {
	return m[filename]
}

// LoadFile reads a JSON object of {"filename": gain_m} pairs into a Map.
func LoadFile(path string) (Map, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("ground truth file must have .json extension, got %q", ext)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read ground truth file: %w", err)
	}

	var m Map
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse ground truth JSON: %w", err)
	}
	return m, nil
}

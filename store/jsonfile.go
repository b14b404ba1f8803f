package store

import (
	"encoding/json"
	"errors"
	"os"

	"github.com/luxfi/membership/membership"
)

// JSONFile is a Store backed by a single JSON file on disk, used by the
// cmd/membersim demo driver.
type JSONFile struct {
	path string
}

// NewJSONFile creates a JSONFile store rooted at path. The file need not
// exist yet; Load reports ok == false until the first Save.
func NewJSONFile(path string) *JSONFile {
	return &JSONFile{path: path}
}

// Save writes snap to the store's file as JSON, truncating any previous
// contents.
func (f *JSONFile) Save(snap membership.Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return membership.NewEncodingError(err)
	}
	return os.WriteFile(f.path, data, 0o600)
}

// Load reads the store's file and decodes it into a Snapshot. ok is false
// (with a nil error) if the file does not exist yet.
func (f *JSONFile) Load() (membership.Snapshot, bool, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return membership.Snapshot{}, false, nil
	}
	if err != nil {
		return membership.Snapshot{}, false, err
	}

	var snap membership.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return membership.Snapshot{}, false, err
	}
	if err := membership.CheckSnapshotDepth(snap); err != nil {
		return membership.Snapshot{}, false, err
	}
	return snap, true, nil
}

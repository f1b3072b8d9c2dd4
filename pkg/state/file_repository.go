package state

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
)

const stateFileName = "views.json"

// FileRepository implements Repository using a JSON file.
type FileRepository struct {
	dir string
}

// NewFileRepository creates a new FileRepository for the given directory.
func NewFileRepository(dir string) *FileRepository {
	return &FileRepository{dir: dir}
}

// Load retrieves the saved views from disk.
// Returns an empty state and nil error if no state file exists.
func (r *FileRepository) Load(ctx context.Context) (State, error) {
	data, err := os.ReadFile(r.Path())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return State{}, nil
		}
		return State{}, err
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return State{}, fmt.Errorf("%w: parse %s: %v", ErrCorrupt, r.Path(), err)
	}

	return state, nil
}

// Save persists the views atomically.
// Uses atomic write (write to temp file, then rename) to prevent corruption.
func (r *FileRepository) Save(ctx context.Context, state State) error {
	if err := os.MkdirAll(r.dir, 0o700); err != nil {
		return err
	}

	path := r.Path()
	tmp := path + ".tmp"

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}

	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}

	return os.Rename(tmp, path)
}

// Path returns the full path to the state file.
func (r *FileRepository) Path() string {
	return filepath.Join(r.dir, stateFileName)
}

package settings

import (
	"context"
	"fmt"
	"github.com/goccy/go-json"
	"os"
)

// FileStore reads a JSON array of project settings. The file is read again on every call so edits apply to the next run.
type FileStore struct {
	path string
}

var _ Store = &FileStore{}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (f *FileStore) EnabledProjects(_ context.Context) ([]ProjectSettings, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("unable to read project settings: %w", err)
	}

	var projects []ProjectSettings
	if err := json.Unmarshal(data, &projects); err != nil {
		return nil, fmt.Errorf("unable to parse project settings: %w", err)
	}

	return filterEnabled(projects), nil
}

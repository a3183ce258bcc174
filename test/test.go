package test

import (
	"github.com/goccy/go-json"
	"os"
	"path/filepath"
)

// LoadFixture reads a file relative to the directory of the package under test
func LoadFixture(relativePath string) ([]byte, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	return os.ReadFile(filepath.Join(wd, filepath.FromSlash(relativePath)))
}

func LoadJSONFixture(relativePath string, v interface{}) error {
	data, err := LoadFixture(relativePath)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

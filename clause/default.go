package clause

import (
	_ "embed"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

//go:embed clausulas.json
var defaultClauses []byte

// DefaultJSON returns the bundled example dictionary.
func DefaultJSON() []byte {
	return defaultClauses
}

// Default parses the bundled example dictionary.
func Default() Dictionary {
	d, err := Parse(defaultClauses, "json")
	if err != nil {
		panic("bundled clause dictionary is invalid: " + err.Error())
	}
	return d
}

// WriteDefault writes the bundled dictionary to path unless a file is
// already there. It reports whether it wrote the file.
func WriteDefault(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return false, err
		}
	}
	return true, os.WriteFile(path, defaultClauses, 0o644)
}

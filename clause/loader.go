package clause

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/editalgen/editalgen/caching"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

var (
	ErrNotFound   = errors.New("clause file not found")
	ErrMalformed  = errors.New("clause file is malformed")
	ErrIncomplete = errors.New("clause dictionary is incomplete")
)

// Parse decodes a dictionary. format is "json" or "yaml".
func Parse(data []byte, format string) (Dictionary, error) {
	d := Dictionary{}
	var err error
	switch strings.ToLower(format) {
	case "yaml", "yml":
		err = yaml.Unmarshal(data, (*map[string]any)(&d))
	default:
		err = json.Unmarshal(data, (*map[string]any)(&d))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return d, nil
}

// Load reads and parses the file at path, picking the decoder from the
// file extension.
func Load(path string) (Dictionary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, err
	}
	return Parse(data, strings.TrimPrefix(filepath.Ext(path), "."))
}

// Loader serves the dictionary from a file, re-parsing it whenever the
// file's size or modification time changes.
type Loader struct {
	path  string
	cache *caching.Cache
}

func NewLoader(path string, cache *caching.Cache) *Loader {
	if cache == nil {
		cache = caching.NewCache()
	}
	return &Loader{path: path, cache: cache}
}

func (l *Loader) Path() string {
	return l.path
}

// Get returns the current dictionary. On error the returned dictionary is
// empty but non-nil so lookups keep working.
func (l *Loader) Get() (Dictionary, error) {
	info, err := os.Stat(l.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Dictionary{}, fmt.Errorf("%w: %s", ErrNotFound, l.path)
		}
		return Dictionary{}, err
	}

	key := fmt.Sprintf("clause:%s:%d:%d", l.path, info.ModTime().UnixNano(), info.Size())
	if v, ok := l.cache.Get(key); ok {
		return v.(Dictionary), nil
	}

	d, err := Load(l.path)
	if err != nil {
		return Dictionary{}, err
	}
	l.cache.Set(key, d)
	return d, nil
}

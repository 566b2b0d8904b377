package app

import (
	"net/url"
	"os"
	"sync"

	"github.com/pkg/errors"
)

// FileLoader reads the file addressed by a URL.
type FileLoader func(u *url.URL) ([]byte, error)

var (
	loadersMu sync.RWMutex
	loaders   = map[string]FileLoader{
		"":     loadLocalFile,
		"file": loadLocalFile,
	}
)

// RegisterFileLoader makes LoadFile handle URLs with the given scheme. It
// panics if the scheme already has a loader.
func RegisterFileLoader(scheme string, loader FileLoader) {
	loadersMu.Lock()
	defer loadersMu.Unlock()

	if _, exists := loaders[scheme]; exists {
		panic("file loader already registered for scheme " + scheme)
	}
	loaders[scheme] = loader
}

// LoadFile reads fileURL with the loader registered for its scheme. Plain
// paths read from the local filesystem.
func LoadFile(fileURL string) ([]byte, error) {
	u, err := url.Parse(fileURL)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid file url %s", fileURL)
	}

	loadersMu.RLock()
	loader, ok := loaders[u.Scheme]
	loadersMu.RUnlock()
	if !ok {
		return nil, errors.Errorf("no file loader for scheme %q", u.Scheme)
	}

	return loader(u)
}

func loadLocalFile(u *url.URL) ([]byte, error) {
	b, err := os.ReadFile(u.Path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", u.Path)
	}
	return b, nil
}

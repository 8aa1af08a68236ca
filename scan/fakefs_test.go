package scan

import (
	"errors"
	"io"
	"path/filepath"
	"strings"
)

// fakeFS is an in-memory HostFileSystem for tests: Glob does a plain
// filepath.Match against the registered names (no real filesystem
// traversal), and Open hands back a fresh reader over the stored content.
type fakeFS struct {
	files map[string]string
}

func newFakeFS(files map[string]string) *fakeFS {
	return &fakeFS{files: files}
}

func (f *fakeFS) Glob(pattern string) ([]string, error) {
	var matches []string
	for name := range f.files {
		ok, err := filepath.Match(pattern, name)
		if err != nil {
			return nil, err
		}
		if ok || pattern == name {
			matches = append(matches, name)
		}
	}
	return matches, nil
}

func (f *fakeFS) Open(path string) (io.ReadCloser, error) {
	content, ok := f.files[path]
	if !ok {
		return nil, errors.New("fakefs: no such file: " + path)
	}
	return io.NopCloser(strings.NewReader(content)), nil
}

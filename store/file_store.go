package store

import (
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
)

// FileSystem implements a Store kept in a single directory in the file
// system. The directory is flat: every key is a file directly inside the
// root, and subdirectories are ignored. The root directory is created lazily
// on the first write, so pointing a FileSystem at a directory which does not
// exist yet is fine.
type FileSystem struct {
	root string
}

const (
	// the subdir files are written to before being renamed into place.
	scratchdir = ".scratch"
)

var (
	// make sure it implements the Store interface
	_ Store = &FileSystem{}
)

// NewFileSystem creates a new FileSystem store based at the given root path.
func NewFileSystem(root string) *FileSystem {
	return &FileSystem{root: root}
}

// List returns the names of the regular files directly inside the root.
// A missing root directory lists as empty.
func (s *FileSystem) List() ([]string, error) {
	entries, err := ioutil.ReadDir(s.root)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var result []string
	for _, e := range entries {
		if !e.Mode().IsRegular() {
			continue
		}
		result = append(result, e.Name())
	}
	return result, nil
}

// Open returns a reader for the given key along with its size.
func (s *FileSystem) Open(key string) (io.ReadCloser, int64, error) {
	if strings.Contains(key, "/") {
		return nil, 0, ErrKeyContainsSlash
	}
	f, err := os.Open(filepath.Join(s.root, key))
	if os.IsNotExist(err) {
		return nil, 0, ErrNotExist
	}
	if err != nil {
		return nil, 0, err
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, err
	}
	return f, fi.Size(), nil
}

// Create returns a writer saving data under the given key. The data is
// first written to a scratch file and moved into place when the writer is
// closed, so a partial write never clobbers previous content.
func (s *FileSystem) Create(key string) (io.WriteCloser, error) {
	if strings.Contains(key, "/") {
		return nil, ErrKeyContainsSlash
	}
	if err := os.MkdirAll(s.root, 0755); err != nil {
		return nil, err
	}
	scratch := filepath.Join(s.root, scratchdir)
	if err := os.MkdirAll(scratch, 0755); err != nil {
		return nil, err
	}
	w, err := ioutil.TempFile(scratch, key+"-")
	if err != nil {
		return nil, err
	}
	return &moveCloser{
		f:      w,
		source: w.Name(),
		target: filepath.Join(s.root, key),
	}, nil
}

// moveCloser tracks the scratch file so when it is closed, we can move it
// into the correct place. A write error poisons the writer: Close then
// discards the scratch file instead of renaming a partial one over the
// previous content.
type moveCloser struct {
	f      *os.File
	source string
	target string
	err    error // first write error seen
}

func (w *moveCloser) Write(p []byte) (int, error) {
	n, err := w.f.Write(p)
	if err != nil && w.err == nil {
		w.err = err
	}
	return n, err
}

func (w *moveCloser) Close() error {
	err := w.f.Close()
	if w.err != nil {
		os.Remove(w.source)
		return w.err
	}
	if err != nil {
		os.Remove(w.source)
		return err
	}
	return os.Rename(w.source, w.target)
}

// Delete the given key from the store. It is not an error if the key doesn't
// exist.
func (s *FileSystem) Delete(key string) error {
	if strings.Contains(key, "/") {
		return ErrKeyContainsSlash
	}
	err := os.Remove(filepath.Join(s.root, key))
	if err != nil && os.IsNotExist(err) {
		err = nil
	}
	return err
}

// Stat returns the size and modification time for the given key.
func (s *FileSystem) Stat(key string) (Info, error) {
	if strings.Contains(key, "/") {
		return Info{}, ErrKeyContainsSlash
	}
	fi, err := os.Stat(filepath.Join(s.root, key))
	if os.IsNotExist(err) {
		return Info{}, ErrNotExist
	}
	if err != nil {
		return Info{}, err
	}
	return Info{Size: fi.Size(), ModTime: fi.ModTime()}, nil
}

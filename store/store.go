/*
Package store provides the low level storage used by the shelf. A Store is a
flat namespace of keys, where each key names a sequence of bytes. There are
implementations backed by a directory in the file system, by memory (for
testing), and by an S3 bucket.

Keys are used as file names, so they should not contain a forward slash
character '/'. If you want the stored files to have a specific extension, add
it to the key.
*/
package store

import (
	"errors"
	"io"
	"time"

	pkgerrors "github.com/pkg/errors"
)

// A Store is a flat key space. Keys should not contain forward slashes.
type Store interface {
	// List returns the keys of every regular file in the store. A store
	// whose backing location does not exist yet lists as empty, not as an
	// error.
	List() ([]string, error)

	// Open returns a reader for the content of the given key along with
	// its size. A missing key returns ErrNotExist.
	Open(key string) (io.ReadCloser, int64, error)

	// Create returns a writer to save content under the given key. The
	// content is not visible under the key until the writer is closed.
	// Closing the writer replaces any previous content for the key.
	Create(key string) (io.WriteCloser, error)

	// Delete removes the key from the store. It is not an error to delete
	// a key which does not exist.
	Delete(key string) error

	// Stat returns the size and modification time for the given key.
	// A missing key returns ErrNotExist.
	Stat(key string) (Info, error)
}

// Info is the stat information kept for each key.
type Info struct {
	Size    int64
	ModTime time.Time
}

var (
	// ErrNotExist indicates the given key is not in the store.
	ErrNotExist = errors.New("key does not exist")

	// ErrKeyContainsSlash means the key provided contains a forward slash '/'
	ErrKeyContainsSlash = errors.New("key contains forward slash")
)

// IsNotExist reports whether err, at its root cause, is ErrNotExist.
func IsNotExist(err error) bool {
	return pkgerrors.Cause(err) == ErrNotExist
}

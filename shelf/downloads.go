package shelf

import (
	"sync"

	"github.com/libshelf/shelf/store"
)

// downloadsKey is the name of the file the counters are kept in.
const downloadsKey = "downloads.json"

// A DownloadCounter keeps a per-filename download count in a single JSON
// file. Counts only ever go up; deleting a book does not reset its count.
type DownloadCounter struct {
	js store.JSONStore
	m  sync.Mutex // serializes read-modify-write cycles
}

// NewDownloadCounter returns a DownloadCounter persisting into the given
// store.
func NewDownloadCounter(s store.Store) *DownloadCounter {
	return &DownloadCounter{js: store.NewJSON(s)}
}

// All returns the full filename to count mapping. A store without a counter
// file yet loads as an empty mapping.
func (dc *DownloadCounter) All() (map[string]int, error) {
	counts := make(map[string]int)
	err := dc.js.Open(downloadsKey, &counts)
	if store.IsNotExist(err) {
		return counts, nil
	}
	return counts, err
}

// Increment adds one to the count for the given filename, creating the entry
// at 1 if it is the first download.
func (dc *DownloadCounter) Increment(filename string) error {
	dc.m.Lock()
	defer dc.m.Unlock()
	counts, err := dc.All()
	if err != nil {
		return err
	}
	counts[filename]++
	return dc.js.Save(downloadsKey, counts)
}

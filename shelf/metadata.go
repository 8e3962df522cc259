/*
Package shelf implements the stores making up a book shelf: the book and
cover files themselves, the metadata records, the download counters, and the
action log. The JSON backed stores are deliberately simple: each one is a
single file which is read, modified, and written back whole on every change.
A mutex per store serializes writers within the process.
*/
package shelf

import (
	"sync"

	"github.com/libshelf/shelf/store"
)

// Placeholder values filled into a Record when the uploader left the field
// blank.
const (
	PlaceholderAuthor = "unknown"
	PlaceholderTopic  = "uncategorized"
)

// metadataKey is the name of the file the metadata mapping is kept in.
const metadataKey = "books.json"

// A Record holds the descriptive metadata for one book file. Records are
// keyed by the book's stored filename. Cover is the cover image filename,
// empty (and omitted from the JSON) when the book has none.
type Record struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	Topic  string `json:"topic"`
	Cover  string `json:"cover,omitempty"`
}

// NewRecord builds a Record for the given stored filename, filling any blank
// field with its default: the filename stem for the title, and placeholder
// strings for the author and topic.
func NewRecord(filename, title, author, topic, cover string) Record {
	if title == "" {
		title = Stem(filename)
	}
	if author == "" {
		author = PlaceholderAuthor
	}
	if topic == "" {
		topic = PlaceholderTopic
	}
	return Record{Title: title, Author: author, Topic: topic, Cover: cover}
}

// A MetadataStore keeps the mapping from book filename to Record in a single
// JSON file. The whole mapping is loaded on every read and rewritten on
// every update. Records are never removed: deleting a book leaves its record
// behind (the catalog iterates files, not records, so stale records never
// surface).
type MetadataStore struct {
	js store.JSONStore
	m  sync.Mutex // serializes read-modify-write cycles
}

// NewMetadataStore returns a MetadataStore persisting into the given store.
func NewMetadataStore(s store.Store) *MetadataStore {
	return &MetadataStore{js: store.NewJSON(s)}
}

// LoadAll returns the full filename to Record mapping. A store without a
// metadata file yet loads as an empty mapping. Malformed JSON is an error.
func (ms *MetadataStore) LoadAll() (map[string]Record, error) {
	all := make(map[string]Record)
	err := ms.js.Open(metadataKey, &all)
	if store.IsNotExist(err) {
		return all, nil
	}
	return all, err
}

// Upsert sets the record for the given filename, creating or overwriting it,
// and writes the mapping back.
func (ms *MetadataStore) Upsert(filename string, rec Record) error {
	ms.m.Lock()
	defer ms.m.Unlock()
	all, err := ms.LoadAll()
	if err != nil {
		return err
	}
	all[filename] = rec
	return ms.js.Save(metadataKey, all)
}

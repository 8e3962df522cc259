package store

import (
	"bytes"
	"io"
	"io/ioutil"
	"sync"
	"time"
)

// Memory implements a simple in-memory version of a store. It is intended
// mainly for testing.
type Memory struct {
	m     sync.RWMutex
	store map[string]*memEntry
	now   func() time.Time
}

type memEntry struct {
	b       []byte
	modtime time.Time
}

var (
	// ensure Memory satisfies the Store interface
	_ Store = &Memory{}
)

// NewMemory returns a new, empty memory store.
func NewMemory() *Memory {
	return &Memory{
		store: make(map[string]*memEntry),
		now:   time.Now,
	}
}

// List returns the keys of everything in the store, in no particular order.
func (ms *Memory) List() ([]string, error) {
	ms.m.RLock()
	defer ms.m.RUnlock()
	var result []string
	for k := range ms.store {
		result = append(result, k)
	}
	return result, nil
}

// Open returns a reader over the content of the given key.
func (ms *Memory) Open(key string) (io.ReadCloser, int64, error) {
	ms.m.RLock()
	v, ok := ms.store[key]
	ms.m.RUnlock()
	if !ok {
		return nil, 0, ErrNotExist
	}
	return ioutil.NopCloser(bytes.NewReader(v.b)), int64(len(v.b)), nil
}

// Create makes a new entry in the store, and returns a writer to save data
// into it. The entry becomes visible when the writer is closed.
func (ms *Memory) Create(key string) (io.WriteCloser, error) {
	return &memWriter{parent: ms, key: key}, nil
}

type memWriter struct {
	parent *Memory
	key    string
	buf    bytes.Buffer
}

func (w *memWriter) Write(p []byte) (int, error) {
	return w.buf.Write(p)
}

func (w *memWriter) Close() error {
	w.parent.m.Lock()
	w.parent.store[w.key] = &memEntry{
		b:       w.buf.Bytes(),
		modtime: w.parent.now(),
	}
	w.parent.m.Unlock()
	return nil
}

// Delete the given key from the store. It is not an error if the item does
// not exist in the store.
func (ms *Memory) Delete(key string) error {
	ms.m.Lock()
	delete(ms.store, key)
	ms.m.Unlock()
	return nil
}

// Stat returns the size and modification time for the given key.
func (ms *Memory) Stat(key string) (Info, error) {
	ms.m.RLock()
	v, ok := ms.store[key]
	ms.m.RUnlock()
	if !ok {
		return Info{}, ErrNotExist
	}
	return Info{Size: int64(len(v.b)), ModTime: v.modtime}, nil
}

// SetNow replaces the clock used to assign modification times. It is
// intended for tests which need deterministic mtime ordering.
func (ms *Memory) SetNow(now func() time.Time) {
	ms.m.Lock()
	ms.now = now
	ms.m.Unlock()
}

// Dump writes a listing of the contents of the store to the given writer.
// This is intended for testing and debugging.
func (ms *Memory) Dump(w io.Writer) {
	ms.m.RLock()
	for k, v := range ms.store {
		s := v.b
		if len(s) > 300 {
			s = s[:50]
		}
		io.WriteString(w, k+": "+string(s)+"\n")
	}
	ms.m.RUnlock()
}

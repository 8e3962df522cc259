package shelf

import (
	"sync"

	"github.com/facebookgo/clock"

	"github.com/libshelf/shelf/store"
)

const (
	// logKey is the name of the file the log is kept in.
	logKey = "log.json"

	// DefaultMaxLogEntries is how many entries the log keeps before the
	// oldest are dropped.
	DefaultMaxLogEntries = 500

	// timestampLayout is the format log timestamps are recorded in,
	// local time at second precision.
	timestampLayout = "2006-01-02 15:04:05"
)

// A LogEntry records one action taken against the shelf.
type LogEntry struct {
	Timestamp string `json:"timestamp"`
	Action    string `json:"action"`
	Details   string `json:"details"`
}

// An ActionLog is an append-only, newest-first list of timestamped actions,
// kept in a single JSON file and capped at MaxEntries. The Clock is
// swappable so tests can pin timestamps.
type ActionLog struct {
	js         store.JSONStore
	m          sync.Mutex // serializes read-modify-write cycles
	Clock      clock.Clock
	MaxEntries int
}

// NewActionLog returns an ActionLog persisting into the given store, using
// the wall clock and the default entry cap.
func NewActionLog(s store.Store) *ActionLog {
	return &ActionLog{
		js:         store.NewJSON(s),
		Clock:      clock.New(),
		MaxEntries: DefaultMaxLogEntries,
	}
}

// Append inserts a new entry at the front of the log and truncates the log
// to MaxEntries before writing it back.
func (al *ActionLog) Append(action, details string) error {
	al.m.Lock()
	defer al.m.Unlock()
	entries, err := al.load()
	if err != nil {
		return err
	}
	entry := LogEntry{
		Timestamp: al.Clock.Now().Format(timestampLayout),
		Action:    action,
		Details:   details,
	}
	entries = append([]LogEntry{entry}, entries...)
	if len(entries) > al.MaxEntries {
		entries = entries[:al.MaxEntries]
	}
	return al.js.Save(logKey, entries)
}

// Recent returns up to limit of the most recent entries, newest first.
func (al *ActionLog) Recent(limit int) ([]LogEntry, error) {
	entries, err := al.load()
	if err != nil {
		return nil, err
	}
	if limit >= 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// load reads the whole log. A store without a log file yet loads as empty.
func (al *ActionLog) load() ([]LogEntry, error) {
	var entries []LogEntry
	err := al.js.Open(logKey, &entries)
	if store.IsNotExist(err) {
		return nil, nil
	}
	return entries, err
}

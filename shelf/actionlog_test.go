package shelf

import (
	"fmt"
	"testing"
	"time"

	"github.com/facebookgo/clock"

	"github.com/libshelf/shelf/store"
)

func TestActionLogTimestampAndOrder(t *testing.T) {
	mock := clock.NewMock()
	// the mock clock starts at the zero time; move somewhere recognizable
	mock.Add(time.Date(2024, 5, 17, 9, 30, 45, 0, time.UTC).Sub(mock.Now()))

	al := NewActionLog(store.NewMemory())
	al.Clock = mock
	want := mock.Now().Format("2006-01-02 15:04:05")

	al.Append("add", "book a.pdf was added")
	mock.Add(time.Minute)
	al.Append("download", "book a.pdf was downloaded")

	entries, err := al.Recent(100)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, expected 2", len(entries))
	}
	// newest first
	if entries[0].Action != "download" || entries[1].Action != "add" {
		t.Errorf("got order %s, %s; expected download, add", entries[0].Action, entries[1].Action)
	}
	if entries[1].Timestamp != want {
		t.Errorf("got timestamp %q, expected %q", entries[1].Timestamp, want)
	}
}

func TestActionLogCap(t *testing.T) {
	al := NewActionLog(store.NewMemory())
	al.MaxEntries = 500

	for i := 0; i < 501; i++ {
		err := al.Append("add", fmt.Sprintf("entry %d", i))
		if err != nil {
			t.Fatal(err)
		}
	}

	entries, err := al.Recent(-1)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 500 {
		t.Fatalf("got %d entries, expected 500", len(entries))
	}
	// the newest entry is at index 0 and the oldest was evicted
	if entries[0].Details != "entry 500" {
		t.Errorf("got %q at the front, expected %q", entries[0].Details, "entry 500")
	}
	if entries[len(entries)-1].Details != "entry 1" {
		t.Errorf("got %q at the back, expected %q", entries[len(entries)-1].Details, "entry 1")
	}
}

func TestActionLogRecentLimit(t *testing.T) {
	al := NewActionLog(store.NewMemory())
	for i := 0; i < 10; i++ {
		al.Append("add", "x")
	}
	entries, err := al.Recent(3)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, expected 3", len(entries))
	}
}

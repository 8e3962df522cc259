package shelf

import (
	"testing"

	"github.com/libshelf/shelf/store"
)

func TestDownloadCounterIncrement(t *testing.T) {
	dc := NewDownloadCounter(store.NewMemory())

	counts, err := dc.All()
	if err != nil {
		t.Fatalf("received %v, expected nil", err)
	}
	if len(counts) != 0 {
		t.Fatalf("received %v, expected empty mapping", counts)
	}

	const k = 7
	for i := 0; i < k; i++ {
		if err = dc.Increment("book.pdf"); err != nil {
			t.Fatal(err)
		}
	}
	dc.Increment("other.pdf")

	counts, err = dc.All()
	if err != nil {
		t.Fatal(err)
	}
	if counts["book.pdf"] != k {
		t.Errorf("got %d, expected %d", counts["book.pdf"], k)
	}
	if counts["other.pdf"] != 1 {
		t.Errorf("got %d, expected 1", counts["other.pdf"])
	}
}

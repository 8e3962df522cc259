package shelf

import (
	"io/ioutil"
	"strings"
	"testing"

	"github.com/libshelf/shelf/store"
)

func newTestLibrary() (*Library, *store.Memory, *store.Memory, *store.Memory) {
	books := store.NewMemory()
	covers := store.NewMemory()
	state := store.NewMemory()
	lib := &Library{
		Books:     NewBookStore(books, covers),
		Metadata:  NewMetadataStore(state),
		Downloads: NewDownloadCounter(state),
		Log:       NewActionLog(state),
	}
	return lib, books, covers, state
}

func payload(name, data string) FilePayload {
	return FilePayload{Name: name, Size: int64(len(data)), R: strings.NewReader(data)}
}

func TestAddBookWithCover(t *testing.T) {
	lib, books, covers, _ := newTestLibrary()

	cover := payload("book.jpg", "imagebytes")
	result, err := lib.Add(payload("book.pdf", "pdfbytes"), &cover, "T", "", "")
	if err != nil {
		t.Fatalf("received %v, expected nil", err)
	}
	if result.Filename != "book.pdf" {
		t.Errorf("stored as %q, expected book.pdf", result.Filename)
	}
	if result.Cover != "book.jpg" {
		t.Errorf("cover stored as %q, expected book.jpg", result.Cover)
	}
	if result.Warning != "" {
		t.Errorf("unexpected warning %q", result.Warning)
	}

	if _, err = books.Stat("book.pdf"); err != nil {
		t.Error("book not in store:", err)
	}
	if _, err = covers.Stat("book.jpg"); err != nil {
		t.Error("cover not in store:", err)
	}

	all, err := lib.Metadata.LoadAll()
	if err != nil {
		t.Fatal(err)
	}
	want := Record{Title: "T", Author: PlaceholderAuthor, Topic: PlaceholderTopic, Cover: "book.jpg"}
	if all["book.pdf"] != want {
		t.Errorf("metadata %#v, expected %#v", all["book.pdf"], want)
	}

	entries, err := lib.Log.Recent(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) == 0 || entries[0].Action != "add" {
		t.Errorf("expected an add entry at the front of the log, got %#v", entries)
	}
}

func TestAddDeduplicatesCollisions(t *testing.T) {
	lib, _, _, _ := newTestLibrary()

	first, err := lib.Add(payload("book.pdf", "one"), nil, "", "", "")
	if err != nil {
		t.Fatal(err)
	}
	cover := payload("anything.png", "img")
	second, err := lib.Add(payload("book.pdf", "two"), &cover, "", "", "")
	if err != nil {
		t.Fatal(err)
	}
	if first.Filename != "book.pdf" || second.Filename != "book (1).pdf" {
		t.Errorf("stored as %q then %q, expected book.pdf then book (1).pdf",
			first.Filename, second.Filename)
	}
	if second.Cover != "book (1).png" {
		t.Errorf("cover stored as %q, expected book (1).png", second.Cover)
	}

	all, _ := lib.Metadata.LoadAll()
	if _, ok := all["book (1).pdf"]; !ok {
		t.Error("metadata keyed by the original name, expected the deduplicated name")
	}
}

func TestAddRejections(t *testing.T) {
	var table = []struct {
		name string
		book FilePayload
		err  error
	}{
		{"missing file", FilePayload{}, ErrNoBook},
		{"empty name", FilePayload{Name: "", Size: 1, R: strings.NewReader("x")}, ErrNoBook},
		{"epub", payload("book.epub", "x"), ErrBookFormat},
		{"no extension", payload("book", "x"), ErrBookFormat},
		{"oversize", FilePayload{Name: "big.pdf", Size: DefaultMaxUploadSize + 1, R: strings.NewReader("x")}, ErrBookTooLarge},
	}
	for _, test := range table {
		lib, books, _, state := newTestLibrary()
		_, err := lib.Add(test.book, nil, "", "", "")
		if err != test.err {
			t.Errorf("%s: received %v, expected %v", test.name, err, test.err)
		}
		if !IsValidation(err) {
			t.Errorf("%s: expected a validation error", test.name)
		}
		// nothing was written: no file, no metadata, no log entry
		if keys, _ := books.List(); len(keys) != 0 {
			t.Errorf("%s: book store not empty: %v", test.name, keys)
		}
		if keys, _ := state.List(); len(keys) != 0 {
			t.Errorf("%s: state store not empty: %v", test.name, keys)
		}
	}
}

func TestAddUppercaseExtension(t *testing.T) {
	lib, _, _, _ := newTestLibrary()
	result, err := lib.Add(payload("BOOK.PDF", "x"), nil, "", "", "")
	if err != nil {
		t.Fatalf("received %v, expected nil", err)
	}
	if result.Filename != "BOOK.PDF" {
		t.Errorf("stored as %q, expected BOOK.PDF", result.Filename)
	}
}

func TestAddBadCoverIsSkipped(t *testing.T) {
	lib, books, covers, _ := newTestLibrary()

	cover := payload("cover.gif", "img")
	result, err := lib.Add(payload("book.pdf", "x"), &cover, "", "", "")
	if err != nil {
		t.Fatalf("received %v, expected nil", err)
	}
	if result.Warning == "" {
		t.Error("expected a warning for the skipped cover")
	}
	if result.Cover != "" {
		t.Errorf("cover stored as %q, expected none", result.Cover)
	}
	if _, err = books.Stat("book.pdf"); err != nil {
		t.Error("book should still have been stored:", err)
	}
	if keys, _ := covers.List(); len(keys) != 0 {
		t.Errorf("cover store not empty: %v", keys)
	}

	all, _ := lib.Metadata.LoadAll()
	if all["book.pdf"].Cover != "" {
		t.Errorf("metadata cover %q, expected none", all["book.pdf"].Cover)
	}
}

func TestRemoveKeepsMetadataAndCounts(t *testing.T) {
	lib, books, covers, _ := newTestLibrary()

	cover := payload("book.jpg", "img")
	lib.Add(payload("book.pdf", "x"), &cover, "T", "", "")
	rc, _, err := lib.OpenDownload("book.pdf")
	if err != nil {
		t.Fatal(err)
	}
	rc.Close()

	if err = lib.Remove("book.pdf"); err != nil {
		t.Fatal(err)
	}
	if _, err = books.Stat("book.pdf"); err != store.ErrNotExist {
		t.Error("book still on disk after remove")
	}
	if _, err = covers.Stat("book.jpg"); err != store.ErrNotExist {
		t.Error("cover still on disk after remove")
	}

	// the metadata record and download count deliberately survive
	all, _ := lib.Metadata.LoadAll()
	if _, ok := all["book.pdf"]; !ok {
		t.Error("metadata entry removed, expected it to be kept")
	}
	counts, _ := lib.Downloads.All()
	if counts["book.pdf"] != 1 {
		t.Error("download count removed, expected it to be kept")
	}

	entries, _ := lib.Log.Recent(1)
	if len(entries) != 1 || entries[0].Action != "delete" {
		t.Errorf("expected a delete entry at the front of the log, got %#v", entries)
	}

	// removing again is not an error
	if err = lib.Remove("book.pdf"); err != nil {
		t.Fatal(err)
	}
}

func TestOpenDownload(t *testing.T) {
	lib, _, _, _ := newTestLibrary()
	lib.Add(payload("book.pdf", "pdfbytes"), nil, "", "", "")

	if _, _, err := lib.OpenDownload("missing.pdf"); err != store.ErrNotExist {
		t.Fatalf("received %v, expected ErrNotExist", err)
	}
	counts, _ := lib.Downloads.All()
	if len(counts) != 0 {
		t.Error("a failed download must not be counted")
	}

	for i := 1; i <= 3; i++ {
		rc, size, err := lib.OpenDownload("book.pdf")
		if err != nil {
			t.Fatal(err)
		}
		body, _ := ioutil.ReadAll(rc)
		rc.Close()
		if string(body) != "pdfbytes" || size != int64(len("pdfbytes")) {
			t.Errorf("read %q (%d bytes), expected pdfbytes", string(body), size)
		}
		counts, _ = lib.Downloads.All()
		if counts["book.pdf"] != i {
			t.Errorf("count %d after %d downloads", counts["book.pdf"], i)
		}
	}

	entries, _ := lib.Log.Recent(1)
	if entries[0].Action != "download" {
		t.Errorf("expected a download entry at the front of the log, got %#v", entries[0])
	}
}

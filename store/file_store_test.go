package store

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func TestFileSystemMissingRoot(t *testing.T) {
	dir, err := ioutil.TempDir("", "store")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	fs := NewFileSystem(filepath.Join(dir, "does-not-exist"))
	keys, err := fs.List()
	if err != nil {
		t.Fatalf("received %v, expected nil", err)
	}
	if len(keys) > 0 {
		t.Fatalf("received %v, expected empty list", keys)
	}
	_, err = fs.Stat("anything")
	if err != ErrNotExist {
		t.Fatalf("received %v, expected ErrNotExist", err)
	}
	// deleting from a missing root is not an error
	if err = fs.Delete("anything"); err != nil {
		t.Fatalf("received %v, expected nil", err)
	}
}

func TestFileSystemRoundTrip(t *testing.T) {
	dir, err := ioutil.TempDir("", "store")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	fs := NewFileSystem(dir)

	var table = []struct {
		key  string
		data string
	}{
		{"a.pdf", "hello"},
		{"b.pdf", "world"},
		{"name with spaces (1).pdf", "spaces"},
	}
	for _, test := range table {
		w, err := fs.Create(test.key)
		if err != nil {
			t.Fatalf("%s: %v", test.key, err)
		}
		w.Write([]byte(test.data))
		if err = w.Close(); err != nil {
			t.Fatalf("%s: %v", test.key, err)
		}
	}
	for _, test := range table {
		r, size, err := fs.Open(test.key)
		if err != nil {
			t.Fatalf("%s: %v", test.key, err)
		}
		body, _ := ioutil.ReadAll(r)
		r.Close()
		if string(body) != test.data {
			t.Errorf("%s: read %#v, expected %#v", test.key, string(body), test.data)
		}
		if size != int64(len(test.data)) {
			t.Errorf("%s: size %d, expected %d", test.key, size, len(test.data))
		}
		info, err := fs.Stat(test.key)
		if err != nil {
			t.Fatalf("%s: %v", test.key, err)
		}
		if info.Size != int64(len(test.data)) {
			t.Errorf("%s: stat size %d, expected %d", test.key, info.Size, len(test.data))
		}
	}

	keys, err := fs.List()
	if err != nil {
		t.Fatal(err)
	}
	sort.Strings(keys)
	if len(keys) != len(table) {
		t.Fatalf("listed %v, expected %d keys", keys, len(table))
	}

	// replacing content is allowed
	w, _ := fs.Create("a.pdf")
	w.Write([]byte("replaced"))
	w.Close()
	r, _, _ := fs.Open("a.pdf")
	body, _ := ioutil.ReadAll(r)
	r.Close()
	if string(body) != "replaced" {
		t.Errorf("read %#v, expected %#v", string(body), "replaced")
	}

	// delete, then a second delete is still fine
	if err = fs.Delete("a.pdf"); err != nil {
		t.Fatal(err)
	}
	if err = fs.Delete("a.pdf"); err != nil {
		t.Fatal(err)
	}
	if _, _, err = fs.Open("a.pdf"); err != ErrNotExist {
		t.Fatalf("received %v, expected ErrNotExist", err)
	}
}

func TestFileSystemWriteErrorKeepsPrevious(t *testing.T) {
	dir, err := ioutil.TempDir("", "store")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	fs := NewFileSystem(dir)

	w, _ := fs.Create("state.json")
	w.Write([]byte("good"))
	if err = w.Close(); err != nil {
		t.Fatal(err)
	}

	// a scratch file opened read-only rejects every write
	scratch := filepath.Join(dir, "scratch-file")
	if err = ioutil.WriteFile(scratch, nil, 0644); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(scratch)
	if err != nil {
		t.Fatal(err)
	}
	mc := &moveCloser{f: f, source: scratch, target: filepath.Join(dir, "state.json")}
	if _, err = mc.Write([]byte("partial")); err == nil {
		t.Fatal("received nil, expected a write error")
	}
	if err = mc.Close(); err == nil {
		t.Fatal("received nil, expected Close to report the write error")
	}

	body, err := ioutil.ReadFile(filepath.Join(dir, "state.json"))
	if err != nil {
		t.Fatal(err)
	}
	if string(body) != "good" {
		t.Errorf("read %#v, expected the previous content", string(body))
	}
	if _, err = os.Stat(scratch); !os.IsNotExist(err) {
		t.Error("scratch file was not removed after the failed write")
	}
}

func TestFileSystemIgnoresSubdirs(t *testing.T) {
	dir, err := ioutil.TempDir("", "store")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	os.MkdirAll(filepath.Join(dir, "subdir"), 0755)
	ioutil.WriteFile(filepath.Join(dir, "only.pdf"), []byte("x"), 0644)

	fs := NewFileSystem(dir)
	keys, err := fs.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 1 || keys[0] != "only.pdf" {
		t.Fatalf("listed %v, expected [only.pdf]", keys)
	}
}

func TestFileSystemRejectsSlashes(t *testing.T) {
	fs := NewFileSystem("unused")
	if _, err := fs.Create("a/b"); err != ErrKeyContainsSlash {
		t.Fatalf("received %v, expected ErrKeyContainsSlash", err)
	}
	if _, _, err := fs.Open("../escape"); err != ErrKeyContainsSlash {
		t.Fatalf("received %v, expected ErrKeyContainsSlash", err)
	}
}

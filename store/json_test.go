package store

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestJSONRoundTrip(t *testing.T) {
	js := NewJSON(NewMemory())

	in := map[string]int{"book.pdf": 3, "другая книга.pdf": 1}
	if err := js.Save("downloads.json", in); err != nil {
		t.Fatalf("received %v, expected nil", err)
	}
	var out map[string]int
	if err := js.Open("downloads.json", &out); err != nil {
		t.Fatalf("received %v, expected nil", err)
	}
	if len(out) != len(in) {
		t.Fatalf("read %v, expected %v", out, in)
	}
	for k, v := range in {
		if out[k] != v {
			t.Errorf("key %s: read %d, expected %d", k, out[k], v)
		}
	}
}

func TestJSONFormatting(t *testing.T) {
	mem := NewMemory()
	js := NewJSON(mem)
	err := js.Save("books.json", map[string]string{"ключ": "<значение>"})
	if err != nil {
		t.Fatal(err)
	}
	r, _, err := mem.Open("books.json")
	if err != nil {
		t.Fatal(err)
	}
	body, _ := ioutil.ReadAll(r)
	r.Close()
	text := string(body)
	if !strings.Contains(text, "\n    \"") {
		t.Errorf("expected four space indent, got %#v", text)
	}
	if !strings.Contains(text, "ключ") || !strings.Contains(text, "<значение>") {
		t.Errorf("expected non-ASCII and HTML characters preserved, got %#v", text)
	}
}

func TestJSONFailedSaveKeepsPrevious(t *testing.T) {
	dir, err := ioutil.TempDir("", "store")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	js := NewJSON(NewFileSystem(dir))

	if err := js.Save("state.json", map[string]int{"a": 1}); err != nil {
		t.Fatalf("received %v, expected nil", err)
	}

	// channels cannot be marshaled, so this save must fail
	err = js.Save("state.json", map[string]interface{}{"c": make(chan int)})
	if err == nil {
		t.Fatal("received nil, expected a marshal error")
	}

	body, err := ioutil.ReadFile(filepath.Join(dir, "state.json"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(body), `"a": 1`) {
		t.Fatalf("previous content destroyed by failed save, file now %#v", string(body))
	}
	var out map[string]int
	if err := js.Open("state.json", &out); err != nil {
		t.Fatalf("received %v, expected nil", err)
	}
	if out["a"] != 1 {
		t.Fatalf("read %v, expected the previous value", out)
	}
}

func TestJSONMissingAndMalformed(t *testing.T) {
	mem := NewMemory()
	js := NewJSON(mem)

	var v map[string]int
	if err := js.Open("absent.json", &v); err != ErrNotExist {
		t.Fatalf("received %v, expected ErrNotExist", err)
	}

	w, _ := mem.Create("bad.json")
	w.Write([]byte("{not json"))
	w.Close()
	err := js.Open("bad.json", &v)
	if err == nil {
		t.Fatal("received nil, expected a parse error")
	}
	if IsNotExist(err) {
		t.Fatal("malformed content must not be reported as missing")
	}
}

package shelf

import (
	"fmt"
	"io"
	"strings"

	"github.com/libshelf/shelf/store"
)

// CoverExtensions are the cover image extensions probed when resolving a
// cover by naming convention. The order is the resolution priority.
var CoverExtensions = []string{".jpg", ".jpeg", ".png"}

// A BookStore holds the book files and their cover images. A cover belongs
// to a book purely by naming convention: its name is the book's stem plus
// one of CoverExtensions.
type BookStore struct {
	Books  store.Store
	Covers store.Store
}

// NewBookStore returns a BookStore over the two given stores.
func NewBookStore(books, covers store.Store) *BookStore {
	return &BookStore{Books: books, Covers: covers}
}

// Stem returns the filename with its final extension removed.
// "a.b.pdf" becomes "a.b"; a name without a dot is returned unchanged.
func Stem(filename string) string {
	i := strings.LastIndex(filename, ".")
	if i < 0 {
		return filename
	}
	return filename[:i]
}

// ext returns the final extension including the dot, or "".
func ext(filename string) string {
	i := strings.LastIndex(filename, ".")
	if i < 0 {
		return ""
	}
	return filename[i:]
}

// List returns the filenames of every book. An empty shelf (including a
// books directory which does not exist yet) lists as empty.
func (b *BookStore) List() ([]string, error) {
	return b.Books.List()
}

// Stat returns the size and modification time of the given book.
func (b *BookStore) Stat(filename string) (store.Info, error) {
	return b.Books.Stat(filename)
}

// Open returns a reader over the book's content along with its size.
func (b *BookStore) Open(filename string) (io.ReadCloser, int64, error) {
	return b.Books.Open(filename)
}

// ResolveCover probes the cover store for the book's stem with each cover
// extension in priority order, and returns the first cover filename found,
// or "" when the book has no cover.
func (b *BookStore) ResolveCover(filename string) string {
	stem := Stem(filename)
	for _, e := range CoverExtensions {
		name := stem + e
		if _, err := b.Covers.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// OpenCover returns a reader over the given cover image.
func (b *BookStore) OpenCover(filename string) (io.ReadCloser, int64, error) {
	return b.Covers.Open(filename)
}

// SaveBook stores the book content, avoiding filename collisions: when the
// requested name is taken the first free "name (n).ext" is used instead.
// The final stored name is returned.
func (b *BookStore) SaveBook(filename string, r io.Reader) (string, error) {
	final := filename
	stem, e := Stem(filename), ext(filename)
	for n := 1; b.exists(final); n++ {
		final = fmt.Sprintf("%s (%d)%s", stem, n, e)
	}
	w, err := b.Books.Create(final)
	if err != nil {
		return "", err
	}
	_, err = io.Copy(w, r)
	err2 := w.Close()
	if err == nil {
		err = err2
	}
	if err != nil {
		// don't leave a partial book behind
		b.Books.Delete(final)
		return "", err
	}
	return final, nil
}

// SaveCover stores a cover image for the given (already stored) book name.
// The cover is named after the book's stem, so a deduplicated book gets a
// matching deduplicated cover. coverExt is the extension of the uploaded
// image, with or without the leading dot. The stored cover name is returned.
func (b *BookStore) SaveCover(bookFilename, coverExt string, r io.Reader) (string, error) {
	if !strings.HasPrefix(coverExt, ".") {
		coverExt = "." + coverExt
	}
	name := Stem(bookFilename) + coverExt
	w, err := b.Covers.Create(name)
	if err != nil {
		return "", err
	}
	_, err = io.Copy(w, r)
	err2 := w.Close()
	if err == nil {
		err = err2
	}
	if err != nil {
		b.Covers.Delete(name)
		return "", err
	}
	return name, nil
}

// Delete removes the book and any cover image matching its stem. Deleting a
// book which is already gone is not an error.
func (b *BookStore) Delete(filename string) error {
	err := b.Books.Delete(filename)
	stem := Stem(filename)
	for _, e := range CoverExtensions {
		er := b.Covers.Delete(stem + e)
		if err == nil {
			err = er
		}
	}
	return err
}

func (b *BookStore) exists(filename string) bool {
	_, err := b.Books.Stat(filename)
	return err == nil
}

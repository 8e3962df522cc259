package shelf

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// Validation failures reported to the uploader. These are user errors, not
// server faults: the web layer shows the message and carries on.
var (
	ErrNoBook        = errors.New("no book file selected")
	ErrBookFormat    = errors.New("disallowed book format")
	ErrBookTooLarge  = errors.New("book file too large")
	ErrCoverFormat   = errors.New("disallowed cover format")
	ErrCoverTooLarge = errors.New("cover file too large")
)

// IsValidation reports whether err is one of the upload validation failures.
func IsValidation(err error) bool {
	switch err {
	case ErrNoBook, ErrBookFormat, ErrBookTooLarge, ErrCoverFormat, ErrCoverTooLarge:
		return true
	}
	return false
}

// DefaultMaxUploadSize caps uploaded books and covers at 50 MiB.
const DefaultMaxUploadSize = 50 * 1024 * 1024

// Default extension allow-lists. Extensions compare case-insensitively and
// without the leading dot.
var (
	DefaultBookExtensions  = []string{"pdf"}
	DefaultCoverExtensions = []string{"jpg", "jpeg", "png"}
)

// A FilePayload is an uploaded file: its client supplied name, its declared
// size in bytes, and its content.
type FilePayload struct {
	Name string
	Size int64
	R    io.Reader
}

// An AddResult reports where an accepted upload ended up. Filename is the
// stored (possibly deduplicated) book name and Cover the stored cover name,
// empty when no cover landed. Warning is set when a supplied cover was
// skipped; the book itself still went in.
type AddResult struct {
	Filename string
	Cover    string
	Warning  string
}

// A Library ties the shelf stores together and implements the operations the
// web layer exposes: adding a book, removing one, and recording a download.
// All fields must be set before use; the Max/Extensions fields fall back to
// the package defaults when zero.
type Library struct {
	Books     *BookStore
	Metadata  *MetadataStore
	Downloads *DownloadCounter
	Log       *ActionLog

	MaxUploadSize   int64
	BookExtensions  []string
	CoverExtensions []string
}

func (lib *Library) maxUploadSize() int64 {
	if lib.MaxUploadSize > 0 {
		return lib.MaxUploadSize
	}
	return DefaultMaxUploadSize
}

func allowedExtension(filename string, allowed []string) bool {
	i := strings.LastIndex(filename, ".")
	if i < 0 {
		return false
	}
	e := strings.ToLower(filename[i+1:])
	for _, a := range allowed {
		if e == a {
			return true
		}
	}
	return false
}

// Add validates and stores an uploaded book, an optional cover image, and a
// metadata record. The book is checked first: a missing file, a disallowed
// extension, or an oversized payload rejects the whole upload with one of
// the validation errors above. A cover failing the same checks is merely
// skipped (reported in AddResult.Warning); the book still lands. The
// metadata record is written only after the book write succeeded, under the
// final deduplicated name, and an "add" entry is appended to the log.
func (lib *Library) Add(book FilePayload, cover *FilePayload, title, author, topic string) (AddResult, error) {
	var result AddResult

	bookExts := lib.BookExtensions
	if bookExts == nil {
		bookExts = DefaultBookExtensions
	}
	switch {
	case book.R == nil || book.Name == "":
		return result, ErrNoBook
	case !allowedExtension(book.Name, bookExts):
		return result, ErrBookFormat
	case book.Size > lib.maxUploadSize():
		return result, ErrBookTooLarge
	}

	final, err := lib.Books.SaveBook(book.Name, book.R)
	if err != nil {
		return result, err
	}
	result.Filename = final

	if cover != nil && cover.Name != "" {
		coverExts := lib.CoverExtensions
		if coverExts == nil {
			coverExts = DefaultCoverExtensions
		}
		switch {
		case !allowedExtension(cover.Name, coverExts):
			result.Warning = ErrCoverFormat.Error()
		case cover.Size > lib.maxUploadSize():
			result.Warning = ErrCoverTooLarge.Error()
		default:
			name, err := lib.Books.SaveCover(final, ext(cover.Name), cover.R)
			if err != nil {
				return result, err
			}
			result.Cover = name
		}
	}

	rec := NewRecord(final, title, author, topic, result.Cover)
	if err := lib.Metadata.Upsert(final, rec); err != nil {
		return result, err
	}
	if err := lib.Log.Append("add", fmt.Sprintf("book %s was added", final)); err != nil {
		return result, err
	}
	return result, nil
}

// Remove deletes the book file and any cover with a matching stem, and logs
// a "delete" entry. The metadata record and download count survive on
// purpose: the catalog iterates files, so neither ever surfaces again.
// Removing a book which is already gone is not an error.
func (lib *Library) Remove(filename string) error {
	if err := lib.Books.Delete(filename); err != nil {
		return err
	}
	return lib.Log.Append("delete", fmt.Sprintf("book %s was deleted", filename))
}

// OpenDownload records a download of the given book and returns a reader
// over its content. The counter and log are updated before the reader is
// handed back, so the count reflects downloads initiated, not completed.
// A missing book returns store.ErrNotExist.
func (lib *Library) OpenDownload(filename string) (io.ReadCloser, int64, error) {
	if _, err := lib.Books.Stat(filename); err != nil {
		return nil, 0, err
	}
	if err := lib.Downloads.Increment(filename); err != nil {
		return nil, 0, err
	}
	err := lib.Log.Append("download", fmt.Sprintf("book %s was downloaded", filename))
	if err != nil {
		return nil, 0, err
	}
	return lib.Books.Open(filename)
}

/*
Package catalog builds the listing views served by the web layer: the public
paginated catalog, the topic-filtered catalog, the admin catalog with search
and newest-first ordering, and the download rating. It joins the book files
with their resolved covers and metadata records but holds no state of its
own; every query re-reads the stores it is given.
*/
package catalog

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/libshelf/shelf/shelf"
)

// Page size defaults: the public views show six books per page, the admin
// catalog five rows.
const (
	DefaultPageSize      = 6
	DefaultAdminPageSize = 5
)

// TopicAll is the filter value meaning "do not filter".
const TopicAll = "all"

// modifiedLayout is how the admin view formats file modification times.
const modifiedLayout = "2006-01-02 15:04"

// A Catalog answers listing queries over a shelf. The page sizes fall back
// to the package defaults when zero.
type Catalog struct {
	Books     *shelf.BookStore
	Metadata  *shelf.MetadataStore
	Downloads *shelf.DownloadCounter

	PageSize      int
	AdminPageSize int
}

// A Book is one entry of a public catalog page.
type Book struct {
	Filename string       `json:"filename"`
	Cover    string       `json:"cover,omitempty"`
	Meta     shelf.Record `json:"metadata"`
}

// A Page is one public catalog page plus everything the view needs to render
// pagination links and the topic filter.
type Page struct {
	Books       []Book   `json:"books"`
	Page        int      `json:"page"`
	TotalPages  int      `json:"total_pages"`
	WindowFirst int      `json:"window_first"`
	WindowLast  int      `json:"window_last"`
	Topic       string   `json:"topic,omitempty"`
	Topics      []string `json:"topics,omitempty"`
}

// Page returns the 1-based page of the catalog, optionally filtered to an
// exact topic. An empty topic or TopicAll lists everything. Filenames are
// sorted lexicographically so pagination is stable between requests.
// Out-of-range pages return an empty book list, not an error.
func (c *Catalog) Page(page int, topic string) (Page, error) {
	result := Page{Page: page, Topic: topic}

	files, err := c.Books.List()
	if err != nil {
		return result, err
	}
	metadata, err := c.Metadata.LoadAll()
	if err != nil {
		return result, err
	}

	if topic != "" && topic != TopicAll {
		var kept []string
		for _, f := range files {
			rec, ok := metadata[f]
			if ok && rec.Topic == topic {
				kept = append(kept, f)
			}
		}
		files = kept
	}
	sort.Strings(files)

	size := c.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}
	result.TotalPages = TotalPages(len(files), size)
	result.WindowFirst, result.WindowLast = Window(page, result.TotalPages)

	lo, hi := pageBounds(len(files), page, size)
	for _, f := range files[lo:hi] {
		result.Books = append(result.Books, Book{
			Filename: f,
			Cover:    c.Books.ResolveCover(f),
			Meta:     metadata[f], // zero Record when no entry exists
		})
	}

	result.Topics = topics(metadata)
	return result, nil
}

// topics returns the distinct non-empty topic values, sorted for stable
// rendering.
func topics(metadata map[string]shelf.Record) []string {
	seen := make(map[string]bool)
	for _, rec := range metadata {
		if rec.Topic != "" {
			seen[rec.Topic] = true
		}
	}
	var result []string
	for topic := range seen {
		result = append(result, topic)
	}
	sort.Strings(result)
	return result
}

// An AdminBook is one row of the admin catalog.
type AdminBook struct {
	Filename    string       `json:"filename"`
	Size        int64        `json:"size"`
	SizeMB      float64      `json:"size_mb"`
	Modified    string       `json:"modified"`
	HasCover    bool         `json:"cover_exists"`
	HasMetadata bool         `json:"has_metadata"`
	Meta        shelf.Record `json:"metadata"`
}

// An AdminPage is one page of the admin catalog.
type AdminPage struct {
	Books       []AdminBook `json:"books"`
	Page        int         `json:"page"`
	TotalPages  int         `json:"total_pages"`
	WindowFirst int         `json:"window_first"`
	WindowLast  int         `json:"window_last"`
	Query       string      `json:"q,omitempty"`
}

// AdminPage returns the 1-based page of the admin catalog. A non-empty query
// keeps only filenames containing it, case-insensitively. Rows are ordered
// by file modification time, newest first, and carry the size and existence
// flags the admin table shows.
func (c *Catalog) AdminPage(page int, query string) (AdminPage, error) {
	result := AdminPage{Page: page, Query: query}

	files, err := c.Books.List()
	if err != nil {
		return result, err
	}
	if query != "" {
		q := strings.ToLower(query)
		var kept []string
		for _, f := range files {
			if strings.Contains(strings.ToLower(f), q) {
				kept = append(kept, f)
			}
		}
		files = kept
	}

	infos := make(map[string]shelfInfo, len(files))
	for _, f := range files {
		info, err := c.Books.Stat(f)
		if err != nil {
			// the file vanished between List and Stat; drop it
			continue
		}
		infos[f] = shelfInfo{size: info.Size, modtime: info.ModTime}
	}
	// re-filter to the files we could stat
	files = files[:0:0]
	for f := range infos {
		files = append(files, f)
	}
	sort.Strings(files) // stable tie-break
	sort.SliceStable(files, func(i, j int) bool {
		return infos[files[i]].modtime.After(infos[files[j]].modtime)
	})

	size := c.AdminPageSize
	if size <= 0 {
		size = DefaultAdminPageSize
	}
	result.TotalPages = TotalPages(len(files), size)
	result.WindowFirst, result.WindowLast = Window(page, result.TotalPages)

	metadata, err := c.Metadata.LoadAll()
	if err != nil {
		return result, err
	}

	lo, hi := pageBounds(len(files), page, size)
	for _, f := range files[lo:hi] {
		info := infos[f]
		rec, hasMeta := metadata[f]
		result.Books = append(result.Books, AdminBook{
			Filename:    f,
			Size:        info.size,
			SizeMB:      math.Round(float64(info.size)/(1024*1024)*100) / 100,
			Modified:    info.modtime.Format(modifiedLayout),
			HasCover:    c.Books.ResolveCover(f) != "",
			HasMetadata: hasMeta,
			Meta:        rec,
		})
	}
	return result, nil
}

type shelfInfo struct {
	size    int64
	modtime time.Time
}

// A RatingEntry is one row of the download rating: a counted filename joined
// with its display metadata. The title falls back to the filename stem when
// no record exists.
type RatingEntry struct {
	Filename string `json:"filename"`
	Count    int    `json:"count"`
	Title    string `json:"title"`
	Author   string `json:"author,omitempty"`
}

// Rating returns every counted download, sorted by count descending. Books
// deleted after being downloaded still appear; the counters outlive the
// files.
func (c *Catalog) Rating() ([]RatingEntry, error) {
	counts, err := c.Downloads.All()
	if err != nil {
		return nil, err
	}
	metadata, err := c.Metadata.LoadAll()
	if err != nil {
		return nil, err
	}

	var result []RatingEntry
	for filename, count := range counts {
		rec := metadata[filename]
		title := rec.Title
		if title == "" {
			title = shelf.Stem(filename)
		}
		result = append(result, RatingEntry{
			Filename: filename,
			Count:    count,
			Title:    title,
			Author:   rec.Author,
		})
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Filename < result[j].Filename
	})
	return result, nil
}

// Topics returns the distinct non-empty topics across all metadata records.
func (c *Catalog) Topics() ([]string, error) {
	metadata, err := c.Metadata.LoadAll()
	if err != nil {
		return nil, err
	}
	return topics(metadata), nil
}

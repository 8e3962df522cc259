package server

import (
	"fmt"
	"html/template"
	"net/http"
	"sort"

	"github.com/julienschmidt/httprouter"

	"github.com/libshelf/shelf/shelf"
)

// AdminCatalogHandler handles requests to GET /admin/catalog (?page=N&q=text)
func (s *RESTServer) AdminCatalogHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	page := queryInt(r, "page", 1)
	query := r.URL.Query().Get("q")
	view, err := s.Catalog.AdminPage(page, query)
	if err != nil {
		s.serverError(w, err)
		return
	}
	writeHTMLorJSON(w, r, adminCatalogTemplate, view)
}

// manageView is what the manage page renders: the current shelf contents and
// the outcome of the action just taken, if any.
type manageView struct {
	Files   []string `json:"files"`
	Message string   `json:"message,omitempty"`
}

// maxFormMemory is how much of a multipart body is held in memory while
// parsing; the rest spills to temporary files.
const maxFormMemory = 32 << 20

// ManageHandler handles GET and POST /admin/manage. A POST either deletes a
// book (form fields "delete" and "filename") or uploads one (file fields
// "book_file" and optional "cover_file", text fields "title", "author",
// "topic"). Validation problems come back as a message on the page, not as
// an error status; the original form did the same.
func (s *RESTServer) ManageHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var message string
	if r.Method == "POST" {
		message = s.manage(r)
	}

	files, err := s.Library.Books.List()
	if err != nil {
		s.serverError(w, err)
		return
	}
	sort.Strings(files)
	writeHTMLorJSON(w, r, manageTemplate, manageView{Files: files, Message: message})
}

// manage applies the posted action and returns the message to display.
func (s *RESTServer) manage(r *http.Request) string {
	err := r.ParseMultipartForm(maxFormMemory)
	if err != nil {
		return "could not read the form: " + err.Error()
	}

	if r.FormValue("delete") != "" {
		filename := r.FormValue("filename")
		if filename == "" {
			return "no filename given"
		}
		if err := s.Library.Remove(filename); err != nil {
			return "delete failed: " + err.Error()
		}
		return fmt.Sprintf("file %q and its cover were deleted", filename)
	}

	var book shelf.FilePayload
	file, header, err := r.FormFile("book_file")
	if err == nil {
		defer file.Close()
		book = shelf.FilePayload{Name: header.Filename, Size: header.Size, R: file}
	}

	var cover *shelf.FilePayload
	cfile, cheader, err := r.FormFile("cover_file")
	if err == nil {
		defer cfile.Close()
		cover = &shelf.FilePayload{Name: cheader.Filename, Size: cheader.Size, R: cfile}
	}

	result, err := s.Library.Add(book, cover,
		r.FormValue("title"), r.FormValue("author"), r.FormValue("topic"))
	switch {
	case shelf.IsValidation(err):
		return err.Error()
	case err != nil:
		return "upload failed: " + err.Error()
	case result.Warning != "":
		return fmt.Sprintf("book %q was added, but the cover was skipped: %s",
			result.Filename, result.Warning)
	}
	return fmt.Sprintf("book %q was added", result.Filename)
}

// RatingHandler handles requests to GET /admin/rating
func (s *RESTServer) RatingHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	rating, err := s.Catalog.Rating()
	if err != nil {
		s.serverError(w, err)
		return
	}
	writeHTMLorJSON(w, r, ratingTemplate, rating)
}

// LogHandler handles requests to GET /admin/log
func (s *RESTServer) LogHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	limit := s.LogLimit
	if limit == 0 {
		limit = DefaultLogLimit
	}
	entries, err := s.Library.Log.Recent(limit)
	if err != nil {
		s.serverError(w, err)
		return
	}
	writeHTMLorJSON(w, r, logTemplate, entries)
}

var (
	adminCatalogTemplate = template.Must(template.New("admincatalog").Funcs(viewFuncs).Parse(`<html>
<h1>Catalog</h1>
<form action="/admin/catalog" method="get">
	<input type="text" name="q" value="{{ .Query }}"/>
	<button type="submit">Search</button>
</form>
<table border="1">
<tr><th>File</th><th>Size (MiB)</th><th>Modified</th><th>Cover</th><th>Metadata</th></tr>
{{ range .Books }}
	<tr>
	<td>{{ .Filename }}</td>
	<td>{{ .SizeMB }}</td>
	<td>{{ .Modified }}</td>
	<td>{{ if .HasCover }}yes{{ else }}no{{ end }}</td>
	<td>{{ if .HasMetadata }}{{ .Meta.Title }}{{ else }}&mdash;{{ end }}</td>
	</tr>
{{ else }}
	<tr><td colspan="5">No books</td></tr>
{{ end }}
</table>
<p>Page {{ .Page }} of {{ .TotalPages }}
{{ range pages .WindowFirst .WindowLast }}
	<a href="/admin/catalog?q={{ $.Query }}&page={{ . }}">{{ . }}</a>
{{ end }}
</p>
</html>`))

	manageTemplate = template.Must(template.New("manage").Parse(`<html>
<h1>Manage</h1>
{{ if .Message }}<p><b>{{ .Message }}</b></p>{{ end }}
<h2>Add a book</h2>
<form action="/admin/manage" method="post" enctype="multipart/form-data">
	<p>Book (pdf): <input type="file" name="book_file"/></p>
	<p>Cover (jpg, jpeg, png): <input type="file" name="cover_file"/></p>
	<p>Title: <input type="text" name="title"/></p>
	<p>Author: <input type="text" name="author"/></p>
	<p>Topic: <input type="text" name="topic"/></p>
	<button type="submit">Upload</button>
</form>
<h2>Delete a book</h2>
<ul>
{{ range .Files }}
	<li>{{ . }}
	<form action="/admin/manage" method="post" enctype="multipart/form-data">
		<input type="hidden" name="delete" value="1"/>
		<input type="hidden" name="filename" value="{{ . }}"/>
		<button type="submit">Delete</button>
	</form>
	</li>
{{ else }}
	<li>No books</li>
{{ end }}
</ul>
</html>`))

	ratingTemplate = template.Must(template.New("rating").Parse(`<html>
<h1>Download rating</h1>
<ol>
{{ range . }}
	<li>{{ .Title }}{{ if .Author }} &mdash; {{ .Author }}{{ end }} ({{ .Count }})</li>
{{ else }}
	<li>No downloads yet</li>
{{ end }}
</ol>
</html>`))

	logTemplate = template.Must(template.New("log").Parse(`<html>
<h1>Action log</h1>
<table border="1">
<tr><th>When</th><th>Action</th><th>Details</th></tr>
{{ range . }}
	<tr><td>{{ .Timestamp }}</td><td>{{ .Action }}</td><td>{{ .Details }}</td></tr>
{{ else }}
	<tr><td colspan="3">Empty</td></tr>
{{ end }}
</table>
</html>`))
)

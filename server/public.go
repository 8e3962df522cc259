package server

import (
	"fmt"
	"html/template"
	"io"
	"mime"
	"net/http"
	"path"
	"strconv"

	"github.com/julienschmidt/httprouter"

	"github.com/libshelf/shelf/catalog"
	"github.com/libshelf/shelf/store"
)

// IndexHandler handles requests to GET / (the public catalog, ?page=N)
func (s *RESTServer) IndexHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	page := queryInt(r, "page", 1)
	view, err := s.Catalog.Page(page, "")
	if err != nil {
		s.serverError(w, err)
		return
	}
	writeHTMLorJSON(w, r, indexTemplate, view)
}

// FiltersHandler handles requests to GET /filters (?page=N&topic=T)
func (s *RESTServer) FiltersHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	page := queryInt(r, "page", 1)
	topic := r.URL.Query().Get("topic")
	view, err := s.Catalog.Page(page, topic)
	if err != nil {
		s.serverError(w, err)
		return
	}
	writeHTMLorJSON(w, r, filtersTemplate, view)
}

// DownloadHandler handles requests to GET /download/:filename. The download
// counter and log are updated before the first byte is sent.
func (s *RESTServer) DownloadHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	filename := ps.ByName("filename")
	src, size, err := s.Library.OpenDownload(filename)
	if err != nil {
		if store.IsNotExist(err) {
			w.WriteHeader(404)
			fmt.Fprintf(w, "file %q not found\n", filename)
			return
		}
		s.serverError(w, err)
		return
	}
	defer src.Close()
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	w.Header().Set("Content-Disposition",
		mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	io.Copy(w, src)
}

// CoverHandler handles requests to GET /covers/:filename
func (s *RESTServer) CoverHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	filename := ps.ByName("filename")
	src, size, err := s.Library.Books.OpenCover(filename)
	if err != nil {
		if store.IsNotExist(err) {
			w.WriteHeader(404)
			fmt.Fprintf(w, "cover %q not found\n", filename)
			return
		}
		s.serverError(w, err)
		return
	}
	defer src.Close()
	if ctype := mime.TypeByExtension(path.Ext(filename)); ctype != "" {
		w.Header().Set("Content-Type", ctype)
	}
	w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	io.Copy(w, src)
}

// viewFuncs are the helpers the inline templates use. "pages" expands a
// pagination window into the page numbers to link.
var viewFuncs = template.FuncMap{
	"pages": catalog.Pages,
}

var (
	indexTemplate = template.Must(template.New("index").Funcs(viewFuncs).Parse(`<html>
<h1>Books</h1>
<ul>
{{ range .Books }}
	<li>
	{{ if .Cover }}<img src="/covers/{{ .Cover }}" height="120"/>{{ end }}
	<a href="/download/{{ .Filename }}">{{ if .Meta.Title }}{{ .Meta.Title }}{{ else }}{{ .Filename }}{{ end }}</a>
	{{ if .Meta.Author }} &mdash; {{ .Meta.Author }}{{ end }}
	</li>
{{ else }}
	<li>No books</li>
{{ end }}
</ul>
<p>Page {{ .Page }} of {{ .TotalPages }}
{{ range pages .WindowFirst .WindowLast }}
	<a href="/?page={{ . }}">{{ . }}</a>
{{ end }}
</p>
</html>`))

	filtersTemplate = template.Must(template.New("filters").Funcs(viewFuncs).Parse(`<html>
<h1>Books{{ if .Topic }} &mdash; {{ .Topic }}{{ end }}</h1>
<p>Topics:
<a href="/filters?topic=all">all</a>
{{ range .Topics }}
	<a href="/filters?topic={{ . }}">{{ . }}</a>
{{ end }}
</p>
<ul>
{{ range .Books }}
	<li>
	{{ if .Cover }}<img src="/covers/{{ .Cover }}" height="120"/>{{ end }}
	<a href="/download/{{ .Filename }}">{{ if .Meta.Title }}{{ .Meta.Title }}{{ else }}{{ .Filename }}{{ end }}</a>
	{{ if .Meta.Topic }} [{{ .Meta.Topic }}]{{ end }}
	</li>
{{ else }}
	<li>No books</li>
{{ end }}
</ul>
<p>Page {{ .Page }} of {{ .TotalPages }}
{{ range pages .WindowFirst .WindowLast }}
	<a href="/filters?topic={{ $.Topic }}&page={{ . }}">{{ . }}</a>
{{ end }}
</p>
</html>`))
)

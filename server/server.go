package server

import (
	"encoding/json"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"strconv"

	"github.com/facebookgo/httpdown"
	raven "github.com/getsentry/raven-go"
	"github.com/julienschmidt/httprouter"

	"github.com/libshelf/shelf/catalog"
	"github.com/libshelf/shelf/shelf"
)

// RESTServer holds the configuration for a shelf web server.
//
// Set the public fields and then call Run. Run will listen on the given port
// and handle requests until Stop is called. Do not change any fields after
// calling Run.
type RESTServer struct {
	// Port number to listen on. Defaults to 8000.
	PortNumber string

	// Library handles uploads, deletes, and downloads. Run panics if nil.
	Library *shelf.Library

	// Catalog answers the listing queries. Run panics if nil.
	Catalog *catalog.Catalog

	// LogLimit is how many log entries the log view shows. Defaults to 100.
	LogLimit int

	server httpdown.Server // used to close our listening socket
}

// DefaultLogLimit is how many entries the log page shows when LogLimit is
// not set.
const DefaultLogLimit = 100

// Run starts the server. It blocks listening for and handling http requests.
func (s *RESTServer) Run() error {
	log.Println("==========")
	log.Printf("Starting Shelf Server version %s", Version)

	if s.Library == nil {
		panic("No library given. Library is nil.")
	}
	if s.Catalog == nil {
		panic("No catalog given. Catalog is nil.")
	}
	if s.PortNumber == "" {
		s.PortNumber = "8000"
	}
	if s.LogLimit == 0 {
		s.LogLimit = DefaultLogLimit
	}

	log.Println("Listening on", s.PortNumber)
	h := httpdown.HTTP{}
	var err error
	s.server, err = h.ListenAndServe(&http.Server{
		Addr:    ":" + s.PortNumber,
		Handler: s.addRoutes(),
	})
	if err != nil {
		log.Println(err)
		return err
	}
	return s.server.Wait()
}

// Stop will stop the server and return when all the server goroutines have
// exited and the socket closed.
func (s *RESTServer) Stop() error {
	return s.server.Stop()
}

func (s *RESTServer) addRoutes() http.Handler {
	var routes = []struct {
		method  string
		route   string
		handler httprouter.Handle
	}{
		{"GET", "/", s.IndexHandler},
		{"GET", "/filters", s.FiltersHandler},
		{"GET", "/download/:filename", s.DownloadHandler},
		{"GET", "/covers/:filename", s.CoverHandler},

		// admin routes. no authentication: the shelf is expected to sit
		// behind something that does it, if it matters.
		{"GET", "/admin/catalog", s.AdminCatalogHandler},
		{"GET", "/admin/manage", s.ManageHandler},
		{"POST", "/admin/manage", s.ManageHandler},
		{"GET", "/admin/rating", s.RatingHandler},
		{"GET", "/admin/log", s.LogHandler},

		// other
		{"GET", "/version", VersionHandler},
	}

	r := httprouter.New()
	for _, route := range routes {
		r.Handle(route.method, route.route, logWrapper(route.handler))
	}
	return r
}

// VersionHandler handles requests to GET /version
func VersionHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	fmt.Fprintf(w, "Shelf (%s)\n", Version)
}

// writeHTMLorJSON will either return val as JSON or as rendered using the
// given template, depending on the request header "Accept-Encoding".
func writeHTMLorJSON(w http.ResponseWriter,
	r *http.Request,
	tmpl *template.Template,
	val interface{}) {

	if r.Header.Get("Accept-Encoding") == "application/json" {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		json.NewEncoder(w).Encode(val)
		return
	}
	tmpl.Execute(w, val)
}

// serverError reports a 500. These are storage or state file problems, not
// user errors, so they are logged and captured.
func (s *RESTServer) serverError(w http.ResponseWriter, err error) {
	log.Println(err)
	raven.CaptureError(err, nil)
	w.WriteHeader(500)
	fmt.Fprintln(w, err.Error())
}

// queryInt reads an integer query parameter, falling back to def when the
// parameter is absent or not a number.
func queryInt(r *http.Request, name string, def int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// logWrapper takes a handler and returns a handler which does the same thing,
// after first logging the request URL.
func logWrapper(handler httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		log.Println(r.Method, r.URL)
		handler(w, r, ps)
	}
}

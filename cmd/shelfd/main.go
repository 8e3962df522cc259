package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/BurntSushi/toml"
	raven "github.com/getsentry/raven-go"

	"github.com/libshelf/shelf/catalog"
	"github.com/libshelf/shelf/server"
	"github.com/libshelf/shelf/shelf"
)

// config holds the configuration options for the shelf daemon. The zero value
// of every field means "use the default".
type config struct {
	Port           string
	Books          string // location of the book files
	Covers         string // location of the cover images
	State          string // location of the JSON state files
	SentryDSN      string
	PublicPageSize int
	AdminPageSize  int
	MaxUploadSize  int64
	MaxLogEntries  int
	LogViewLimit   int
}

func main() {
	var (
		configFile  = flag.String("config-file", "", "path to configuration file")
		showVersion = flag.Bool("version", false, "display the version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("shelfd version %s\n", server.Version)
		return
	}

	var conf config
	if *configFile != "" {
		log.Println("Reading config file", *configFile)
		if _, err := toml.DecodeFile(*configFile, &conf); err != nil {
			log.Fatalln(err)
		}
	}

	if conf.SentryDSN != "" {
		raven.SetDSN(conf.SentryDSN)
		raven.SetRelease(server.Version)
	}

	books := openStore(conf.Books, "books")
	covers := openStore(conf.Covers, "covers")
	state := openStore(conf.State, "state")
	if books == nil || covers == nil || state == nil {
		log.Fatalln("could not set up the storage locations")
	}

	bookstore := shelf.NewBookStore(books, covers)
	metadata := shelf.NewMetadataStore(state)
	downloads := shelf.NewDownloadCounter(state)
	actionlog := shelf.NewActionLog(state)
	if conf.MaxLogEntries > 0 {
		actionlog.MaxEntries = conf.MaxLogEntries
	}

	s := &server.RESTServer{
		PortNumber: conf.Port,
		Library: &shelf.Library{
			Books:         bookstore,
			Metadata:      metadata,
			Downloads:     downloads,
			Log:           actionlog,
			MaxUploadSize: conf.MaxUploadSize,
		},
		Catalog: &catalog.Catalog{
			Books:         bookstore,
			Metadata:      metadata,
			Downloads:     downloads,
			PageSize:      conf.PublicPageSize,
			AdminPageSize: conf.AdminPageSize,
		},
		LogLimit: conf.LogViewLimit,
	}

	// set up signal handlers
	sig := make(chan os.Signal, 5)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		s2 := <-sig
		log.Println("---received signal", s2)
		s.Stop()
	}()

	err := s.Run()
	if err != nil {
		log.Println(err)
	}
	log.Println("Exiting")
}

package main

import (
	"errors"
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"text/tabwriter"

	"github.com/antonholmquist/jason"
)

var (
	host  = flag.String("host", "http://localhost:8000", "shelf server to use")
	usage = `
shelfutil <command> <command arguments>

Possible commands:
    catalog [page]

    rating

    log
`
)

func main() {
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		fmt.Println(usage)
		return
	}

	c := connection{host: *host}
	var err error
	switch args[0] {
	case "catalog":
		page := "1"
		if len(args) > 1 {
			page = args[1]
		}
		err = docatalog(c, page)
	case "rating":
		err = dorating(c)
	case "log":
		err = dolog(c)
	default:
		fmt.Println(usage)
		return
	}
	if err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}

type connection struct {
	host string
}

var errNotFound = errors.New("Not Found")

func docatalog(c connection, page string) error {
	v, err := c.doJasonGet("/admin/catalog?page=" + url.QueryEscape(page))
	if err != nil {
		return err
	}
	p, _ := v.GetInt64("page")
	total, _ := v.GetInt64("total_pages")
	fmt.Printf("Page %d of %d\n", p, total)

	books, err := v.GetObjectArray("books")
	if err != nil {
		// an empty page omits the list entirely
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 5, 1, 3, ' ', 0)
	fmt.Fprintln(w, "FILE\tSIZE\tMODIFIED\tCOVER\tTITLE")
	for _, book := range books {
		name, _ := book.GetString("filename")
		size, _ := book.GetInt64("size")
		modified, _ := book.GetString("modified")
		hasCover, _ := book.GetBoolean("cover_exists")
		title, _ := book.GetString("metadata", "title")
		cover := "-"
		if hasCover {
			cover = "yes"
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n", name, size, modified, cover, title)
	}
	return w.Flush()
}

func dorating(c connection) error {
	entries, err := c.doJasonGetArray("/admin/rating")
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 5, 1, 3, ' ', 0)
	fmt.Fprintln(w, "COUNT\tTITLE\tAUTHOR\tFILE")
	for _, v := range entries {
		entry, err := v.Object()
		if err != nil {
			return err
		}
		count, _ := entry.GetInt64("count")
		title, _ := entry.GetString("title")
		author, _ := entry.GetString("author")
		name, _ := entry.GetString("filename")
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", count, title, author, name)
	}
	return w.Flush()
}

func dolog(c connection) error {
	entries, err := c.doJasonGetArray("/admin/log")
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 5, 1, 3, ' ', 0)
	fmt.Fprintln(w, "WHEN\tACTION\tDETAILS")
	for _, v := range entries {
		entry, err := v.Object()
		if err != nil {
			return err
		}
		ts, _ := entry.GetString("timestamp")
		action, _ := entry.GetString("action")
		details, _ := entry.GetString("details")
		fmt.Fprintf(w, "%s\t%s\t%s\n", ts, action, details)
	}
	return w.Flush()
}

func (c connection) doJasonGet(path string) (*jason.Object, error) {
	resp, err := c.doGet(path)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return jason.NewObjectFromReader(resp.Body)
}

func (c connection) doJasonGetArray(path string) ([]*jason.Value, error) {
	resp, err := c.doGet(path)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	v, err := jason.NewValueFromReader(resp.Body)
	if err != nil {
		return nil, err
	}
	return v.Array()
}

func (c connection) doGet(path string) (*http.Response, error) {
	req, err := http.NewRequest("GET", c.host+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept-Encoding", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	switch resp.StatusCode {
	case 200:
		return resp, nil
	case 404:
		resp.Body.Close()
		return nil, errNotFound
	default:
		resp.Body.Close()
		return nil, fmt.Errorf("Received status %d from %s", resp.StatusCode, c.host)
	}
}

package main

import (
	"log"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"

	"github.com/libshelf/shelf/store"
)

// openStore turns a location string from the config file into a Store.
// Three forms are understood:
//
//	(empty)               in-memory store, nothing persisted
//	/some/dir, file:dir   directory on the local file system
//	s3://host/bucket/pre  bucket (and optional key prefix) on S3
//
// addition names the subdirectory, or key prefix, belonging to this
// particular store, so a single configured location can back the books,
// covers, and state stores side by side. A location that cannot be
// understood returns nil.
func openStore(location, addition string) store.Store {
	if location == "" {
		return store.NewMemory()
	}
	u, _ := url.Parse(location)
	switch u.Scheme {
	case "", "file":
		dir := filepath.Join(u.Path, addition)
		os.MkdirAll(dir, 0755)
		return store.NewFileSystem(dir)
	case "s3":
		return openS3(u, addition)
	}
	log.Println("unrecognized storage location", location)
	return nil
}

func openS3(u *url.URL, addition string) store.Store {
	conf := &aws.Config{}
	if u.Host != "" {
		conf.Endpoint = aws.String(u.Host)
		conf.Region = aws.String("us-east-1")
		if strings.Contains(u.Host, "localhost") {
			// local development endpoints speak plain http
			conf.DisableSSL = aws.Bool(true)
			conf.S3ForcePathStyle = aws.Bool(true)
		}
	}
	bucket, prefix := bucketAndPrefix(u.Path, addition)
	if bucket == "" {
		log.Println("s3 location has no bucket name:", u)
		return nil
	}
	return store.NewS3(bucket, prefix, session.New(conf))
}

// bucketAndPrefix splits an s3 location path into the bucket name and the
// key prefix, with addition joined onto the prefix. The prefix comes back
// either empty or ending in a slash, so it can be glued directly onto keys.
func bucketAndPrefix(location, addition string) (bucket, prefix string) {
	location = strings.TrimPrefix(location, "/")
	if location == "" {
		return "", ""
	}
	if i := strings.Index(location, "/"); i >= 0 {
		bucket, prefix = location[:i], location[i+1:]
	} else {
		bucket = location
	}
	if addition != "" {
		prefix = path.Join(prefix, addition)
	}
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return bucket, prefix
}

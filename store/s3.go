package store

import (
	"bytes"
	"io"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	raven "github.com/getsentry/raven-go"
)

// An S3 store represents a store that is kept in an AWS S3 bucket. Since the
// shelf caps uploads at a few tens of megabytes, objects are transferred
// whole: a Create buffers everything and does a single PutObject on Close.
// Do not change Bucket or Prefix concurrently with calls using the structure.
type S3 struct {
	svc    *s3.S3
	Bucket string
	Prefix string
	m      sync.Mutex // protects stats
	stats  map[string]Info
}

var (
	// ensure S3 satisfies the Store interface
	_ Store = &S3{}
)

// NewS3 creates a new S3 store. It will use the given bucket and will prepend
// prefix to all keys. This is to allow for a bucket to be used for more than
// one store. For example if prefix were "covers/" then an Open("x.jpg") would
// look for the key "covers/x.jpg" in the bucket. The authorization method and
// credentials in the session are used for all accesses.
func NewS3(bucket, prefix string, awsSession *session.Session) *S3 {
	return &S3{
		Bucket: bucket,
		Prefix: prefix,
		svc:    s3.New(awsSession),
		stats:  make(map[string]Info),
	}
}

// List returns the keys in this store. It only returns ones under the
// store's Prefix, so it is safe to use on a bucket containing other items.
func (s *S3) List() ([]string, error) {
	var result []string
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(s.Bucket),
		Prefix: aws.String(s.Prefix),
	}
	err := s.svc.ListObjectsV2Pages(input,
		func(page *s3.ListObjectsV2Output, lastpage bool) bool {
			for _, item := range page.Contents {
				key := strings.TrimPrefix(*item.Key, s.Prefix)
				if strings.Contains(key, "/") {
					// "subdirectory" of the prefix. skip, as
					// with the file system store.
					continue
				}
				result = append(result, key)
			}
			return !lastpage
		})
	if err != nil {
		log.Println("S3 List:", s.Prefix, err)
		raven.CaptureError(err, map[string]string{"Bucket": s.Bucket, "Prefix": s.Prefix})
	}
	return result, err
}

// Open will return a reader for the content of the given key.
func (s *S3) Open(key string) (io.ReadCloser, int64, error) {
	info, err := s.Stat(key)
	if err != nil {
		return nil, 0, err
	}
	output, err := s.svc.GetObject(&s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(s.Prefix + key),
	})
	if err != nil {
		log.Println("S3 Open:", s.Prefix, key, err)
		return nil, 0, asNotExist(err)
	}
	return output.Body, info.Size, nil
}

// Create will return a WriteCloser to upload content to the given key. The
// content is buffered in memory and sent to S3 when the writer is closed.
func (s *S3) Create(key string) (io.WriteCloser, error) {
	return &s3WriteCloser{parent: s, key: key}, nil
}

type s3WriteCloser struct {
	parent *S3
	key    string
	buf    bytes.Buffer
}

func (wc *s3WriteCloser) Write(p []byte) (int, error) {
	return wc.buf.Write(p)
}

func (wc *s3WriteCloser) Close() error {
	s := wc.parent
	_, err := s.svc.PutObject(&s3.PutObjectInput{
		Body:          bytes.NewReader(wc.buf.Bytes()),
		Bucket:        aws.String(s.Bucket),
		Key:           aws.String(s.Prefix + wc.key),
		ContentLength: aws.Int64(int64(wc.buf.Len())),
	})
	if err != nil {
		log.Println("S3 Create:", s.Prefix, wc.key, err)
		raven.CaptureError(err, map[string]string{"Bucket": s.Bucket, "Key": wc.key})
		return err
	}
	s.m.Lock()
	s.stats[wc.key] = Info{Size: int64(wc.buf.Len()), ModTime: time.Now()}
	s.m.Unlock()
	return nil
}

// Delete will remove the given key from the store. The store's Prefix is
// prepended first. It is not an error to delete something that doesn't exist.
func (s *S3) Delete(key string) error {
	_, err := s.svc.DeleteObject(&s3.DeleteObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(s.Prefix + key),
	})
	if err != nil {
		log.Println("S3 Delete:", s.Prefix, key, err)
		raven.CaptureError(err, map[string]string{"Bucket": s.Bucket, "Key": key})
		return err
	}
	s.m.Lock()
	delete(s.stats, key)
	s.m.Unlock()
	return nil
}

// Stat does a HEAD request for the key, caching the result to cut down on
// the number of requests when a key is statted repeatedly (e.g. when a
// catalog page joins sizes and mtimes for every listed book).
func (s *S3) Stat(key string) (Info, error) {
	s.m.Lock()
	info, ok := s.stats[key]
	s.m.Unlock()
	if ok {
		return info, nil
	}
	output, err := s.svc.HeadObject(&s3.HeadObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(s.Prefix + key),
	})
	if err != nil {
		return Info{}, asNotExist(err)
	}
	info = Info{Size: *output.ContentLength}
	if output.LastModified != nil {
		info.ModTime = *output.LastModified
	}
	s.m.Lock()
	s.stats[key] = info
	s.m.Unlock()
	return info, nil
}

// asNotExist translates AWS missing-key errors into ErrNotExist, and leaves
// everything else alone.
func asNotExist(err error) error {
	if aerr, ok := err.(awserr.RequestFailure); ok {
		if aerr.StatusCode() == 404 {
			return ErrNotExist
		}
	}
	if aerr, ok := err.(awserr.Error); ok {
		switch aerr.Code() {
		case s3.ErrCodeNoSuchKey, "NotFound":
			return ErrNotExist
		}
	}
	return err
}

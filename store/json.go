package store

import (
	"bytes"
	"encoding/json"
	"log"

	"github.com/pkg/errors"
)

// A JSONStore wraps a Store and provides a store which serializes its values
// as JSON instead of using streams. It does not cache the results of
// serialization/deserialization. Since it deals with interface{} instead of
// readers and writers, a JSONStore does not match the Store interface.
//
// Values are written with a four space indent and without HTML escaping, so
// the files on disk stay human readable and non-ASCII text is kept as is.
type JSONStore struct {
	Store
}

// NewJSON creates a new JSONStore using the provided store for its storage.
func NewJSON(s Store) JSONStore {
	return JSONStore{s}
}

// Open the item having the given key and unserialize it into value.
// A missing key is returned as ErrNotExist; malformed content is an error,
// never an empty value.
func (js JSONStore) Open(key string, value interface{}) error {
	r, _, err := js.Store.Open(key)
	if err != nil {
		return err
	}
	dec := json.NewDecoder(r)
	err = dec.Decode(value)
	err2 := r.Close()
	if err != nil {
		log.Println(key, err)
		return errors.Wrapf(err, "parsing %s", key)
	}
	return err2
}

// Save the value under the given key, replacing any previous value. The
// value is serialized completely before the store is touched, so a marshal
// failure leaves the previous content in place.
func (js JSONStore) Save(key string, value interface{}) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(value); err != nil {
		log.Println(key, err)
		return errors.Wrapf(err, "saving %s", key)
	}
	w, err := js.Store.Create(key)
	if err != nil {
		return err
	}
	_, err = w.Write(buf.Bytes())
	err2 := w.Close()
	if err == nil {
		err = err2
	}
	return err
}

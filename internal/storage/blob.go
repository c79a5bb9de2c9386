// Package storage archives raw uploads next to the parsed catalogs.
package storage

import "io"

type BlobStore interface {
	Put(key string, r io.Reader) (string, error) // returns canonical key
	Get(key string) (io.ReadCloser, error)
	URL(key string) (string, error) // fs returns "file://..."
}

// CatalogKey is where the raw body of upload id is archived.
func CatalogKey(id string) string { return "catalogs/" + id + ".json" }

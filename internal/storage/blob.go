// Package storage holds lesson and question media blobs (images, audio,
// pasted attachments) referenced from course content.
package storage

import "io"

type BlobStore interface {
	Put(key string, r io.Reader) (string, error) // returns canonical key
	Get(key string) (io.ReadCloser, error)
	Delete(key string) error
}

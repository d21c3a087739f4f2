// Package storage archives uploaded source documents so a quiz can be
// regenerated from its original material later.
package storage

import "io"

type BlobStore interface {
	Put(key string, r io.Reader) (string, error) // returns canonical key
	Get(key string) (io.ReadCloser, error)
}

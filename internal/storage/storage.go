// Package storage archives finished run outputs to durable storage.
// It defines the Archiver interface (port) and implementations for a local
// archive directory and S3.
package storage

import "context"

// Archiver copies a finished artifact to durable storage under a key and
// returns a location where it can be retrieved.
type Archiver interface {
	// Archive stores the file at path under the given key.
	Archive(ctx context.Context, key, path string) (location string, err error)
}

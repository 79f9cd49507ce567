// Package storage delivers produced segment files to their final location.
// Segments are always written to local disk first; a Publisher may then copy
// them elsewhere, such as an S3 bucket.
package storage

import "context"

// Publisher delivers segment files and reports where each one ended up.
type Publisher interface {
	// Publish delivers the files at paths and returns one location per path,
	// in the same order.
	Publish(ctx context.Context, paths []string) (locations []string, err error)
}

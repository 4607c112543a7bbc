// Package cloudwriter buffers a stream and uploads it as a single object.
package cloudwriter

import "io"

// CloudWriter is written to like a file; Close uploads the content.
type CloudWriter interface {
	io.WriteCloser
}

// CloudWriterFactory opens writers for objects in a bucket.
type CloudWriterFactory interface {
	NewWriter(bucket, objectPath string) (CloudWriter, error)
}

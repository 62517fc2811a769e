// Package artifact persists compiled artifacts.
package artifact

import "context"

// Writer persists one artifact under name. Implementations decide what a
// name means: a filesystem path for FileStore, an object key for S3Store.
type Writer interface {
	Write(ctx context.Context, name string, content []byte) error
}

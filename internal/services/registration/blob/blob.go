// Package blob stores uploaded participant files and serves their public URLs.
package blob

import "context"

// Store persists uploaded file contents under a relative name and returns the
// public URL the file is reachable at.
type Store interface {
	Save(ctx context.Context, name string, data []byte) (string, error)
}

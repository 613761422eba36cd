// Package storage holds the object stores lesson images are published to.
package storage

import (
	"context"
	"errors"
	"io"
	"mime"
	"path"
	"strings"
)

// ErrObjectNotFound is returned by Open for unknown keys.
var ErrObjectNotFound = errors.New("storage: object not found")

// ObjectStore stores objects under flat or slash-separated keys and resolves
// their public URL.
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	PublicURL(key string) string
}

func contentTypeForKey(key string) string {
	if ct := mime.TypeByExtension(strings.ToLower(path.Ext(key))); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

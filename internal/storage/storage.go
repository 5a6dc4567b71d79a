package storage

import (
	"context"
	"fmt"
	"io"
	"time"
)

// MediaStore persists uploaded images and returns the URL to record on
// the post.
type MediaStore interface {
	// Save stores the image under name and returns its public URL.
	Save(ctx context.Context, name string, contentType string, body io.Reader) (string, error)
}

// ObjectName derives the stored filename from the upload time and the
// client's original filename, `<unix-millis>-<original>`. Collisions
// between same-named files uploaded in the same millisecond are accepted.
func ObjectName(now time.Time, original string) string {
	return fmt.Sprintf("%d-%s", now.UnixMilli(), original)
}

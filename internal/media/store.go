// Package media abstracts the remote image host: callers hand over raw
// bytes plus a transformation recipe and get back a durable URL and an
// asset identifier usable for later deletion.
package media

import (
	"context"
	"io"
	"time"
)

// Asset is the stored result of an upload.
type Asset struct {
	SecureURL string `json:"secureUrl"`
	PublicID  string `json:"publicId"`
}

// Transform is one step of a transformation recipe applied before the
// image is stored.
type Transform struct {
	Width   int
	Height  int
	Crop    string
	Gravity string
	Quality int
}

type UploadOptions struct {
	PublicID       string
	Folder         string
	Format         string
	Transformation []Transform
	// Timeout bounds a single upload; zero means no explicit limit. Batch
	// jobs set a generous one.
	Timeout time.Duration
}

type Store interface {
	Upload(ctx context.Context, r io.Reader, opts UploadOptions) (*Asset, error)
	Delete(ctx context.Context, publicID string) error
}

package service

import (
	"context"
	"io"
)

type Uploader interface {
	// Upload stores file as a raw asset and returns its secure URL.
	Upload(ctx context.Context, file io.Reader, folder string, publicID string) (string, error)
}

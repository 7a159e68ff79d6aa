package port

import (
	"context"
	"io"
)

// UploadInput describes one uploaded export file.
type UploadInput struct {
	Bucket      string
	Key         string
	Body        io.Reader
	ContentType string
	Size        int64
	// Metadata is stored with the object as user-defined headers.
	Metadata map[string]string
}

// UploadOutput contains the result of a successful upload.
type UploadOutput struct {
	Location string
	ETag     string
}

// ObjectStorage keeps the original export files next to their parsed rows.
type ObjectStorage interface {
	Upload(ctx context.Context, input UploadInput) (*UploadOutput, error)
	Download(ctx context.Context, bucket, key string) ([]byte, error)
	Delete(ctx context.Context, bucket, key string) error
	// GetPresignedURL returns a time-limited GET URL that downloads as fileName.
	GetPresignedURL(ctx context.Context, bucket, key, fileName string, expirySeconds int64) (string, error)
}

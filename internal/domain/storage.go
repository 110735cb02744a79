package domain

import (
	"context"
	"time"
)

// Bucket is a handle to a remote bucket that passed validation.
type Bucket interface {
	Name() string
	Upload(ctx context.Context, localPath string, remoteName string) error
	Delete(ctx context.Context, remoteName string) error
	GetOldFiles(ctx context.Context, prefix string, cutoffTime time.Time) ([]string, error)
}

// BucketStore opens bucket handles. Head returns an error when the bucket
// does not exist or cannot be written to.
type BucketStore interface {
	Head(ctx context.Context, bucketName string) (Bucket, error)
}

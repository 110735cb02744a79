package usecase

import (
	"context"

	"github.com/semmidev/stowaway/internal/domain"
)

// ValidateBucket returns a handle when the bucket exists and is writable,
// nil otherwise. Every failure, including transport errors, counts as invalid.
func ValidateBucket(ctx context.Context, store domain.BucketStore, bucketName string, logger Logger) domain.Bucket {
	bucket, err := store.Head(ctx, bucketName)
	if err != nil || bucket == nil {
		logger.Errorf("Bucket %s is not usable: %v", bucketName, err)
		return nil
	}

	logger.Infof("Bucket %s exists and is writable", bucketName)
	return bucket
}

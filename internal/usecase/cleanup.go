package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/semmidev/stowaway/internal/domain"
)

// Cleanup prunes objects older than the retention window. It only touches
// names produced by the job's own prefix.
type Cleanup struct {
	logger Logger
	now    func() time.Time
}

func NewCleanup(logger Logger) *Cleanup {
	return &Cleanup{
		logger: logger,
		now:    time.Now,
	}
}

func (uc *Cleanup) Execute(ctx context.Context, bucket domain.Bucket, prefix *string, retentionDays int) error {
	if retentionDays <= 0 {
		return nil
	}

	cutoff := uc.now().AddDate(0, 0, -retentionDays)
	uc.logger.Infof("Starting cleanup of %s, retention: %d days", bucket.Name(), retentionDays)

	files, err := bucket.GetOldFiles(ctx, namePrefix(prefix), cutoff)
	if err != nil {
		return fmt.Errorf("list old backups: %w", err)
	}

	deleted := 0
	for _, filename := range files {
		uc.logger.Infof("Deleting old backup from %s: %s", bucket.Name(), filename)

		if err := bucket.Delete(ctx, filename); err != nil {
			uc.logger.Errorf("Failed to delete %s from %s: %v", filename, bucket.Name(), err)
		} else {
			deleted++
		}
	}

	uc.logger.Infof("Deleted %d old backup(s) from %s", deleted, bucket.Name())
	return nil
}

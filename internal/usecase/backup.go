package usecase

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/semmidev/stowaway/internal/domain"
)

type Backup struct {
	store      domain.BucketStore
	archiver   domain.Archiver
	uploader   *Uploader
	cleanup    *Cleanup
	notifier   *Notifier
	logger     Logger
	scratchDir string
	now        func() time.Time
}

type Logger interface {
	Infof(template string, args ...interface{})
	Errorf(template string, args ...interface{})
	Warnf(template string, args ...interface{})
}

type BackupOption func(*Backup)

// WithScratchParent sets where the per-run scratch directory is created.
// The default is the system temp directory.
func WithScratchParent(dir string) BackupOption {
	return func(b *Backup) { b.scratchDir = dir }
}

func WithClock(now func() time.Time) BackupOption {
	return func(b *Backup) { b.now = now }
}

func NewBackup(
	store domain.BucketStore,
	archiver domain.Archiver,
	notifier *Notifier,
	logger Logger,
	opts ...BackupOption,
) *Backup {
	b := &Backup{
		store:    store,
		archiver: archiver,
		uploader: NewUploader(logger),
		cleanup:  NewCleanup(logger),
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.cleanup.now = b.now
	return b
}

// Execute runs one backup job: validate the bucket, filter the folders, then
// archive and upload each folder in turn. Only configuration problems abort
// the run; per-folder failures end up in the report.
func (uc *Backup) Execute(ctx context.Context, job domain.BackupJob) (*domain.Report, error) {
	start := uc.now()

	bucket := ValidateBucket(ctx, uc.store, job.BucketName, uc.logger)
	if bucket == nil {
		return nil, fmt.Errorf("%w: invalid target bucket %s", ErrConfiguration, job.BucketName)
	}

	folders := FilterFolders(job.Folders)
	if len(folders) == 0 {
		uc.logger.Errorf("None of the %d supplied folder path(s) is an existing directory", len(job.Folders))
		return nil, fmt.Errorf("%w: none of the supplied folder paths are valid", ErrConfiguration)
	}
	uc.logger.Infof("%d of %d folder(s) selected for backup", len(folders), len(job.Folders))

	scratch, err := os.MkdirTemp(uc.scratchDir, "stowaway-")
	if err != nil {
		return nil, fmt.Errorf("create scratch dir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(scratch); err != nil {
			uc.logger.Warnf("Failed to remove scratch dir %s: %v", scratch, err)
		}
	}()

	var tag *string
	if job.AddTimestamp {
		t := TimestampTag(start)
		tag = &t
	}

	report := &domain.Report{Bucket: bucket.Name()}
	for _, folder := range folders {
		report.Records = append(report.Records, uc.backupFolder(ctx, bucket, folder, scratch, job.Prefix, tag))
	}

	// Old backups are only pruned once this run has stored at least one new one.
	if report.Failed() == len(report.Records) {
		if job.RetentionDays > 0 {
			uc.logger.Warnf("Skipping retention cleanup for %s: no folder was uploaded", bucket.Name())
		}
	} else if err := uc.cleanup.Execute(ctx, bucket, job.Prefix, job.RetentionDays); err != nil {
		uc.logger.Errorf("Cleanup failed for %s: %v", bucket.Name(), err)
	}

	uc.notifier.Notify(ctx, report, job.Recipients)

	uc.logger.Infof("Backup to %s finished in %s: %d succeeded, %d failed",
		bucket.Name(), time.Since(start).Round(time.Millisecond),
		len(report.Records)-report.Failed(), report.Failed())

	return report, nil
}

func (uc *Backup) backupFolder(
	ctx context.Context,
	bucket domain.Bucket,
	folder, scratch string,
	prefix, tag *string,
) domain.UploadRecord {
	base := filepath.Base(folder) + ".zip"
	remoteName := UploadName(prefix, tag, base)

	uc.logger.Infof("[%s] Compressing...", folder)
	archivePath, err := uc.archiver.Archive(folder, scratch)
	if err != nil {
		uc.logger.Errorf("[%s] Failed to archive: %v", folder, err)
		return domain.UploadRecord{
			Folder:     folder,
			Bucket:     bucket.Name(),
			RemoteName: remoteName,
			Err:        fmt.Errorf("archive: %w", err),
		}
	}

	archive := domain.Archive{
		Path:       archivePath,
		ScratchDir: scratch,
		SourceDir:  folder,
		FolderName: filepath.Base(folder),
	}

	return uc.uploader.Upload(ctx, bucket, archive, UploadName(prefix, tag, filepath.Base(archivePath)))
}

package usecase

import (
	"context"
	"os"
	"path/filepath"

	"github.com/semmidev/stowaway/internal/domain"
)

type Uploader struct {
	logger Logger
}

func NewUploader(logger Logger) *Uploader {
	return &Uploader{logger: logger}
}

// Upload sends one archive to the bucket. The local archive is removed on
// every return path, including a panic inside the storage call.
func (u *Uploader) Upload(ctx context.Context, bucket domain.Bucket, archive domain.Archive, remoteName string) domain.UploadRecord {
	record := domain.UploadRecord{
		Folder:      archive.SourceDir,
		ArchivePath: archive.Path,
		Bucket:      bucket.Name(),
		RemoteName:  remoteName,
	}

	defer func() {
		if err := os.Remove(archive.Path); err != nil && !os.IsNotExist(err) {
			u.logger.Warnf("Failed to remove local archive %s: %v", archive.Path, err)
		}
	}()

	if err := bucket.Upload(ctx, archive.Path, remoteName); err != nil {
		u.logger.Errorf("Failed to upload %s to bucket %s: %v", filepath.Base(archive.Path), bucket.Name(), err)
		record.Err = err
		return record
	}

	record.Success = true
	u.logger.Infof("Uploaded %s to bucket %s as %s", filepath.Base(archive.Path), bucket.Name(), remoteName)

	return record
}

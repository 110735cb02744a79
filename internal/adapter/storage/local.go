package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/semmidev/stowaway/internal/domain"
)

// LocalStore treats each subdirectory of root as a bucket.
type LocalStore struct {
	root string
}

func NewLocalStore(root string) (*LocalStore, error) {
	if root == "" {
		return nil, fmt.Errorf("local storage root is required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve local root: %w", err)
	}
	return &LocalStore{root: abs}, nil
}

func (l *LocalStore) Head(ctx context.Context, bucketName string) (domain.Bucket, error) {
	if bucketName == "" || bucketName == "." || bucketName == ".." ||
		strings.ContainsAny(bucketName, `/\`) {
		return nil, fmt.Errorf("invalid bucket name %q", bucketName)
	}

	basePath := filepath.Join(l.root, bucketName)

	info, err := os.Stat(basePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrBucketNotFound, bucketName)
		}
		return nil, fmt.Errorf("failed to stat bucket %s: %w", bucketName, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrBucketNotFound, bucketName)
	}

	probe, err := os.CreateTemp(basePath, ".write-test-*")
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrBucketForbidden, bucketName, err)
	}
	probe.Close()
	os.Remove(probe.Name())

	return &LocalBucket{name: bucketName, basePath: basePath}, nil
}

type LocalBucket struct {
	name     string
	basePath string
}

func (l *LocalBucket) Name() string {
	return l.name
}

func (l *LocalBucket) Upload(ctx context.Context, localPath string, remoteName string) error {
	destPath, err := l.objectPath(remoteName)
	if err != nil {
		return err
	}

	source, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("failed to open source: %w", err)
	}
	defer source.Close()

	dest, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create dest: %w", err)
	}

	if _, err := dest.ReadFrom(source); err != nil {
		dest.Close()
		os.Remove(destPath)
		return fmt.Errorf("failed to copy: %w", err)
	}

	if err := dest.Close(); err != nil {
		return fmt.Errorf("failed to close dest: %w", err)
	}

	return nil
}

func (l *LocalBucket) Delete(ctx context.Context, remoteName string) error {
	filePath, err := l.objectPath(remoteName)
	if err != nil {
		return err
	}
	if err := os.Remove(filePath); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (l *LocalBucket) GetOldFiles(ctx context.Context, prefix string, cutoffTime time.Time) ([]string, error) {
	entries, err := os.ReadDir(l.basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var oldFiles []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), prefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("failed to get file info for %s: %w", entry.Name(), err)
		}
		if info.ModTime().Before(cutoffTime) {
			oldFiles = append(oldFiles, entry.Name())
		}
	}

	return oldFiles, nil
}

// objectPath keeps object names flat inside the bucket directory.
func (l *LocalBucket) objectPath(remoteName string) (string, error) {
	if remoteName == "" || strings.ContainsAny(remoteName, `/\`) || remoteName == ".." {
		return "", fmt.Errorf("invalid object name %q", remoteName)
	}
	return filepath.Join(l.basePath, remoteName), nil
}

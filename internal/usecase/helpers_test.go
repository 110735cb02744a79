package usecase

import (
	"context"
	"errors"
	"os"
	"sync"
	"time"

	"github.com/semmidev/stowaway/internal/domain"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedLogger() (*zap.SugaredLogger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core).Sugar(), logs
}

type fakeBucket struct {
	mu        sync.Mutex
	name      string
	uploadErr error
	panicOn   string
	uploads   map[string][]byte
	calls     []string
	oldFiles  []string
	deleted   []string
	listErr   error
}

func newFakeBucket(name string) *fakeBucket {
	return &fakeBucket{name: name, uploads: map[string][]byte{}}
}

func (b *fakeBucket) Name() string { return b.name }

func (b *fakeBucket) Upload(ctx context.Context, localPath string, remoteName string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.calls = append(b.calls, remoteName)
	if remoteName == b.panicOn {
		panic("transport exploded")
	}
	if b.uploadErr != nil {
		return b.uploadErr
	}
	data, err := os.ReadFile(localPath)
	if err != nil {
		return err
	}
	b.uploads[remoteName] = data
	return nil
}

func (b *fakeBucket) Delete(ctx context.Context, remoteName string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deleted = append(b.deleted, remoteName)
	return nil
}

func (b *fakeBucket) GetOldFiles(ctx context.Context, prefix string, cutoffTime time.Time) ([]string, error) {
	if b.listErr != nil {
		return nil, b.listErr
	}
	return b.oldFiles, nil
}

type fakeStore struct {
	buckets map[string]*fakeBucket
	heads   int
}

func (s *fakeStore) Head(ctx context.Context, bucketName string) (domain.Bucket, error) {
	s.heads++
	if b, ok := s.buckets[bucketName]; ok {
		return b, nil
	}
	return nil, errors.New("bucket not found")
}

type fakeArchiver struct {
	calls int
	err   error
}

func (a *fakeArchiver) Archive(sourceDir, destDir string) (string, error) {
	a.calls++
	return "", a.err
}

type fakeSender struct {
	err        error
	messages   []domain.Message
	recipients [][]string
}

func (s *fakeSender) Send(ctx context.Context, msg domain.Message, recipients []string) error {
	s.messages = append(s.messages, msg)
	s.recipients = append(s.recipients, recipients)
	return s.err
}

package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	s3manager "github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	appconfig "github.com/semmidev/stowaway/internal/config"
	"github.com/semmidev/stowaway/internal/domain"
)

var (
	ErrBucketNotFound  = errors.New("bucket not found")
	ErrBucketForbidden = errors.New("bucket access forbidden")
)

type S3Store struct {
	client   *s3.Client
	uploader *s3manager.Uploader
}

// NewS3Store creates an S3 client from the default AWS credential chain,
// overridden by whatever the storage config sets explicitly.
func NewS3Store(ctx context.Context, cfg *appconfig.StorageConfig) (*S3Store, error) {
	var loadOpts []func(*config.LoadOptions) error

	if cfg.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(cfg.Region))
	}

	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	if awsCfg.Region == "" {
		awsCfg.Region = "us-east-1"
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.ForcePathStyle
	})

	return &S3Store{
		client:   client,
		uploader: s3manager.NewUploader(client),
	}, nil
}

// Head checks that the bucket exists and that the caller may access it.
func (s *S3Store) Head(ctx context.Context, bucketName string) (domain.Bucket, error) {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(bucketName),
	})
	if err != nil {
		return nil, classifyHeadError(bucketName, err)
	}

	return &S3Bucket{
		client:   s.client,
		uploader: s.uploader,
		name:     bucketName,
	}, nil
}

func classifyHeadError(bucketName string, err error) error {
	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) {
		switch respErr.HTTPStatusCode() {
		case http.StatusNotFound:
			return fmt.Errorf("%w: %s", ErrBucketNotFound, bucketName)
		case http.StatusForbidden:
			return fmt.Errorf("%w: %s", ErrBucketForbidden, bucketName)
		}
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchBucket":
			return fmt.Errorf("%w: %s", ErrBucketNotFound, bucketName)
		case "Forbidden", "AccessDenied":
			return fmt.Errorf("%w: %s", ErrBucketForbidden, bucketName)
		}
	}

	return fmt.Errorf("failed to head bucket %s: %w", bucketName, err)
}

type S3Bucket struct {
	client   *s3.Client
	uploader *s3manager.Uploader
	name     string
}

func (b *S3Bucket) Name() string {
	return b.name
}

// Upload uploads a local file to the bucket under remoteName.
func (b *S3Bucket) Upload(ctx context.Context, localPath string, remoteName string) error {
	file, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	_, err = b.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(b.name),
		Key:         aws.String(remoteName),
		Body:        file,
		ContentType: aws.String("application/zip"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload to S3: %w", err)
	}

	return nil
}

// Delete removes an object from the bucket
func (b *S3Bucket) Delete(ctx context.Context, remoteName string) error {
	_, err := b.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.name),
		Key:    aws.String(remoteName),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from S3: %w", err)
	}

	return nil
}

// GetOldFiles returns the keys starting with prefix last modified before cutoffTime.
func (b *S3Bucket) GetOldFiles(ctx context.Context, prefix string, cutoffTime time.Time) ([]string, error) {
	paginator := s3.NewListObjectsV2Paginator(b.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(b.name),
		Prefix: aws.String(prefix),
	})

	var oldFiles []string
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list S3 objects: %w", err)
		}

		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if key == "" || !strings.HasPrefix(key, prefix) {
				continue
			}
			if obj.LastModified != nil && obj.LastModified.Before(cutoffTime) {
				oldFiles = append(oldFiles, key)
			}
		}
	}

	return oldFiles, nil
}

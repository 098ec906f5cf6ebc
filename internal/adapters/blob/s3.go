package blob

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"eventshare/internal/domain"
)

// S3Config holds configuration for the S3-backed blob store.
type S3Config struct {
	Provider        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
}

// NewBlobStore creates a blob store from config. Provider "s3" uses AWS S3;
// "noop" or unknown uses a no-op store that only fabricates URLs.
func NewBlobStore(cfg S3Config) (domain.BlobStore, error) {
	switch cfg.Provider {
	case "s3":
		if cfg.Bucket == "" {
			return nil, fmt.Errorf("s3 blob store requires a bucket name")
		}
		awsCfg := aws.Config{
			Region: cfg.Region,
			Credentials: aws.NewCredentialsCache(
				credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
			),
		}
		return &s3Store{
			client: s3.NewFromConfig(awsCfg),
			bucket: cfg.Bucket,
			region: cfg.Region,
		}, nil
	default:
		return &noopStore{}, nil
	}
}

type s3Store struct {
	client *s3.Client
	bucket string
	region string
}

// Put uploads the body under a random key and returns the public object URL.
// The key keeps the original file extension so Content-Type sniffing on the
// CDN side still works.
func (s *s3Store) Put(ctx context.Context, body io.Reader, contentType, suggestedName string) (string, error) {
	ext := strings.ToLower(path.Ext(suggestedName))
	key := fmt.Sprintf("photos/%d-%s%s", time.Now().UnixMilli(), uuid.NewString(), ext)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to s3: %w", err)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key), nil
}

// Delete removes the object addressed by a URL previously returned from Put.
func (s *s3Store) Delete(ctx context.Context, blobURL string) error {
	u, err := url.Parse(blobURL)
	if err != nil {
		return fmt.Errorf("invalid blob url: %w", err)
	}
	key := strings.TrimPrefix(u.Path, "/")
	if key == "" {
		return fmt.Errorf("invalid blob url: empty key")
	}
	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from s3: %w", err)
	}
	return nil
}

// noopStore discards bytes and fabricates URLs. Used in development and
// tests where no S3 bucket is available.
type noopStore struct{}

func (n *noopStore) Put(ctx context.Context, body io.Reader, contentType, suggestedName string) (string, error) {
	if _, err := io.Copy(io.Discard, body); err != nil {
		return "", err
	}
	ext := strings.ToLower(path.Ext(suggestedName))
	return fmt.Sprintf("https://blob.invalid/photos/%s%s", uuid.NewString(), ext), nil
}

func (n *noopStore) Delete(ctx context.Context, blobURL string) error {
	return nil
}

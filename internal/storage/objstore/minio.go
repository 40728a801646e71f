package objstore

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/lmdl25/kenility-challenge/internal/config"
)

// UploadInput describes a single object upload.
type UploadInput struct {
	Body        io.Reader
	Size        int64
	ContentType string

	// BasePath structures storage, e.g. the product SKU. It is sanitized
	// before use.
	BasePath string

	// Filename is the original file name; only its extension is kept.
	Filename string
}

type UploadResult struct {
	Key string
	URL string
}

// Storage stores binary objects and resolves their public URLs.
type Storage interface {
	Upload(ctx context.Context, input UploadInput) (UploadResult, error)
}

var _ Storage = (*MinioStorage)(nil)

type MinioStorage struct {
	client      *minio.Client
	bucket      string
	externalURL string
}

// NewMinioStorage creates a storage client against the configured MinIO
// endpoint and verifies the bucket exists.
func NewMinioStorage(ctx context.Context, cfg config.Minio) (*MinioStorage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	checkCtx, checkCancel := context.WithTimeout(ctx, 5*time.Second)
	defer checkCancel()

	exists, err := client.BucketExists(checkCtx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("bucket %q does not exist", cfg.Bucket)
	}

	return &MinioStorage{
		client:      client,
		bucket:      cfg.Bucket,
		externalURL: strings.TrimRight(cfg.ExternalURL, "/"),
	}, nil
}

func (s *MinioStorage) Upload(ctx context.Context, input UploadInput) (UploadResult, error) {
	key := ObjectKey(input.BasePath, input.Filename, time.Now())

	if _, err := s.client.PutObject(ctx, s.bucket, key, input.Body, input.Size,
		minio.PutObjectOptions{ContentType: input.ContentType},
	); err != nil {
		return UploadResult{}, fmt.Errorf("put object %q: %w", key, err)
	}

	return UploadResult{
		Key: key,
		URL: fmt.Sprintf("%s/%s", s.externalURL, key),
	}, nil
}

var basePathSanitizer = regexp.MustCompile(`[^a-zA-Z0-9-_]`)

// ObjectKey derives a storage key from a sanitized base path, a millisecond
// timestamp and the original file extension.
func ObjectKey(basePath, filename string, now time.Time) string {
	ext := "bin"
	if idx := strings.LastIndex(filename, "."); idx >= 0 && idx < len(filename)-1 {
		ext = filename[idx+1:]
	}

	sanitized := basePathSanitizer.ReplaceAllString(basePath, "_")

	return fmt.Sprintf("%s/%d.%s", sanitized, now.UnixMilli(), ext)
}

package mediastore

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/eduadmin/school-backend/pkg/accounts"
)

type MediaStoreConfig struct {
	Endpoint      string `json:"endpoint" yaml:"endpoint"`
	AccessKey     string `json:"access_key" yaml:"access_key"`
	SecretKey     string `json:"secret_key" yaml:"secret_key"`
	Bucket        string `json:"bucket" yaml:"bucket"`
	UseSSL        bool   `json:"use_ssl" yaml:"use_ssl"`
	PublicBaseURL string `json:"public_base_url" yaml:"public_base_url"`
	Timeout       int    `json:"timeout" yaml:"timeout"` // seconds
}

// MinioMediaStore stores profile images on a MinIO / S3 compatible host. It
// satisfies the media store collaborator of the credential lifecycle.
type MinioMediaStore struct {
	client        *minio.Client
	bucket        string
	publicBaseURL string
	timeout       time.Duration
}

func NewMinioMediaStore(config MediaStoreConfig) (*MinioMediaStore, error) {
	client, err := minio.New(config.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(config.AccessKey, config.SecretKey, ""),
		Secure: config.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("init media store client: %w", err)
	}

	timeout := time.Duration(config.Timeout) * time.Second
	if config.Timeout <= 0 {
		timeout = 30 * time.Second
	}

	publicBaseURL := config.PublicBaseURL
	if publicBaseURL == "" {
		scheme := "http"
		if config.UseSSL {
			scheme = "https"
		}
		publicBaseURL = scheme + "://" + config.Endpoint
	}

	ms := &MinioMediaStore{
		client:        client,
		bucket:        config.Bucket,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		timeout:       timeout,
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	exists, err := client.BucketExists(ctx, config.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check media bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, config.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create media bucket: %w", err)
		}
	}
	return ms, nil
}

// Upload stores the image under objectID and returns the stable reference.
func (ms *MinioMediaStore) Upload(ctx context.Context, objectID string, content io.Reader, size int64, contentType string) (accounts.Photo, error) {
	ctx, cancel := context.WithTimeout(ctx, ms.timeout)
	defer cancel()

	_, err := ms.client.PutObject(ctx, ms.bucket, objectID, content, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return accounts.Photo{}, fmt.Errorf("upload image: %w", err)
	}

	return accounts.Photo{
		ExternalID: objectID,
		URL:        ms.publicBaseURL + "/" + ms.bucket + "/" + objectID,
	}, nil
}

// Delete removes the image by its stable reference.
func (ms *MinioMediaStore) Delete(ctx context.Context, externalID string) error {
	ctx, cancel := context.WithTimeout(ctx, ms.timeout)
	defer cancel()

	if err := ms.client.RemoveObject(ctx, ms.bucket, externalID, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("delete image: %w", err)
	}
	return nil
}

// Package storage mirrors written transcripts to S3-compatible object storage.
package storage

import (
	"context"
	"fmt"
	"path"
	"path/filepath"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"audio-transcriber/internal/config"
)

// Mirror uploads a local artifact and returns its object key.
type Mirror interface {
	Upload(ctx context.Context, localPath string) (string, error)
}

type objectStore interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	FPutObject(ctx context.Context, bucketName, objectName, filePath string, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// MinioMirror implements Mirror using MinIO
type MinioMirror struct {
	client objectStore
	bucket string
	prefix string
}

// NewMinioMirror creates the client and ensures the bucket exists.
func NewMinioMirror(ctx context.Context, cfg config.MirrorConfig) (*MinioMirror, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}
	return newMirror(ctx, client, cfg.Bucket, cfg.Prefix)
}

func newMirror(ctx context.Context, client objectStore, bucket, prefix string) (*MinioMirror, error) {
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}
	return &MinioMirror{client: client, bucket: bucket, prefix: prefix}, nil
}

// ObjectKey is <prefix>/<artifact name>, or the bare name without a prefix.
func (m *MinioMirror) ObjectKey(localPath string) string {
	name := filepath.Base(localPath)
	if m.prefix == "" {
		return name
	}
	return path.Join(m.prefix, name)
}

func (m *MinioMirror) Upload(ctx context.Context, localPath string) (string, error) {
	key := m.ObjectKey(localPath)
	_, err := m.client.FPutObject(ctx, m.bucket, key, localPath, minio.PutObjectOptions{
		ContentType: "text/plain; charset=utf-8",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s to MinIO: %w", localPath, err)
	}
	return key, nil
}

package minioServer

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/gofrs/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"imageproxy/internal/config"
	"imageproxy/internal/storage"
	"imageproxy/internal/structs/models"
)

const (
	vectorizedPrefix = "vectorized/"
	vectorizedExt    = ".svg"
	noSuchKey        = "NoSuchKey"
)

// MinioProvider keeps vectorized results in an S3 compatible bucket.
type MinioProvider struct {
	client *minio.Client
	bucket string
}

func New(ctx context.Context, cfg config.Archive) (*MinioProvider, error) {
	const op = "storage.minio.New"

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: !cfg.Insecure,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	return &MinioProvider{client: client, bucket: cfg.Bucket}, nil
}

// NewID returns a fresh id for an archived result.
func NewID() (string, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// ObjectName maps an archive id to its object key.
func ObjectName(id string) (string, error) {
	parsed, err := uuid.FromString(id)
	if err != nil {
		return "", storage.ErrInvalidID
	}
	return vectorizedPrefix + parsed.String() + vectorizedExt, nil
}

// UploadImage stores image under image.Name.
func (m *MinioProvider) UploadImage(ctx context.Context, image models.Image) error {
	const op = "storage.minio.UploadImage"

	_, err := m.client.PutObject(ctx, m.bucket, image.Name, bytes.NewReader(image.Payload), image.Size,
		minio.PutObjectOptions{ContentType: image.ContentType})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// DownloadImage opens the object called name. The caller closes the reader.
func (m *MinioProvider) DownloadImage(ctx context.Context, name string) (io.ReadCloser, string, error) {
	const op = "storage.minio.DownloadImage"

	obj, err := m.client.GetObject(ctx, m.bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, mapErr(err))
	}

	// GetObject is lazy, Stat surfaces a missing key
	info, err := obj.Stat()
	if err != nil {
		obj.Close()
		return nil, "", fmt.Errorf("%s: %w", op, mapErr(err))
	}

	return obj, info.ContentType, nil
}

func mapErr(err error) error {
	if minio.ToErrorResponse(err).Code == noSuchKey {
		return storage.ErrImageNotFound
	}
	return err
}

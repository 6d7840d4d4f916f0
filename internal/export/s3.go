package export

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/bstardust/photo-geotagger/internal/config"
	"github.com/bstardust/photo-geotagger/internal/logger"
)

// Client uploads processed images to S3-compatible storage.
type Client struct {
	minio  *minio.Client
	bucket string
	prefix string
}

// New creates an export client and verifies the bucket exists.
func New(ctx context.Context, cfg config.S3Config) (*Client, error) {
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 client: %w", err)
	}

	exists, err := mc.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("bucket %s does not exist", cfg.Bucket)
	}

	return &Client{minio: mc, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

// UploadFiles uploads the named files from folder. Per-file failures
// are logged and counted but do not stop the export.
func (c *Client) UploadFiles(ctx context.Context, folder string, names []string) (uploaded int, err error) {
	for _, name := range names {
		if ctx.Err() != nil {
			return uploaded, ctx.Err()
		}

		key := c.objectKey(name)
		path := filepath.Join(folder, name)
		_, err := c.minio.FPutObject(ctx, c.bucket, key, path, minio.PutObjectOptions{
			ContentType: contentType(name),
		})
		if err != nil {
			logger.Error("Failed to upload %s: %v", name, err)
			continue
		}
		logger.Debug("Uploaded %s to s3://%s/%s", name, c.bucket, key)
		uploaded++
	}
	return uploaded, nil
}

func (c *Client) objectKey(name string) string {
	if c.prefix == "" {
		return name
	}
	return strings.TrimSuffix(c.prefix, "/") + "/" + name
}

func contentType(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".tif", ".tiff":
		return "image/tiff"
	case ".heic", ".hif":
		return "image/heic"
	default:
		return "application/octet-stream"
	}
}

package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"path"

	"pagechat/pagechat/config"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinIOClient archives screenshots received by the relay.
type MinIOClient struct {
	client *minio.Client
	bucket string
}

func NewMinIOClient(ctx context.Context, cfg config.Config) (*MinIOClient, error) {
	client, err := minio.New(
		cfg.MinIOEndpoint,
		&minio.Options{
			Creds:  credentials.NewStaticV4(cfg.MinIOAccessKey, cfg.MinIOSecretKey, ""),
			Secure: cfg.MinIOUseSSL,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}
	// Create bucket if not exists
	exists, err := client.BucketExists(ctx, cfg.MinIOBucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.MinIOBucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinIOBucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("make bucket %s: %w", cfg.MinIOBucket, err)
		}
	}
	return &MinIOClient{client: client, bucket: cfg.MinIOBucket}, nil
}

// UploadScreenshot stores one base64 screenshot under the session's prefix
// and returns the object key.
func (m *MinIOClient) UploadScreenshot(ctx context.Context, sessionID, b64 string) (string, error) {
	obj, err := newScreenshotObject(sessionID, b64)
	if err != nil {
		return "", err
	}
	_, err = m.client.PutObject(ctx, m.bucket, obj.key, bytes.NewReader(obj.data), int64(len(obj.data)),
		minio.PutObjectOptions{ContentType: obj.contentType})
	if err != nil {
		return "", fmt.Errorf("put %s: %w", obj.key, err)
	}
	return obj.key, nil
}

type screenshotObject struct {
	key         string
	data        []byte
	contentType string
}

func newScreenshotObject(sessionID, b64 string) (screenshotObject, error) {
	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return screenshotObject{}, fmt.Errorf("decode screenshot: %w", err)
	}
	contentType := http.DetectContentType(data)
	ext := ".bin"
	switch contentType {
	case "image/jpeg":
		ext = ".jpg"
	case "image/png":
		ext = ".png"
	case "image/webp":
		ext = ".webp"
	}
	return screenshotObject{
		key:         path.Join("screenshots", sessionID, uuid.NewString()+ext),
		data:        data,
		contentType: contentType,
	}, nil
}

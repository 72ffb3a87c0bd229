// internal/profile/upload.go

package profile

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"
)

// maxAvatarBytes caps avatar uploads at 5 MB.
const maxAvatarBytes = 5 << 20

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// Uploader stores an image and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, userID string, contentType string, data []byte) (string, error)
}

// S3Uploader stores avatars in an S3 bucket.
type S3Uploader struct {
	client *s3.S3
	bucket string
	region string
}

// NewS3Uploader creates an S3-backed uploader.
func NewS3Uploader(region, accessKeyID, secretAccessKey, bucket string) (*S3Uploader, error) {
	sess, err := session.NewSession(&aws.Config{
		Region:      aws.String(region),
		Credentials: credentials.NewStaticCredentials(accessKeyID, secretAccessKey, ""),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &S3Uploader{
		client: s3.New(sess),
		bucket: bucket,
		region: region,
	}, nil
}

func (u *S3Uploader) Upload(ctx context.Context, userID string, contentType string, data []byte) (string, error) {
	ext, ok := allowedImageTypes[contentType]
	if !ok {
		return "", ErrUnsupportedImage
	}

	key := fmt.Sprintf("avatars/%s/%s%s", userID, uuid.New().String(), ext)

	_, err := u.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", u.bucket, u.region, key), nil
}

// LocalUploader writes avatars to a directory on disk. Used in development
// when no S3 credentials are configured.
type LocalUploader struct {
	dir     string
	baseURL string
}

// NewLocalUploader creates a disk-backed uploader rooted at dir.
func NewLocalUploader(dir, baseURL string) (*LocalUploader, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &LocalUploader{dir: dir, baseURL: baseURL}, nil
}

func (u *LocalUploader) Upload(ctx context.Context, userID string, contentType string, data []byte) (string, error) {
	ext, ok := allowedImageTypes[contentType]
	if !ok {
		return "", ErrUnsupportedImage
	}

	name := fmt.Sprintf("%s-%s%s", userID, uuid.New().String(), ext)
	if err := os.WriteFile(filepath.Join(u.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write upload: %w", err)
	}

	return fmt.Sprintf("%s/uploads/%s", u.baseURL, name), nil
}

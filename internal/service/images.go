package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/Harshavardhan-28/AI-agents-assemble/backend/config"
)

// presignTTL must outlive the longest pipeline run
const presignTTL = time.Hour

var errNotDataURL = errors.New("not a data URL")

type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3ImageStore uploads fridge photos sent as data URLs and hands the engine a
// presigned GET URL instead of the inline bytes.
type S3ImageStore struct {
	client  objectPutter
	bucket  string
	presign func(ctx context.Context, key string) (string, error)
	logger  *slog.Logger
}

// NewS3ImageStore creates an uploader for the bucket in s3cfg
func NewS3ImageStore(s3cfg *config.S3Config, logger *slog.Logger) *S3ImageStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &S3ImageStore{
		client: s3cfg.Client,
		bucket: s3cfg.BucketName,
		presign: func(ctx context.Context, key string) (string, error) {
			return s3cfg.GeneratePresignedURL(ctx, key, presignTTL)
		},
		logger: logger,
	}
}

// Upload stores a data URL image and returns a presigned URL for it. Any
// other value is assumed to be a URL already and returned unchanged.
func (s *S3ImageStore) Upload(ctx context.Context, userID, image string) (string, error) {
	contentType, data, err := parseDataURL(image)
	if errors.Is(err, errNotDataURL) {
		return image, nil
	}
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("fridge/%s/%s%s", userID, uuid.NewString(), extension(contentType))
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload fridge image: %w", err)
	}

	url, err := s.presign(ctx, key)
	if err != nil {
		return "", fmt.Errorf("failed to presign fridge image: %w", err)
	}
	s.logger.Info("uploaded fridge image", "user_id", userID, "key", key, "bytes", len(data))
	return url, nil
}

// parseDataURL decodes data:{type};base64,{payload}
func parseDataURL(s string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return "", nil, errNotDataURL
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("%w: malformed data URL", ErrInvalidInput)
	}
	contentType, isBase64 := strings.CutSuffix(meta, ";base64")
	if !isBase64 {
		return "", nil, fmt.Errorf("%w: data URL must be base64 encoded", ErrInvalidInput)
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: invalid data URL payload: %v", ErrInvalidInput, err)
	}
	return contentType, data, nil
}

func extension(contentType string) string {
	switch contentType {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	}
	return ""
}

package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"recipegram-backend/config"
)

// ImageService stores recipe images. Clients submit images inline as
// "data:image/<type>;base64,<payload>" strings; the decoded bytes go to S3
// and the recipe keeps only the resulting URL.
type ImageService struct {
	s3Config *config.S3Config
	logger   *zap.Logger
}

// NewImageService creates a new ImageService instance.
func NewImageService(s3Config *config.S3Config, logger *zap.Logger) *ImageService {
	return &ImageService{s3Config: s3Config, logger: logger}
}

// IsDataURL reports whether the value is an inline base64 image rather than
// an already-stored URL.
func IsDataURL(value string) bool {
	return strings.HasPrefix(value, "data:image/")
}

// StoreBase64 decodes a data URL and uploads the image, returning its public
// URL.
func (s *ImageService) StoreBase64(ctx context.Context, dataURL string) (string, error) {
	contentType, data, err := decodeDataURL(dataURL)
	if err != nil {
		return "", err
	}

	ext := strings.TrimPrefix(contentType, "image/")
	key := fmt.Sprintf("recipe-images/%s.%s", uuid.New().String(), ext)

	_, err = s.s3Config.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3Config.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}

	url := fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.s3Config.BucketName, key)
	s.logger.Info("image stored", zap.String("url", url))
	return url, nil
}

func decodeDataURL(dataURL string) (contentType string, data []byte, err error) {
	rest, ok := strings.CutPrefix(dataURL, "data:")
	if !ok {
		return "", nil, fmt.Errorf("not a data URL")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("malformed data URL")
	}
	contentType = strings.TrimSuffix(meta, ";base64")
	if contentType == meta {
		return "", nil, fmt.Errorf("data URL is not base64 encoded")
	}
	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("failed to decode image payload: %w", err)
	}
	return contentType, data, nil
}

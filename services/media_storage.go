package services

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/ridgeline-labs/site-backend/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// MediaStorage uploads project media to an S3 bucket served from a public
// base URL.
type MediaStorage struct {
	client  objectPutter
	bucket  string
	baseURL string
	prefix  string
	logger  zerolog.Logger
}

// NewMediaStorage returns nil, nil when S3_BUCKET is unset.
func NewMediaStorage(ctx context.Context, cfg map[string]string) (*MediaStorage, error) {
	bucket := config.GetString(cfg, "S3_BUCKET", "")
	if bucket == "" {
		return nil, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	baseURL := config.GetString(cfg, "S3_PUBLIC_BASE_URL", "")
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.amazonaws.com", bucket)
	}

	return newMediaStorage(s3.NewFromConfig(awsCfg), bucket, baseURL, config.GetString(cfg, "S3_MEDIA_PREFIX", "projects")), nil
}

func newMediaStorage(client objectPutter, bucket, baseURL, prefix string) *MediaStorage {
	return &MediaStorage{
		client:  client,
		bucket:  bucket,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		prefix:  strings.Trim(prefix, "/"),
		logger:  log.With().Str("service", "s3").Logger(),
	}
}

// Upload stores body under a random key with the given extension and returns
// its public URL.
func (m *MediaStorage) Upload(ctx context.Context, body io.Reader, size int64, contentType, extension string) (string, error) {
	key := uuid.NewString()
	if extension != "" {
		key += "." + strings.TrimPrefix(extension, ".")
	}
	if m.prefix != "" {
		key = path.Join(m.prefix, key)
	}

	_, err := m.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(m.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
		CacheControl:  aws.String("public, max-age=31536000, immutable"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s to s3: %w", key, err)
	}

	url := m.baseURL + "/" + key
	m.logger.Info().Str("key", key).Str("contentType", contentType).Int64("size", size).Msg("Uploaded media")
	return url, nil
}

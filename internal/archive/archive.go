// Package archive stores uploaded quiz source documents in S3-compatible
// object storage so a generated quiz keeps a copy of the material it came
// from. Archival is best-effort and entirely optional.
package archive

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"intelliq/internal/config"
	"intelliq/internal/logger"
)

// Client uploads source documents to the configured bucket.
type Client struct {
	s3Client *s3.Client
	bucket   string
	log      *logger.Logger
}

// NewClient builds an archive client from config. It returns (nil, nil) when
// the archive is not configured; callers treat a nil client as "archival
// disabled".
func NewClient(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Client, error) {
	if !cfg.ArchiveEnabled() {
		log.Info("source archive not configured, uploads will be skipped")
		return nil, nil
	}

	endpoint := cfg.ArchiveEndpoint
	resolver := aws.EndpointResolverWithOptionsFunc(
		func(service, region string, options ...interface{}) (aws.Endpoint, error) {
			return aws.Endpoint{URL: endpoint}, nil
		})

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithEndpointResolverWithOptions(resolver),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.ArchiveAccessKeyID, cfg.ArchiveSecretAccessKey, "")),
		awsconfig.WithRegion("auto"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load SDK config for archive: %w", err)
	}

	log.Info("source archive initialized", "bucket", cfg.ArchiveBucket)
	return &Client{
		s3Client: s3.NewFromConfig(awsCfg),
		bucket:   cfg.ArchiveBucket,
		log:      log,
	}, nil
}

// Upload stores content under source/<quizID>/<filename> and returns the
// object key.
func (c *Client) Upload(ctx context.Context, quizID uuid.UUID, filename string, content io.Reader) (string, error) {
	if c == nil || c.s3Client == nil {
		return "", fmt.Errorf("archive client not initialized")
	}

	objectKey := fmt.Sprintf("source/%s/%s", quizID.String(), filepath.Base(filename))

	contentType := mime.TypeByExtension(filepath.Ext(filename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := c.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(objectKey),
		Body:        content,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload source document (key: %s): %w", objectKey, err)
	}

	c.log.Info("archived source document", "key", objectKey)
	return objectKey, nil
}

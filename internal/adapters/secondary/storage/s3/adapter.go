package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/rendis/esigncore/internal/port"
)

// Config holds the S3 adapter configuration.
type Config struct {
	Bucket       string
	Region       string
	Endpoint     string // non-empty for S3-compatible services (MinIO, LocalStack)
	UsePathStyle bool
	SignedURLTTL time.Duration
}

func (c Config) Validate() error {
	if c.Bucket == "" {
		return errors.New("s3: bucket is required")
	}
	return nil
}

// Adapter implements port.StorageAdapter for AWS S3 and compatible
// services.
type Adapter struct {
	client       *s3.Client
	bucket       string
	defaultTTL   time.Duration
}

func New(ctx context.Context, cfg Config) (port.StorageAdapter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("s3: loading aws config: %w", err)
	}

	var clientOpts []func(*s3.Options)
	if cfg.Endpoint != "" {
		clientOpts = append(clientOpts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	} else if cfg.UsePathStyle {
		clientOpts = append(clientOpts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}

	ttl := cfg.SignedURLTTL
	if ttl <= 0 {
		ttl = time.Hour
	}

	return &Adapter{
		client:     s3.NewFromConfig(awsCfg, clientOpts...),
		bucket:     cfg.Bucket,
		defaultTTL: ttl,
	}, nil
}

func (a *Adapter) Upload(ctx context.Context, blobName, contentType string, data io.Reader, size int64) error {
	input := &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(blobName),
		Body:          data,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	}

	if _, err := a.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("s3: uploading object %q: %w", blobName, err)
	}
	return nil
}

func (a *Adapter) Download(ctx context.Context, blobName string) ([]byte, error) {
	input := &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(blobName),
	}

	result, err := a.client.GetObject(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("s3: getting object %q: %w", blobName, err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("s3: reading object %q body: %w", blobName, err)
	}
	return data, nil
}

func (a *Adapter) SignedDownloadURL(ctx context.Context, blobName string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = a.defaultTTL
	}

	presignClient := s3.NewPresignClient(a.client)
	input := &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(blobName),
	}

	result, err := presignClient.PresignGetObject(ctx, input, func(opts *s3.PresignOptions) {
		opts.Expires = ttl
	})
	if err != nil {
		return "", fmt.Errorf("s3: presigning url for %q: %w", blobName, err)
	}
	return result.URL, nil
}

// Delete removes an object by key. A missing object is treated as success,
// since the cleanup task (delete_blobs) depends on delete being idempotent.
func (a *Adapter) Delete(ctx context.Context, blobName string) error {
	input := &s3.DeleteObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(blobName),
	}

	_, err := a.client.DeleteObject(ctx, input)
	if err == nil {
		return nil
	}

	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return nil
	}
	return fmt.Errorf("s3: deleting object %q: %w", blobName, err)
}

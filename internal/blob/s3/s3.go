// internal/blob/s3/s3.go
//
// S3-compatible blob backend.
//
// Context
// -------
// Production backend for gallery uploads.  Works against AWS S3 and
// S3-compatible services (MinIO) via an optional custom endpoint with
// path-style addressing.  Objects are written with their MIME type so the
// bucket can serve them directly as public images.
package s3

import (
	"context"
	"errors"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/beautybuilder/platform/internal/blob"
)

// Config holds the S3 backend settings.
type Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string // optional, for S3-compatible services
	UsePathStyle    bool
}

// Backend implements blob.Backend over the AWS SDK v2 client.
type Backend struct {
	client *s3.Client
	bucket string
}

// New constructs the backend and its underlying client.  When no static
// credentials are configured the default provider chain is used.
func New(ctx context.Context, cfg Config) (blob.Backend, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3: bucket name is required")
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = cfg.UsePathStyle
		}
	})

	return &Backend{client: client, bucket: cfg.Bucket}, nil
}

// Upload writes one object.
func (b *Backend) Upload(ctx context.Context, key string, r io.Reader, contentType string) error {
	_, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(b.bucket),
		Key:         aws.String(key),
		Body:        r,
		ContentType: aws.String(contentType),
	})
	return err
}

// Delete removes one object.  Deleting a missing key is not an error in
// S3, which suits Release's retry-once behaviour.
func (b *Backend) Delete(ctx context.Context, key string) error {
	_, err := b.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	return err
}

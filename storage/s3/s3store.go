// Package s3 implements storage.ObjectStore against any S3-compatible
// backend (AWS S3, MinIO, R2) using path-style addressing.
package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/TrinityDev369/thumbgen/storage"
)

// DefaultRegion is used when no region is configured. S3-compatible stores
// generally ignore it but the SDK requires one for signing.
const DefaultRegion = "us-east-1"

// Config configures a Store.
type Config struct {
	// Endpoint is the object store URL. A schemeless endpoint gets https://
	// prepended.
	Endpoint string

	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
}

// Store implements storage.ObjectStore on top of the AWS SDK v2 S3 client.
type Store struct {
	client   *awss3.Client
	presign  *awss3.PresignClient
	endpoint string
	bucket   string
}

// New creates a Store. The endpoint, credentials, and bucket are required.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("s3: endpoint is required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3: bucket is required")
	}

	endpoint := cfg.Endpoint
	if !strings.Contains(endpoint, "://") {
		endpoint = "https://" + endpoint
	}
	region := cfg.Region
	if region == "" {
		region = DefaultRegion
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("s3: failed to load AWS config: %w", err)
	}

	client := awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		// MinIO and most S3-compatible stores require path-style addressing.
		o.UsePathStyle = true
	})

	return &Store{
		client:   client,
		presign:  awss3.NewPresignClient(client),
		endpoint: endpoint,
		bucket:   cfg.Bucket,
	}, nil
}

// Bucket returns the configured bucket name.
func (s *Store) Bucket() string {
	return s.bucket
}

// Put implements storage.ObjectStore.
func (s *Store) Put(ctx context.Context, key string, data []byte, contentType string) (storage.PutResult, error) {
	if contentType == "" {
		contentType = storage.DefaultContentType
	}

	_, err := s.client.PutObject(ctx, &awss3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return storage.PutResult{}, &storage.Error{Op: "put", Key: key, Cause: err}
	}

	return storage.PutResult{
		Bucket: s.bucket,
		Key:    key,
		URL:    fmt.Sprintf("%s/%s/%s", s.endpoint, s.bucket, key),
	}, nil
}

// Get implements storage.ObjectStore.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, &storage.Error{Op: "get", Key: key, Cause: err}
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, &storage.Error{Op: "get", Key: key, Cause: err}
	}
	return data, nil
}

// PresignGet implements storage.ObjectStore.
func (s *Store) PresignGet(ctx context.Context, key string, expires time.Duration) (string, error) {
	if expires <= 0 {
		expires = storage.DefaultPresignExpiry
	}

	req, err := s.presign.PresignGetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, awss3.WithPresignExpires(expires))
	if err != nil {
		return "", &storage.Error{Op: "presign", Key: key, Cause: err}
	}
	return req.URL, nil
}

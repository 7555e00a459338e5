package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

var ErrStorageNotConfigured = errors.New("object storage is not configured")

// ObjectStore is a single bucket in the storage collaborator.
type ObjectStore interface {
	// Put writes body under key and returns the object's public URL.
	Put(ctx context.Context, key string, body []byte, contentType string, metadata map[string]string) (string, error)
	GetText(ctx context.Context, key string) (string, error)
	// Locator returns the s3://bucket/key form of key.
	Locator(key string) string
}

// LoadAWSConfig resolves credentials from the default chain for region.
func LoadAWSConfig(ctx context.Context, region string) (aws.Config, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load aws config: %w", err)
	}
	return cfg, nil
}

type s3ObjectStore struct {
	client *s3.Client
	bucket string
	region string
}

func NewS3ObjectStore(cfg aws.Config, bucket string) ObjectStore {
	return &s3ObjectStore{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
		region: cfg.Region,
	}
}

func (s *s3ObjectStore) Put(ctx context.Context, key string, body []byte, contentType string, metadata map[string]string) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
		Metadata:    metadata,
	})
	if err != nil {
		return "", fmt.Errorf("failed to put s3://%s/%s: %w", s.bucket, key, err)
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key), nil
}

func (s *s3ObjectStore) GetText(ctx context.Context, key string) (string, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return "", fmt.Errorf("failed to get s3://%s/%s: %w", s.bucket, key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read s3://%s/%s: %w", s.bucket, key, err)
	}
	return string(data), nil
}

func (s *s3ObjectStore) Locator(key string) string {
	return fmt.Sprintf("s3://%s/%s", s.bucket, key)
}

type CallerIdentity struct {
	Account string
	ARN     string
	UserID  string
	Region  string
}

type IdentityChecker interface {
	CallerIdentity(ctx context.Context) (*CallerIdentity, error)
}

type stsIdentityChecker struct {
	client *sts.Client
	region string
}

func NewIdentityChecker(cfg aws.Config) IdentityChecker {
	return &stsIdentityChecker{
		client: sts.NewFromConfig(cfg),
		region: cfg.Region,
	}
}

func (c *stsIdentityChecker) CallerIdentity(ctx context.Context) (*CallerIdentity, error) {
	resp, err := c.client.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return nil, fmt.Errorf("aws credential check failed: %w", err)
	}

	return &CallerIdentity{
		Account: aws.ToString(resp.Account),
		ARN:     aws.ToString(resp.Arn),
		UserID:  aws.ToString(resp.UserId),
		Region:  c.region,
	}, nil
}

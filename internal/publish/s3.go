package publish

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"sitebuilder/internal/export"
)

// PutObjectAPI is the part of *s3.Client the publisher uses.
type PutObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Config configures an S3 client without the shared AWS config loader.
type S3Config struct {
	Bucket          string `yaml:"bucket"`
	Prefix          string `yaml:"prefix"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"` // S3-compatible services (MinIO, R2, ...)
	PathStyle       bool   `yaml:"path_style"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"-"`
	SessionToken    string `yaml:"-"`
	PublicURL       string `yaml:"public_url"` // base URL the bucket is served from
}

// NewS3Client builds an S3 client with static credentials.
func NewS3Client(cfg S3Config) *s3.Client {
	creds := aws.Credentials{
		AccessKeyID:     cfg.AccessKeyID,
		SecretAccessKey: cfg.SecretAccessKey,
		SessionToken:    cfg.SessionToken,
		Source:          "sitebuilder",
	}
	opts := s3.Options{
		Region: cfg.Region,
		Credentials: aws.NewCredentialsCache(aws.CredentialsProviderFunc(
			func(context.Context) (aws.Credentials, error) { return creds, nil },
		)),
		UsePathStyle: cfg.PathStyle,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts)
}

// S3Publisher uploads pages as objects.
type S3Publisher struct {
	api       PutObjectAPI
	bucket    string
	prefix    string
	publicURL string
}

func NewS3Publisher(api PutObjectAPI, cfg S3Config) *S3Publisher {
	return &S3Publisher{api: api, bucket: cfg.Bucket, prefix: cfg.Prefix, publicURL: cfg.PublicURL}
}

// Publish uploads the page to <prefix><name> and returns its public URL,
// or an s3:// location when no public URL is configured.
func (p *S3Publisher) Publish(ctx context.Context, name string, html []byte) (string, error) {
	name, err := cleanName(name)
	if err != nil {
		return "", err
	}
	if p.bucket == "" {
		return "", errors.New("publish: no bucket configured")
	}
	key := p.prefix + name

	_, err = p.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(p.bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(html),
		ContentType:  aws.String(export.ContentType),
		CacheControl: aws.String("no-cache"),
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("s3 upload failed: %s: %s", apiErr.ErrorCode(), apiErr.ErrorMessage())
		}
		return "", fmt.Errorf("s3 upload failed: %w", err)
	}

	if p.publicURL != "" {
		return strings.TrimRight(p.publicURL, "/") + "/" + key, nil
	}
	return "s3://" + p.bucket + "/" + key, nil
}

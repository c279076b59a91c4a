package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/BruksfildServices01/salon-scheduler/internal/config"
)

// ErrDisabled is returned when no bucket is configured.
var ErrDisabled = errors.New("storage disabled")

type Uploader interface {
	Upload(ctx context.Context, key string, body []byte, contentType string) (string, error)
}

type putObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3 struct {
	client  putObjectAPI
	bucket  string
	baseURL string
}

func NewS3(cfg config.S3Config) *S3 {
	opts := s3.Options{
		Region:      cfg.Region,
		Credentials: credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
		opts.UsePathStyle = true
	}

	base := cfg.PublicBaseURL
	if base == "" {
		if cfg.Endpoint != "" {
			base = strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
		} else {
			base = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
		}
	}

	return &S3{
		client:  s3.New(opts),
		bucket:  cfg.Bucket,
		baseURL: strings.TrimRight(base, "/"),
	}
}

func (s *S3) Upload(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(s.bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(body),
		ContentType:  aws.String(contentType),
		CacheControl: aws.String("public, max-age=31536000"),
	})
	if err != nil {
		return "", fmt.Errorf("s3 put %s: %w", key, err)
	}
	return s.baseURL + "/" + key, nil
}

type Disabled struct{}

func (Disabled) Upload(context.Context, string, []byte, string) (string, error) {
	return "", ErrDisabled
}

// New picks S3 when credentials are configured.
func New(cfg config.S3Config) Uploader {
	if cfg.Enabled() {
		return NewS3(cfg)
	}
	return Disabled{}
}

// Images stores processed uploads under a per-salon prefix.
type Images struct {
	up Uploader
}

func NewImages(up Uploader) *Images {
	return &Images{up: up}
}

// Save converts r to WebP and uploads it as
// salons/<salonID>/<kind>/<uuid>.webp, returning the public URL.
func (i *Images) Save(ctx context.Context, salonID uint, kind string, r io.Reader, maxSide int) (string, error) {
	body, err := ProcessImage(r, maxSide)
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("salons/%d/%s/%s.webp", salonID, kind, uuid.NewString())
	return i.up.Upload(ctx, key, body, "image/webp")
}

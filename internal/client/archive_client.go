package client

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	appConfig "collab-board/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// ArchiveStore keeps snapshots of purged boards
type ArchiveStore interface {
	SnapshotKey(boardID uuid.UUID, at time.Time) string
	PutSnapshot(ctx context.Context, key string, body []byte) error
}

// S3Archive writes board snapshots to an S3 compatible bucket
type S3Archive struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3Archive creates an archive client. With an endpoint set (MinIO) the
// static keys are required and path-style addressing is used.
func NewS3Archive(ctx context.Context, cfg *appConfig.S3Config) (*S3Archive, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("S3 bucket is required")
	}
	if cfg.Region == "" {
		return nil, fmt.Errorf("S3 region is required")
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.Endpoint != "" {
		if cfg.AccessKey == "" || cfg.SecretKey == "" {
			return nil, fmt.Errorf("access key and secret key are required for custom endpoint")
		}
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Archive{
		client: client,
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
	}, nil
}

// SnapshotKey builds {prefix}/{year}/{month}/{boardId}_{unix}.json
func (a *S3Archive) SnapshotKey(boardID uuid.UUID, at time.Time) string {
	key := fmt.Sprintf("%s/%s/%s_%d.json", at.Format("2006"), at.Format("01"), boardID, at.Unix())
	if a.prefix == "" {
		return key
	}
	return a.prefix + "/" + key
}

func (a *S3Archive) PutSnapshot(ctx context.Context, key string, body []byte) error {
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload snapshot to S3: %w", err)
	}
	return nil
}

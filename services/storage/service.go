package storage

import (
	"context"
	"strings"

	"github.com/opentracing/opentracing-go"
	tracingLog "github.com/opentracing/opentracing-go/log"
	"github.com/pkg/errors"

	"github.com/wrdo/mailrouter/config"
	"github.com/wrdo/mailrouter/interfaces"
	"github.com/wrdo/mailrouter/internal/tracing"
	"github.com/wrdo/mailrouter/services/storage/aws_client"
)

const (
	ProviderR2 = "r2"
	ProviderS3 = "s3"
)

// AttachmentStore removes attachment objects that inbound mail references by path.
// Uploads happen upstream of the router; this side only cleans up.
type AttachmentStore struct {
	client aws_client.S3Client
	bucket string
}

func NewAttachmentStore(client aws_client.S3Client, bucket string) *AttachmentStore {
	return &AttachmentStore{client: client, bucket: bucket}
}

// NewAttachmentStoreFromConfig returns nil when no storage provider is configured.
func NewAttachmentStoreFromConfig(cfg *config.StorageConfig) (interfaces.AttachmentStore, error) {
	if cfg == nil || cfg.Provider == "" {
		return nil, nil
	}
	if cfg.Bucket == "" {
		return nil, errors.New("STORAGE_BUCKET is required")
	}

	var client aws_client.S3Client
	var err error
	switch strings.ToLower(cfg.Provider) {
	case ProviderR2:
		client, err = aws_client.NewR2Client(aws_client.R2Config{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.AccessKeyID,
			AccessKeySecret: cfg.SecretAccessKey,
		})
	case ProviderS3:
		client, err = aws_client.NewS3Client(aws_client.S3Config{
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.AccessKeyID,
			AccessKeySecret: cfg.SecretAccessKey,
		})
	default:
		return nil, errors.Errorf("unknown storage provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, errors.Wrap(err, "init storage client")
	}
	return NewAttachmentStore(client, cfg.Bucket), nil
}

// Delete removes one object. Missing objects are not an error.
func (s *AttachmentStore) Delete(ctx context.Context, key string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "AttachmentStore.Delete")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	key = ObjectKey(s.bucket, key)
	span.LogFields(tracingLog.String("key", key))
	if key == "" {
		return nil
	}

	exists, err := s.client.Exists(ctx, s.bucket, key)
	if err != nil {
		tracing.TraceErr(span, err)
		return errors.Wrapf(err, "stat %s", key)
	}
	if !exists {
		return nil
	}

	if err := s.client.Delete(ctx, s.bucket, key); err != nil {
		tracing.TraceErr(span, err)
		return errors.Wrapf(err, "delete %s", key)
	}
	return nil
}

// ObjectKey normalizes a stored attachment path into a bucket key.
// Paths may carry a leading slash or the bucket name as first segment.
func ObjectKey(bucket, path string) string {
	key := strings.TrimLeft(strings.TrimSpace(path), "/")
	if bucket != "" {
		key = strings.TrimPrefix(key, bucket+"/")
	}
	return key
}

package aws_client

import (
	"context"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/opentracing/opentracing-go"

	"github.com/wrdo/mailrouter/internal/tracing"
)

type S3Client interface {
	Exists(ctx context.Context, bucket, key string) (bool, error)
	Delete(ctx context.Context, bucket, key string) error
}

type s3Client struct {
	api s3iface.S3API
}

// S3Config holds the credentials for a plain AWS S3 bucket.
type S3Config struct {
	Region          string
	AccessKeyID     string
	AccessKeySecret string
}

func NewS3Client(config S3Config) (S3Client, error) {
	awsCfg := &aws.Config{
		Region:      aws.String(config.Region),
		Credentials: credentials.NewStaticCredentials(config.AccessKeyID, config.AccessKeySecret, ""),
	}
	return newClient(awsCfg)
}

func newClient(awsCfg *aws.Config) (S3Client, error) {
	s, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, err
	}
	return &s3Client{api: s3.New(s)}, nil
}

func (s *s3Client) Exists(ctx context.Context, bucket, key string) (bool, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "s3Client.Exists")
	defer span.Finish()
	tracing.TagComponentExternalApi(span)

	_, err := s.api.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		tracing.TraceErr(span, err)
		return false, err
	}
	return true, nil
}

func (s *s3Client) Delete(ctx context.Context, bucket, key string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "s3Client.Delete")
	defer span.Finish()
	tracing.TagComponentExternalApi(span)

	_, err := s.api.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		tracing.TraceErr(span, err)
	}
	return err
}

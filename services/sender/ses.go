package sender

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/wrdo/mailrouter/dto"
	"github.com/wrdo/mailrouter/internal/logger"
	"github.com/wrdo/mailrouter/internal/tracing"
)

type SESConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

// SendEmailAPI is the part of the SES v2 client the sender uses.
type SendEmailAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

type SESSender struct {
	client SendEmailAPI
	log    logger.Logger
}

// NewSESSender uses static credentials when both keys are set, else the default AWS chain.
func NewSESSender(ctx context.Context, cfg SESConfig, log logger.Logger) (*SESSender, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "load AWS config")
	}
	return NewSESSenderWithClient(sesv2.NewFromConfig(awsCfg), log), nil
}

func NewSESSenderWithClient(client SendEmailAPI, log logger.Logger) *SESSender {
	return &SESSender{client: client, log: log}
}

func (s *SESSender) Name() string {
	return ProviderSES
}

func (s *SESSender) Send(ctx context.Context, email *dto.OutboundEmail) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "SESSender.Send")
	defer span.Finish()
	tracing.TagComponentExternalApi(span)

	out, err := s.client.SendEmail(ctx, buildSESInput(email))
	if err != nil {
		tracing.TraceErr(span, err)
		return errors.Wrap(err, "ses send failed")
	}

	s.log.Debug("Forwarded email sent via ses", zap.Strings("to", email.To), zap.String("messageId", aws.ToString(out.MessageId)))
	return nil
}

func buildSESInput(email *dto.OutboundEmail) *sesv2.SendEmailInput {
	return &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(email.From),
		Destination: &types.Destination{
			ToAddresses: email.To,
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(email.Subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(email.HTML),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}
}

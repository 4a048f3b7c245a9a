package sender

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/wrdo/mailrouter/config"
	"github.com/wrdo/mailrouter/dto"
	mailrouter_errors "github.com/wrdo/mailrouter/errors"
	"github.com/wrdo/mailrouter/interfaces"
	"github.com/wrdo/mailrouter/internal/logger"
)

const (
	ProviderBrevo = "brevo"
	ProviderSES   = "ses"
	ProviderSMTP  = "smtp"
)

// NewOutboundSender builds the provider selected by cfg.Provider.
func NewOutboundSender(ctx context.Context, cfg *config.OutboundConfig, log logger.Logger) (interfaces.OutboundSender, error) {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second

	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case ProviderBrevo:
		if cfg.BrevoAPIKey == "" {
			return nil, errors.Wrap(mailrouter_errors.ErrNoOutboundProvider, "BREVO_API_KEY is not set")
		}
		return NewBrevoSender(cfg.BrevoURL, cfg.BrevoAPIKey, timeout, log), nil
	case ProviderSES:
		return NewSESSender(ctx, SESConfig{
			Region:          cfg.SESRegion,
			AccessKeyID:     cfg.SESAccessKeyID,
			SecretAccessKey: cfg.SESSecretAccessKey,
		}, log)
	case ProviderSMTP:
		if cfg.SMTPHost == "" {
			return nil, errors.Wrap(mailrouter_errors.ErrNoOutboundProvider, "SMTP_HOST is not set")
		}
		return NewSMTPSender(SMTPConfig{
			Host:        cfg.SMTPHost,
			Port:        cfg.SMTPPort,
			Username:    cfg.SMTPUsername,
			Password:    cfg.SMTPPassword,
			ImplicitTLS: cfg.SMTPImplicit,
			Timeout:     timeout,
		}, log), nil
	}
	return nil, errors.Wrapf(mailrouter_errors.ErrNoOutboundProvider, "unknown provider %q", cfg.Provider)
}

func excerpt(body []byte) string {
	const limit = 512
	s := strings.TrimSpace(string(body))
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}

// UnavailableSender stands in when no provider could be built; every send returns the
// construction error.
type UnavailableSender struct {
	err error
}

func NewUnavailableSender(err error) *UnavailableSender {
	return &UnavailableSender{err: err}
}

func (s *UnavailableSender) Name() string {
	return "unavailable"
}

func (s *UnavailableSender) Send(_ context.Context, _ *dto.OutboundEmail) error {
	return s.err
}

package sender

import (
	"bytes"
	"context"
	"crypto/tls"
	"io"
	"net"
	"strconv"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"github.com/jhillyerd/enmime"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/wrdo/mailrouter/dto"
	"github.com/wrdo/mailrouter/internal/logger"
	"github.com/wrdo/mailrouter/internal/tracing"
)

type SMTPConfig struct {
	Host        string
	Port        int
	Username    string
	Password    string
	ImplicitTLS bool
	Timeout     time.Duration
}

// smtpClient is the subset of *smtp.Client used to relay one message.
type smtpClient interface {
	Auth(a sasl.Client) error
	SendMail(from string, to []string, r io.Reader) error
	Quit() error
	Close() error
}

type dialFunc func(ctx context.Context, cfg SMTPConfig) (smtpClient, error)

type SMTPSender struct {
	cfg  SMTPConfig
	dial dialFunc
	log  logger.Logger
}

func NewSMTPSender(cfg SMTPConfig, log logger.Logger) *SMTPSender {
	return &SMTPSender{cfg: cfg, dial: dialSMTP, log: log}
}

func (s *SMTPSender) Name() string {
	return ProviderSMTP
}

func (s *SMTPSender) Send(ctx context.Context, email *dto.OutboundEmail) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "SMTPSender.Send")
	defer span.Finish()
	tracing.TagComponentExternalApi(span)

	message, err := buildMIMEMessage(email)
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}

	client, err := s.dial(ctx, s.cfg)
	if err != nil {
		tracing.TraceErr(span, err)
		return errors.Wrapf(err, "connect to %s", s.cfg.Host)
	}
	defer client.Close()

	if s.cfg.Username != "" {
		if err := client.Auth(sasl.NewPlainClient("", s.cfg.Username, s.cfg.Password)); err != nil {
			tracing.TraceErr(span, err)
			return errors.Wrap(err, "smtp auth failed")
		}
	}

	if err := client.SendMail(email.From, email.To, bytes.NewReader(message)); err != nil {
		tracing.TraceErr(span, err)
		return errors.Wrap(err, "smtp send failed")
	}

	if err := client.Quit(); err != nil {
		s.log.Warn("SMTP quit failed", zap.Error(err))
	}
	s.log.Debug("Forwarded email sent via smtp", zap.Strings("to", email.To))
	return nil
}

func buildMIMEMessage(email *dto.OutboundEmail) ([]byte, error) {
	builder := enmime.Builder().
		From("", email.From).
		Subject(email.Subject).
		Date(time.Now()).
		HTML([]byte(email.HTML))
	for _, to := range email.To {
		builder = builder.To("", to)
	}

	root, err := builder.Build()
	if err != nil {
		return nil, errors.Wrap(err, "build message")
	}

	var buf bytes.Buffer
	if err := root.Encode(&buf); err != nil {
		return nil, errors.Wrap(err, "encode message")
	}
	return buf.Bytes(), nil
}

func dialSMTP(_ context.Context, cfg SMTPConfig) (smtpClient, error) {
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	tlsConfig := &tls.Config{ServerName: cfg.Host}

	var client *smtp.Client
	var err error
	if cfg.ImplicitTLS {
		client, err = smtp.DialTLS(addr, tlsConfig)
	} else {
		client, err = smtp.DialStartTLS(addr, tlsConfig)
	}
	if err != nil {
		return nil, err
	}
	if cfg.Timeout > 0 {
		client.CommandTimeout = cfg.Timeout
		client.SubmissionTimeout = cfg.Timeout
	}
	return client, nil
}

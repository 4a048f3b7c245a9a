package webhook

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/wrdo/mailrouter/config"
	"github.com/wrdo/mailrouter/dto"
	mailrouter_errors "github.com/wrdo/mailrouter/errors"
	"github.com/wrdo/mailrouter/internal/logger"
	"github.com/wrdo/mailrouter/internal/tracing"
)

const SignatureHeader = "X-Webhook-Signature"

// Pusher delivers inbound emails to a user configured HTTP endpoint.
type Pusher struct {
	log        logger.Logger
	httpClient *http.Client
}

func NewPusher(log logger.Logger, cfg *config.WebhookConfig) *Pusher {
	return &Pusher{
		log:        log,
		httpClient: &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
	}
}

func (p *Pusher) Push(ctx context.Context, email *dto.InboundEmail, cfg dto.WebhookConfig) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "WebhookPusher.Push")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	url := strings.TrimSpace(cfg.Url)
	if url == "" {
		p.log.Error("Webhook url not configured")
		return mailrouter_errors.ErrWebhookUrlMissing
	}

	tpl := ParseTemplate(cfg.Template)
	if tpl.Kind == TemplateInvalid {
		p.log.Error("Invalid webhook template, sending default payload", zap.Error(tpl.Err))
	}
	body, err := EncodePayload(BuildPayload(email, tpl))
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}

	customHeaders, err := ParseHeaders(cfg.Headers)
	if err != nil {
		p.log.Error("Invalid webhook headers, ignoring them", zap.Error(err))
	}

	method := p.normalizeMethod(cfg.Method)
	span.LogKV("method", method, "template", tpl.Kind.String())

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		tracing.TraceErr(span, err)
		return errors.Wrap(err, "build webhook request")
	}
	req.Header.Set("Content-Type", "application/json")
	for name, value := range customHeaders {
		req.Header.Set(name, value)
	}
	if strings.TrimSpace(cfg.Secret) != "" {
		req.Header.Set(SignatureHeader, Sign(cfg.Secret, body))
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		tracing.TraceErr(span, err)
		return errors.Wrap(err, "webhook request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		err = errors.Errorf("webhook returned %s: %s", resp.Status, strings.TrimSpace(string(respBody)))
		tracing.TraceErr(span, err)
		return err
	}

	p.log.Info("Email sent to webhook", zap.String("url", url), zap.String("to", email.To), zap.Int("status", resp.StatusCode))
	return nil
}

func (p *Pusher) normalizeMethod(method string) string {
	method = strings.ToUpper(strings.TrimSpace(method))
	switch method {
	case "":
		return http.MethodPost
	case http.MethodPost, http.MethodPut:
		return method
	}
	p.log.Warn("Unsupported webhook method, using POST", zap.String("method", method))
	return http.MethodPost
}

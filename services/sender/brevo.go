package sender

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/wrdo/mailrouter/dto"
	"github.com/wrdo/mailrouter/internal/logger"
	"github.com/wrdo/mailrouter/internal/tracing"
)

type BrevoSender struct {
	url        string
	apiKey     string
	httpClient *http.Client
	log        logger.Logger
}

type brevoAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type brevoRequest struct {
	Sender      brevoAddress   `json:"sender"`
	To          []brevoAddress `json:"to"`
	Subject     string         `json:"subject"`
	HTMLContent string         `json:"htmlContent"`
}

func NewBrevoSender(url, apiKey string, timeout time.Duration, log logger.Logger) *BrevoSender {
	return &BrevoSender{
		url:        url,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

func (s *BrevoSender) Name() string {
	return ProviderBrevo
}

func (s *BrevoSender) Send(ctx context.Context, email *dto.OutboundEmail) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "BrevoSender.Send")
	defer span.Finish()
	tracing.TagComponentExternalApi(span)

	payload := brevoRequest{
		Sender:      brevoAddress{Email: email.From},
		Subject:     email.Subject,
		HTMLContent: email.HTML,
	}
	for _, to := range email.To {
		payload.To = append(payload.To, brevoAddress{Email: to})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		tracing.TraceErr(span, err)
		return errors.Wrap(err, "encode brevo request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		tracing.TraceErr(span, err)
		return errors.Wrap(err, "build brevo request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", s.apiKey)
	req = tracing.InjectSpanContextIntoHTTPRequest(req, span)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		tracing.TraceErr(span, err)
		return errors.Wrap(err, "brevo request failed")
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err = errors.Errorf("brevo returned status %d: %s", resp.StatusCode, excerpt(respBody))
		tracing.TraceErr(span, err)
		return err
	}

	s.log.Debug("Forwarded email sent via brevo", zap.Strings("to", email.To), zap.Int("status", resp.StatusCode))
	return nil
}

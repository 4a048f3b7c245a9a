package sender

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/emersion/go-sasl"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wrdo/mailrouter/config"
	"github.com/wrdo/mailrouter/dto"
	mailrouter_errors "github.com/wrdo/mailrouter/errors"
	"github.com/wrdo/mailrouter/internal/logger"
)

func testLogger() logger.Logger {
	appLogger := logger.NewAppLogger(&logger.Config{DevMode: true})
	appLogger.InitLogger()
	return appLogger
}

func outbound() *dto.OutboundEmail {
	return &dto.OutboundEmail{
		From:    "Forwarding@wr.do",
		To:      []string{"a@gmail.com", "b@gmail.com"},
		Subject: "Hello",
		HTML:    "<p>hi</p>",
	}
}

func TestBrevoSender_Send(t *testing.T) {
	var captured brevoRequest
	var apiKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiKey = r.Header.Get("api-key")
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &captured))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"messageId":"<1@brevo>"}`))
	}))
	defer server.Close()

	s := NewBrevoSender(server.URL, "secret-key", time.Second, testLogger())
	require.NoError(t, s.Send(context.Background(), outbound()))

	assert.Equal(t, "secret-key", apiKey)
	assert.Equal(t, "Forwarding@wr.do", captured.Sender.Email)
	assert.Equal(t, []brevoAddress{{Email: "a@gmail.com"}, {Email: "b@gmail.com"}}, captured.To)
	assert.Equal(t, "Hello", captured.Subject)
	assert.Equal(t, "<p>hi</p>", captured.HTMLContent)
	assert.Equal(t, ProviderBrevo, s.Name())
}

func TestBrevoSender_Non2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"code":"unauthorized"}`))
	}))
	defer server.Close()

	err := NewBrevoSender(server.URL, "bad", time.Second, testLogger()).Send(context.Background(), outbound())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Contains(t, err.Error(), "unauthorized")
}

type mockSESClient struct {
	input *sesv2.SendEmailInput
	err   error
}

func (m *mockSESClient) SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	m.input = params
	if m.err != nil {
		return nil, m.err
	}
	return &sesv2.SendEmailOutput{MessageId: aws.String("ses-1")}, nil
}

func TestSESSender_Send(t *testing.T) {
	client := &mockSESClient{}
	s := NewSESSenderWithClient(client, testLogger())

	require.NoError(t, s.Send(context.Background(), outbound()))
	require.NotNil(t, client.input)
	assert.Equal(t, "Forwarding@wr.do", aws.ToString(client.input.FromEmailAddress))
	assert.Equal(t, []string{"a@gmail.com", "b@gmail.com"}, client.input.Destination.ToAddresses)
	assert.Equal(t, "Hello", aws.ToString(client.input.Content.Simple.Subject.Data))
	assert.Equal(t, "<p>hi</p>", aws.ToString(client.input.Content.Simple.Body.Html.Data))
	assert.Nil(t, client.input.Content.Simple.Body.Text)
}

func TestSESSender_Error(t *testing.T) {
	s := NewSESSenderWithClient(&mockSESClient{err: errors.New("throttled")}, testLogger())
	err := s.Send(context.Background(), outbound())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "throttled")
}

type fakeSMTPClient struct {
	authed  bool
	from    string
	to      []string
	message string
	sendErr error
	quit    bool
	closed  bool
}

func (f *fakeSMTPClient) Auth(a sasl.Client) error {
	mech, _, err := a.Start()
	f.authed = mech == sasl.Plain && err == nil
	return nil
}

func (f *fakeSMTPClient) SendMail(from string, to []string, r io.Reader) error {
	f.from = from
	f.to = to
	b, _ := io.ReadAll(r)
	f.message = string(b)
	return f.sendErr
}

func (f *fakeSMTPClient) Quit() error {
	f.quit = true
	return nil
}

func (f *fakeSMTPClient) Close() error {
	f.closed = true
	return nil
}

func TestSMTPSender_Send(t *testing.T) {
	client := &fakeSMTPClient{}
	s := NewSMTPSender(SMTPConfig{Host: "smtp.example.com", Port: 587, Username: "user", Password: "pass"}, testLogger())
	s.dial = func(ctx context.Context, cfg SMTPConfig) (smtpClient, error) {
		return client, nil
	}

	require.NoError(t, s.Send(context.Background(), outbound()))
	assert.True(t, client.authed)
	assert.Equal(t, "Forwarding@wr.do", client.from)
	assert.Equal(t, []string{"a@gmail.com", "b@gmail.com"}, client.to)
	assert.Contains(t, client.message, "Subject: Hello")
	assert.Contains(t, client.message, "text/html")
	assert.Contains(t, client.message, "<p>hi</p>")
	assert.True(t, client.quit)
	assert.True(t, client.closed)
}

func TestSMTPSender_Failures(t *testing.T) {
	s := NewSMTPSender(SMTPConfig{Host: "smtp.example.com", Port: 25}, testLogger())
	s.dial = func(ctx context.Context, cfg SMTPConfig) (smtpClient, error) {
		return nil, errors.New("connection refused")
	}
	err := s.Send(context.Background(), outbound())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connect to smtp.example.com")

	client := &fakeSMTPClient{sendErr: errors.New("550 rejected")}
	s.dial = func(ctx context.Context, cfg SMTPConfig) (smtpClient, error) {
		return client, nil
	}
	err = s.Send(context.Background(), outbound())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "550 rejected")
	assert.False(t, client.authed, "no credentials means no auth")
	assert.True(t, client.closed)
}

func TestNewOutboundSender(t *testing.T) {
	ctx := context.Background()
	log := testLogger()

	s, err := NewOutboundSender(ctx, &config.OutboundConfig{Provider: "Brevo", BrevoAPIKey: "k", BrevoURL: "https://api"}, log)
	require.NoError(t, err)
	assert.Equal(t, ProviderBrevo, s.Name())

	s, err = NewOutboundSender(ctx, &config.OutboundConfig{Provider: "smtp", SMTPHost: "smtp.example.com", SMTPPort: 587}, log)
	require.NoError(t, err)
	assert.Equal(t, ProviderSMTP, s.Name())

	_, err = NewOutboundSender(ctx, &config.OutboundConfig{Provider: "brevo"}, log)
	assert.ErrorIs(t, err, mailrouter_errors.ErrNoOutboundProvider)

	_, err = NewOutboundSender(ctx, &config.OutboundConfig{Provider: "pigeon"}, log)
	assert.ErrorIs(t, err, mailrouter_errors.ErrNoOutboundProvider)
	assert.True(t, strings.Contains(err.Error(), "pigeon"))
}

func TestUnavailableSender(t *testing.T) {
	cause := errors.New("BREVO_API_KEY is not set")
	s := NewUnavailableSender(cause)

	assert.Equal(t, "unavailable", s.Name())
	assert.ErrorIs(t, s.Send(context.Background(), outbound()), cause)
}

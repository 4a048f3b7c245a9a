package forward

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/wrdo/mailrouter/config"
	"github.com/wrdo/mailrouter/dto"
	mailrouter_errors "github.com/wrdo/mailrouter/errors"
	"github.com/wrdo/mailrouter/internal/logger"
	"github.com/wrdo/mailrouter/internal/models"
)

type mockDomainRepository struct {
	mock.Mock
}

func (m *mockDomainRepository) GetEmailSendingDomains(ctx context.Context) ([]models.Domain, error) {
	args := m.Called(ctx)
	domains, _ := args.Get(0).([]models.Domain)
	return domains, args.Error(1)
}

func (m *mockDomainRepository) Create(ctx context.Context, domain *models.Domain) error {
	return m.Called(ctx, domain).Error(0)
}

type mockSender struct {
	mock.Mock
}

func (m *mockSender) Name() string {
	return "mock"
}

func (m *mockSender) Send(ctx context.Context, email *dto.OutboundEmail) error {
	return m.Called(ctx, email).Error(0)
}

func newTestForwarder() (*Forwarder, *mockDomainRepository, *mockSender) {
	log := logger.NewAppLogger(&logger.Config{DevMode: true})
	log.InitLogger()
	domains := new(mockDomainRepository)
	sender := new(mockSender)
	return NewForwarder(log, domains, sender, &config.BrandConfig{Name: "WR.DO", URL: "https://wr.do"}), domains, sender
}

func TestForward_SendsFromFirstDomain(t *testing.T) {
	f, domains, sender := newTestForwarder()
	domains.On("GetEmailSendingDomains", mock.Anything).
		Return([]models.Domain{{DomainName: "wr.do"}, {DomainName: "other.dev"}}, nil)

	var sent *dto.OutboundEmail
	sender.On("Send", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { sent = args.Get(1).(*dto.OutboundEmail) }).
		Return(nil)

	email := &dto.InboundEmail{From: "a@x.com", To: "me@wr.do", Subject: "Hi", Text: "plain"}
	err := f.Forward(context.Background(), email, dto.ForwardConfig{Enabled: true, Targets: "ext@gmail.com, bad-addr"})
	require.NoError(t, err)

	require.NotNil(t, sent)
	assert.Equal(t, "Forwarding@wr.do", sent.From)
	assert.Equal(t, []string{"ext@gmail.com"}, sent.To)
	assert.Equal(t, "Hi", sent.Subject)
	assert.True(t, len(sent.HTML) > len("plain"))
	assert.Equal(t, "plain", sent.HTML[:5])
	assert.Contains(t, sent.HTML, "This email was forwarded from me@wr.do.")
	assert.Contains(t, sent.HTML, `<a href="https://wr.do">WR.DO</a>`)
}

func TestForward_PrefersHTMLAndDefaultsSubject(t *testing.T) {
	f, domains, sender := newTestForwarder()
	domains.On("GetEmailSendingDomains", mock.Anything).Return([]models.Domain{{DomainName: "wr.do"}}, nil)

	var sent *dto.OutboundEmail
	sender.On("Send", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { sent = args.Get(1).(*dto.OutboundEmail) }).
		Return(nil)

	email := &dto.InboundEmail{From: "a@x.com", To: "me@wr.do", Text: "plain", HTML: "<b>rich</b>"}
	require.NoError(t, f.Forward(context.Background(), email, dto.ForwardConfig{Targets: "ext@gmail.com"}))

	assert.Equal(t, "No subject", sent.Subject)
	assert.Contains(t, sent.HTML, "<b>rich</b> <br><hr>")
	assert.NotContains(t, sent.HTML, "plain")
}

func TestForward_NoValidTargets(t *testing.T) {
	f, domains, sender := newTestForwarder()

	err := f.Forward(context.Background(), &dto.InboundEmail{To: "me@wr.do"}, dto.ForwardConfig{Targets: "bad-addr, ,"})
	assert.ErrorIs(t, err, mailrouter_errors.ErrNoForwardTargets)
	domains.AssertNotCalled(t, "GetEmailSendingDomains", mock.Anything)
	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestForward_NoSendingDomain(t *testing.T) {
	f, domains, sender := newTestForwarder()
	domains.On("GetEmailSendingDomains", mock.Anything).Return([]models.Domain{}, nil)

	err := f.Forward(context.Background(), &dto.InboundEmail{To: "me@wr.do"}, dto.ForwardConfig{Targets: "ext@gmail.com"})
	assert.ErrorIs(t, err, mailrouter_errors.ErrNoSendingDomain)
	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestForward_SenderError(t *testing.T) {
	f, domains, sender := newTestForwarder()
	domains.On("GetEmailSendingDomains", mock.Anything).Return([]models.Domain{{DomainName: "wr.do"}}, nil)
	sender.On("Send", mock.Anything, mock.Anything).Return(errors.New("quota exceeded"))

	err := f.Forward(context.Background(), &dto.InboundEmail{To: "me@wr.do"}, dto.ForwardConfig{Targets: "ext@gmail.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "forward via mock")
	assert.Contains(t, err.Error(), "quota exceeded")
}

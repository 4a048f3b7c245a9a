package dispatch

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/wrdo/mailrouter/dto"
	"github.com/wrdo/mailrouter/internal/logger"
	"github.com/wrdo/mailrouter/internal/models"
)

func testLogger() logger.Logger {
	appLogger := logger.NewAppLogger(&logger.Config{DevMode: true, LogLevel: "debug"})
	appLogger.InitLogger()
	return appLogger
}

type mockMailboxStore struct {
	mock.Mock
}

func (m *mockMailboxStore) Save(ctx context.Context, email *dto.InboundEmail) (string, error) {
	args := m.Called(ctx, email)
	return args.String(0), args.Error(1)
}

type mockForwarder struct {
	mock.Mock
}

func (m *mockForwarder) Forward(ctx context.Context, email *dto.InboundEmail, cfg dto.ForwardConfig) error {
	return m.Called(ctx, email, cfg).Error(0)
}

type mockTelegramPusher struct {
	mock.Mock
}

func (m *mockTelegramPusher) Push(ctx context.Context, email *dto.InboundEmail, cfg dto.TelegramConfig) error {
	return m.Called(ctx, email, cfg).Error(0)
}

type mockWebhookPusher struct {
	mock.Mock
}

func (m *mockWebhookPusher) Push(ctx context.Context, email *dto.InboundEmail, cfg dto.WebhookConfig) error {
	return m.Called(ctx, email, cfg).Error(0)
}

type mockSystemConfigRepository struct {
	mock.Mock
}

func (m *mockSystemConfigRepository) GetMultipleConfigs(ctx context.Context, keys []string) (map[string]string, error) {
	args := m.Called(ctx, keys)
	values, _ := args.Get(0).(map[string]string)
	return values, args.Error(1)
}

func (m *mockSystemConfigRepository) GetConfig(ctx context.Context, key string) (*models.SystemConfig, error) {
	args := m.Called(ctx, key)
	config, _ := args.Get(0).(*models.SystemConfig)
	return config, args.Error(1)
}

func (m *mockSystemConfigRepository) SetConfig(ctx context.Context, config *models.SystemConfig) error {
	return m.Called(ctx, config).Error(0)
}

type mockDeliveryLogRepository struct {
	mock.Mock
}

func (m *mockDeliveryLogRepository) Create(ctx context.Context, log *models.DeliveryLog) error {
	return m.Called(ctx, log).Error(0)
}

func (m *mockDeliveryLogRepository) DeleteCreatedBefore(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

func recipient(to string) interface{} {
	return mock.MatchedBy(func(email *dto.InboundEmail) bool { return email.To == to })
}

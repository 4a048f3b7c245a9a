package interfaces

import (
	"context"
	"time"

	"github.com/wrdo/mailrouter/internal/models"
)

type SystemConfigRepository interface {
	GetMultipleConfigs(ctx context.Context, keys []string) (map[string]string, error)
	GetConfig(ctx context.Context, key string) (*models.SystemConfig, error)
	SetConfig(ctx context.Context, config *models.SystemConfig) error
}

type UserEmailRepository interface {
	GetByEmailAddress(ctx context.Context, emailAddress string) (*models.UserEmail, error)
	Create(ctx context.Context, userEmail *models.UserEmail) error
}

type ForwardEmailRepository interface {
	Create(ctx context.Context, email *models.ForwardEmail) error
	ListByRecipient(ctx context.Context, emailAddress string, page, pageSize int) ([]*models.ForwardEmail, int64, error)
	ListAttachmentsCreatedBefore(ctx context.Context, before time.Time) ([]string, error)
	DeleteCreatedBefore(ctx context.Context, before time.Time) (int64, error)
}

type DomainRepository interface {
	GetEmailSendingDomains(ctx context.Context) ([]models.Domain, error)
	Create(ctx context.Context, domain *models.Domain) error
}

type UserRepository interface {
	GetByAPIKey(ctx context.Context, apiKey string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
}

type DeliveryLogRepository interface {
	Create(ctx context.Context, log *models.DeliveryLog) error
	DeleteCreatedBefore(ctx context.Context, before time.Time) (int64, error)
}

type AttachmentStore interface {
	Delete(ctx context.Context, key string) error
}

type RetentionService interface {
	PurgeExpired(ctx context.Context) error
}

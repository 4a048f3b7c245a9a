package repository

import (
	"context"

	"github.com/opentracing/opentracing-go"
	tracingLog "github.com/opentracing/opentracing-go/log"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/wrdo/mailrouter/interfaces"
	"github.com/wrdo/mailrouter/internal/models"
	"github.com/wrdo/mailrouter/internal/tracing"
)

type domainRepository struct {
	db *gorm.DB
}

func NewDomainRepository(db *gorm.DB) interfaces.DomainRepository {
	return &domainRepository{db: db}
}

// GetEmailSendingDomains returns active domains enabled for email, oldest first.
func (r *domainRepository) GetEmailSendingDomains(ctx context.Context) ([]models.Domain, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "domainRepository.GetEmailSendingDomains")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	var domains []models.Domain
	err := r.db.WithContext(ctx).
		Where("enable_email = ? AND active = ?", true, true).
		Order("created_at ASC, id ASC").
		Find(&domains).Error
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return nil, err
	}

	span.LogFields(tracingLog.Int("result.count", len(domains)))
	return domains, nil
}

func (r *domainRepository) Create(ctx context.Context, domain *models.Domain) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "domainRepository.Create")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	if domain.DomainName == "" {
		tracing.TraceErr(span, ErrInvalidInput)
		return ErrInvalidInput
	}

	err := r.db.WithContext(ctx).Create(domain).Error
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return err
	}
	return nil
}

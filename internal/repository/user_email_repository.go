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

type userEmailRepository struct {
	db *gorm.DB
}

func NewUserEmailRepository(db *gorm.DB) interfaces.UserEmailRepository {
	return &userEmailRepository{db: db}
}

// GetByEmailAddress matches the address exactly and ignores soft deletion.
func (r *userEmailRepository) GetByEmailAddress(ctx context.Context, emailAddress string) (*models.UserEmail, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "userEmailRepository.GetByEmailAddress")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	span.LogFields(tracingLog.String("emailAddress", emailAddress))

	var userEmail models.UserEmail
	err := r.db.WithContext(ctx).
		Where("email_address = ?", emailAddress).
		First(&userEmail).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.LogFields(tracingLog.Bool("result.found", false))
			return nil, nil
		}
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return nil, err
	}

	span.LogFields(tracingLog.Bool("result.found", true))
	return &userEmail, nil
}

func (r *userEmailRepository) Create(ctx context.Context, userEmail *models.UserEmail) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "userEmailRepository.Create")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	if userEmail.EmailAddress == "" || userEmail.UserID == "" {
		tracing.TraceErr(span, ErrInvalidInput)
		return ErrInvalidInput
	}

	err := r.db.WithContext(ctx).Create(userEmail).Error
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return err
	}
	tracing.TagEntity(span, userEmail.ID)
	return nil
}

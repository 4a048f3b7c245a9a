package repository

import (
	"context"
	"time"

	"github.com/opentracing/opentracing-go"
	tracingLog "github.com/opentracing/opentracing-go/log"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wrdo/mailrouter/interfaces"
	"github.com/wrdo/mailrouter/internal/models"
	"github.com/wrdo/mailrouter/internal/tracing"
)

type forwardEmailRepository struct {
	db *gorm.DB
}

func NewForwardEmailRepository(db *gorm.DB) interfaces.ForwardEmailRepository {
	return &forwardEmailRepository{db: db}
}

func (r *forwardEmailRepository) Create(ctx context.Context, email *models.ForwardEmail) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "forwardEmailRepository.Create")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	if email.To == "" {
		tracing.TraceErr(span, ErrInvalidInput)
		return ErrInvalidInput
	}

	err := r.db.WithContext(ctx).Create(email).Error
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return err
	}
	tracing.TagEntity(span, email.ID)
	return nil
}

// ListByRecipient pages through one inbox, newest first. Page numbers start at 1.
// Rows sharing a timestamp are ordered by id so pages never overlap.
func (r *forwardEmailRepository) ListByRecipient(ctx context.Context, emailAddress string, page, pageSize int) ([]*models.ForwardEmail, int64, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "forwardEmailRepository.ListByRecipient")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	span.LogFields(
		tracingLog.String("emailAddress", emailAddress),
		tracingLog.Int("page", page),
		tracingLog.Int("pageSize", pageSize))

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}

	byRecipient := clause.Eq{Column: clause.Column{Name: "to"}, Value: emailAddress}

	var total int64
	err := r.db.WithContext(ctx).Model(&models.ForwardEmail{}).Where(byRecipient).Count(&total).Error
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return nil, 0, err
	}

	var emails []*models.ForwardEmail
	err = r.db.WithContext(ctx).
		Where(byRecipient).
		Order("created_at DESC").
		Order("id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&emails).Error
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return nil, 0, err
	}

	span.LogFields(tracingLog.Int64("result.total", total))
	return emails, total, nil
}

// ListAttachmentsCreatedBefore returns the encoded attachment lists of rows older than before.
// Rows without attachments are skipped.
func (r *forwardEmailRepository) ListAttachmentsCreatedBefore(ctx context.Context, before time.Time) ([]string, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "forwardEmailRepository.ListAttachmentsCreatedBefore")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	span.LogFields(tracingLog.String("before", before.Format(time.RFC3339)))

	var attachments []string
	err := r.db.WithContext(ctx).
		Model(&models.ForwardEmail{}).
		Where("created_at < ?", before).
		Where("attachments <> '' AND attachments <> '[]'").
		Pluck("attachments", &attachments).Error
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return nil, err
	}
	span.LogFields(tracingLog.Int("result.count", len(attachments)))
	return attachments, nil
}

func (r *forwardEmailRepository) DeleteCreatedBefore(ctx context.Context, before time.Time) (int64, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "forwardEmailRepository.DeleteCreatedBefore")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	span.LogFields(tracingLog.String("before", before.Format(time.RFC3339)))

	result := r.db.WithContext(ctx).Where("created_at < ?", before).Delete(&models.ForwardEmail{})
	if result.Error != nil {
		tracing.TraceErr(span, errors.Wrap(result.Error, "db error"))
		return 0, result.Error
	}
	span.LogFields(tracingLog.Int64("result.deleted", result.RowsAffected))
	return result.RowsAffected, nil
}

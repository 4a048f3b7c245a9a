package repository

import (
	"context"
	"time"

	"github.com/opentracing/opentracing-go"
	tracingLog "github.com/opentracing/opentracing-go/log"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/wrdo/mailrouter/interfaces"
	"github.com/wrdo/mailrouter/internal/models"
	"github.com/wrdo/mailrouter/internal/tracing"
)

type deliveryLogRepository struct {
	db *gorm.DB
}

func NewDeliveryLogRepository(db *gorm.DB) interfaces.DeliveryLogRepository {
	return &deliveryLogRepository{db: db}
}

func (r *deliveryLogRepository) Create(ctx context.Context, log *models.DeliveryLog) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "deliveryLogRepository.Create")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	span.LogFields(tracingLog.String("dispatchId", log.DispatchID))

	err := r.db.WithContext(ctx).Create(log).Error
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return err
	}
	return nil
}

func (r *deliveryLogRepository) DeleteCreatedBefore(ctx context.Context, before time.Time) (int64, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "deliveryLogRepository.DeleteCreatedBefore")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	result := r.db.WithContext(ctx).Where("created_at < ?", before).Delete(&models.DeliveryLog{})
	if result.Error != nil {
		tracing.TraceErr(span, errors.Wrap(result.Error, "db error"))
		return 0, result.Error
	}
	span.LogFields(tracingLog.Int64("result.deleted", result.RowsAffected))
	return result.RowsAffected, nil
}

package repository

import (
	"context"

	"github.com/opentracing/opentracing-go"
	tracingLog "github.com/opentracing/opentracing-go/log"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wrdo/mailrouter/interfaces"
	"github.com/wrdo/mailrouter/internal/models"
	"github.com/wrdo/mailrouter/internal/tracing"
)

type systemConfigRepository struct {
	db *gorm.DB
}

func NewSystemConfigRepository(db *gorm.DB) interfaces.SystemConfigRepository {
	return &systemConfigRepository{db: db}
}

// GetMultipleConfigs reads all requested keys in one query. Keys without a row are absent from the result.
func (r *systemConfigRepository) GetMultipleConfigs(ctx context.Context, keys []string) (map[string]string, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "systemConfigRepository.GetMultipleConfigs")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	span.LogFields(tracingLog.Int("keys.count", len(keys)))

	result := make(map[string]string, len(keys))
	if len(keys) == 0 {
		return result, nil
	}

	var rows []models.SystemConfig
	err := r.db.WithContext(ctx).
		Where(clause.IN{Column: clause.Column{Name: "key"}, Values: toInterfaces(keys)}).
		Find(&rows).Error
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return nil, err
	}

	for _, row := range rows {
		result[row.Key] = row.Value
	}
	span.LogFields(tracingLog.Int("result.count", len(result)))
	return result, nil
}

func (r *systemConfigRepository) GetConfig(ctx context.Context, key string) (*models.SystemConfig, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "systemConfigRepository.GetConfig")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	span.LogFields(tracingLog.String("key", key))

	var config models.SystemConfig
	err := r.db.WithContext(ctx).
		Where(clause.Eq{Column: clause.Column{Name: "key"}, Value: key}).
		First(&config).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.LogFields(tracingLog.Bool("result.found", false))
			return nil, nil
		}
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return nil, err
	}

	span.LogFields(tracingLog.Bool("result.found", true))
	return &config, nil
}

// SetConfig inserts the key or overwrites the value and type of an existing one.
func (r *systemConfigRepository) SetConfig(ctx context.Context, config *models.SystemConfig) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "systemConfigRepository.SetConfig")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	span.LogFields(tracingLog.String("key", config.Key))

	if config.Key == "" {
		tracing.TraceErr(span, ErrInvalidInput)
		return ErrInvalidInput
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "type", "updated_at"}),
	}).Create(config).Error
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return err
	}
	return nil
}

func toInterfaces(values []string) []interface{} {
	result := make([]interface{}, len(values))
	for i, v := range values {
		result[i] = v
	}
	return result
}

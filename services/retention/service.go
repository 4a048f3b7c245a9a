package retention

import (
	"context"
	"time"

	"github.com/goccy/go-json"
	"github.com/opentracing/opentracing-go"
	tracingLog "github.com/opentracing/opentracing-go/log"
	"github.com/pkg/errors"

	"github.com/wrdo/mailrouter/dto"
	"github.com/wrdo/mailrouter/interfaces"
	cron_config "github.com/wrdo/mailrouter/internal/cron/config"
	"github.com/wrdo/mailrouter/internal/logger"
	"github.com/wrdo/mailrouter/internal/tracing"
)

type retentionService struct {
	cfg           *cron_config.Config
	log           logger.Logger
	forwardEmails interfaces.ForwardEmailRepository
	deliveryLogs  interfaces.DeliveryLogRepository
	attachments   interfaces.AttachmentStore
	now           func() time.Time
}

// NewRetentionService builds the purge job. attachments may be nil, in which case
// attachment objects outlive their stored emails.
func NewRetentionService(cfg *cron_config.Config, log logger.Logger, forwardEmails interfaces.ForwardEmailRepository, deliveryLogs interfaces.DeliveryLogRepository, attachments interfaces.AttachmentStore) interfaces.RetentionService {
	return &retentionService{
		cfg:           cfg,
		log:           log,
		forwardEmails: forwardEmails,
		deliveryLogs:  deliveryLogs,
		attachments:   attachments,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// PurgeExpired deletes stored mail and delivery logs past their retention window.
// A window of zero days disables the purge for that table.
func (s *retentionService) PurgeExpired(ctx context.Context) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "retentionService.PurgeExpired")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	if days := s.cfg.InboxRetentionDays; days > 0 {
		cutoff := s.cutoff(days)
		if s.attachments != nil {
			if err := s.purgeAttachments(ctx, cutoff); err != nil {
				tracing.TraceErr(span, err)
				return errors.Wrap(err, "purge attachments")
			}
		}

		deleted, err := s.forwardEmails.DeleteCreatedBefore(ctx, cutoff)
		if err != nil {
			tracing.TraceErr(span, err)
			return errors.Wrap(err, "purge stored emails")
		}
		span.LogFields(tracingLog.Int64("forwardEmails.deleted", deleted))
		s.log.Infof("Purged %d stored emails older than %d days", deleted, days)
	}

	if days := s.cfg.DeliveryLogRetentionDays; days > 0 {
		deleted, err := s.deliveryLogs.DeleteCreatedBefore(ctx, s.cutoff(days))
		if err != nil {
			tracing.TraceErr(span, err)
			return errors.Wrap(err, "purge delivery logs")
		}
		span.LogFields(tracingLog.Int64("deliveryLogs.deleted", deleted))
		s.log.Infof("Purged %d delivery logs older than %d days", deleted, days)
	}

	return nil
}

// purgeAttachments removes the objects referenced by emails about to be purged.
// Individual delete failures are logged and skipped; the rows are purged regardless.
func (s *retentionService) purgeAttachments(ctx context.Context, before time.Time) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "retentionService.purgeAttachments")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	encoded, err := s.forwardEmails.ListAttachmentsCreatedBefore(ctx, before)
	if err != nil {
		return err
	}

	removed, failed := 0, 0
	for _, raw := range encoded {
		var attachments []dto.Attachment
		if err := json.Unmarshal([]byte(raw), &attachments); err != nil {
			s.log.Warnf("Skipping unreadable attachment list: %v", err)
			continue
		}
		for _, attachment := range attachments {
			if attachment.R2Path == "" {
				continue
			}
			if err := s.attachments.Delete(ctx, attachment.R2Path); err != nil {
				failed++
				s.log.Warnf("Failed to delete attachment %s: %v", attachment.R2Path, err)
				continue
			}
			removed++
		}
	}

	span.LogFields(tracingLog.Int("attachments.removed", removed), tracingLog.Int("attachments.failed", failed))
	s.log.Infof("Purged %d attachment objects, %d failed", removed, failed)
	return nil
}

func (s *retentionService) cutoff(days int) time.Time {
	return s.now().AddDate(0, 0, -days)
}

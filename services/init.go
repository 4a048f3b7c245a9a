package services

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/wrdo/mailrouter/config"
	"github.com/wrdo/mailrouter/interfaces"
	"github.com/wrdo/mailrouter/internal/logger"
	"github.com/wrdo/mailrouter/internal/repository"
	"github.com/wrdo/mailrouter/services/dispatch"
	"github.com/wrdo/mailrouter/services/events"
	"github.com/wrdo/mailrouter/services/forward"
	"github.com/wrdo/mailrouter/services/mailbox"
	"github.com/wrdo/mailrouter/services/retention"
	"github.com/wrdo/mailrouter/services/sender"
	"github.com/wrdo/mailrouter/services/storage"
	"github.com/wrdo/mailrouter/services/telegram"
	"github.com/wrdo/mailrouter/services/webhook"
)

type Services struct {
	// nil when RABBITMQ_URL is not set
	EventsService *events.EventsService

	MailboxService   *mailbox.MailboxService
	OutboundSender   interfaces.OutboundSender
	Forwarder        interfaces.ExternalForwarder
	TelegramPusher   interfaces.TelegramPusher
	WebhookPusher    interfaces.WebhookPusher
	Dispatcher       *dispatch.Dispatcher
	RetentionService interfaces.RetentionService
}

func InitServices(ctx context.Context, cfg *config.Config, log logger.Logger, repos *repository.Repositories, reg prometheus.Registerer) (*Services, error) {
	services := &Services{}

	var publisher interfaces.EventPublisher
	if cfg.AppConfig.RabbitMQURL != "" {
		eventsService, err := events.NewEventsService(cfg.AppConfig.RabbitMQURL, log, events.DefaultPublisherConfig(), events.DefaultSubscriberConfig())
		if err != nil {
			return nil, err
		}
		services.EventsService = eventsService
		publisher = eventsService.Publisher
	} else {
		log.Warn("RABBITMQ_URL not set, running without event publishing and queued intake")
	}

	outbound, err := sender.NewOutboundSender(ctx, cfg.OutboundConfig, log)
	if err != nil {
		// storage and pushes still work; external forwards fail until a provider is configured
		log.Warnf("Outbound sender unavailable: %v", err)
		outbound = sender.NewUnavailableSender(err)
	}
	services.OutboundSender = outbound

	services.MailboxService = mailbox.NewMailboxService(log, repos.UserEmailRepository, repos.ForwardEmailRepository, publisher)
	services.Forwarder = forward.NewForwarder(log, repos.DomainRepository, outbound, cfg.BrandConfig)
	services.TelegramPusher = telegram.NewPusher(log, cfg.TelegramConfig)
	services.WebhookPusher = webhook.NewPusher(log, cfg.WebhookConfig)

	services.Dispatcher = dispatch.NewDispatcher(log, dispatch.DispatcherDeps{
		Configs:      repos.SystemConfigRepository,
		Mailbox:      services.MailboxService,
		Forwarder:    services.Forwarder,
		Telegram:     services.TelegramPusher,
		Webhook:      services.WebhookPusher,
		DeliveryLogs: repos.DeliveryLogRepository,
		Metrics:      dispatch.NewMetrics(reg),
	})

	attachmentStore, err := storage.NewAttachmentStoreFromConfig(cfg.StorageConfig)
	if err != nil {
		return nil, err
	}
	services.RetentionService = retention.NewRetentionService(cfg.CronConfig, log, repos.ForwardEmailRepository, repos.DeliveryLogRepository, attachmentStore)

	return services, nil
}

// Publisher returns the event publisher, or nil when events are disabled.
func (s *Services) Publisher() interfaces.EventPublisher {
	if s.EventsService == nil {
		return nil
	}
	return s.EventsService.Publisher
}

func (s *Services) Close() error {
	if s.EventsService == nil {
		return nil
	}
	return s.EventsService.Close()
}

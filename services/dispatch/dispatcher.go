package dispatch

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/opentracing/opentracing-go"
	tracingLog "github.com/opentracing/opentracing-go/log"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/wrdo/mailrouter/dto"
	"github.com/wrdo/mailrouter/interfaces"
	"github.com/wrdo/mailrouter/internal/enum"
	"github.com/wrdo/mailrouter/internal/logger"
	"github.com/wrdo/mailrouter/internal/models"
	"github.com/wrdo/mailrouter/internal/tracing"
	"github.com/wrdo/mailrouter/internal/utils"
	"github.com/wrdo/mailrouter/internal/whitelist"
)

type Dispatcher struct {
	log          logger.Logger
	configs      interfaces.SystemConfigRepository
	executor     *Executor
	telegram     interfaces.TelegramPusher
	webhook      interfaces.WebhookPusher
	deliveryLogs interfaces.DeliveryLogRepository
	metrics      *Metrics
}

type DispatcherDeps struct {
	Configs      interfaces.SystemConfigRepository
	Mailbox      interfaces.MailboxStore
	Forwarder    interfaces.ExternalForwarder
	Telegram     interfaces.TelegramPusher
	Webhook      interfaces.WebhookPusher
	DeliveryLogs interfaces.DeliveryLogRepository
	Metrics      *Metrics
}

// NewDispatcher wires the pipeline. Telegram, Webhook and DeliveryLogs are optional.
func NewDispatcher(log logger.Logger, deps DispatcherDeps) *Dispatcher {
	metrics := deps.Metrics
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &Dispatcher{
		log:          log,
		configs:      deps.Configs,
		executor:     NewExecutor(log, deps.Mailbox, deps.Forwarder, metrics),
		telegram:     deps.Telegram,
		webhook:      deps.Webhook,
		deliveryLogs: deps.DeliveryLogs,
		metrics:      metrics,
	}
}

// LoadConfig reads the routing settings once; every action of a dispatch shares the result.
func (d *Dispatcher) LoadConfig(ctx context.Context) (*dto.FeatureConfig, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "Dispatcher.LoadConfig")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	values, err := d.configs.GetMultipleConfigs(ctx, enum.DispatchConfigKeyNames())
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrap(err, "load feature configuration")
	}
	return dto.NewFeatureConfig(values), nil
}

func (d *Dispatcher) Dispatch(ctx context.Context, email *dto.InboundEmail, source enum.EmailSource) error {
	_, err := d.Run(ctx, email, source)
	return err
}

// Run delivers email and then runs the push channels, whatever the delivery outcome. The
// returned error is the configuration load error or the primary delivery failure.
// Caller cancellation is detached: once started, adapter calls are bounded only by their
// own transport timeouts.
func (d *Dispatcher) Run(ctx context.Context, email *dto.InboundEmail, source enum.EmailSource) (*Report, error) {
	ctx = context.WithoutCancel(ctx)
	dispatchId := uuid.NewString()
	ctx = utils.SetDispatchIdInContext(ctx, dispatchId)

	span, ctx := opentracing.StartSpanFromContext(ctx, "Dispatcher.Dispatch")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.LogFields(tracingLog.String("to", email.To), tracingLog.String("source", source.String()))

	started := time.Now()
	defer func() {
		d.metrics.duration.Observe(time.Since(started).Seconds())
	}()

	log := d.log.With(zap.String("dispatchId", dispatchId), zap.String("to", email.To))
	report := &Report{DispatchId: dispatchId}

	cfg, err := d.LoadConfig(ctx)
	if err != nil {
		tracing.TraceErr(span, err)
		log.Error("Failed to load feature configuration", zap.Error(err))
		d.metrics.dispatches.WithLabelValues(resultFailure).Inc()
		return report, err
	}

	report.Actions = SelectActions(email, cfg)
	log.Info("Dispatching inbound email", zap.String("actions", report.Actions.String()), zap.String("source", source.String()))

	if err := d.executor.Execute(ctx, email, cfg, report.Actions); err != nil {
		failure, ok := asDeliveryFailure(err)
		if !ok {
			failure = &DeliveryFailure{Err: err}
		}
		report.addPrimary(failure)
	}

	d.push(ctx, log, email, cfg, report)

	d.metrics.dispatches.WithLabelValues(resultLabel(report.Err())).Inc()
	d.recordDelivery(ctx, email, source, report)

	if err := report.Err(); err != nil {
		tracing.TraceErr(span, err)
		return report, err
	}
	return report, nil
}

// push runs the enabled and whitelisted channels concurrently. Failures are recorded as
// best-effort and never returned.
func (d *Dispatcher) push(ctx context.Context, log logger.Logger, email *dto.InboundEmail, cfg *dto.FeatureConfig, report *Report) {
	type pushResult struct {
		channel enum.PushChannel
		err     error
	}

	var jobs []func() pushResult
	if d.shouldPush(log, enum.PushTelegram, d.telegram != nil, cfg.Telegram.Enabled, email.To, cfg.Telegram.WhiteList) {
		jobs = append(jobs, func() pushResult {
			return pushResult{enum.PushTelegram, d.telegram.Push(ctx, email, cfg.Telegram)}
		})
	}
	if d.shouldPush(log, enum.PushWebhook, d.webhook != nil, cfg.Webhook.Enabled, email.To, cfg.Webhook.WhiteList) {
		jobs = append(jobs, func() pushResult {
			return pushResult{enum.PushWebhook, d.webhook.Push(ctx, email, cfg.Webhook)}
		})
	}

	results := make([]pushResult, len(jobs))
	var wg sync.WaitGroup
	for i, job := range jobs {
		wg.Add(1)
		go func(i int, job func() pushResult) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					results[i].err = errors.Errorf("panic during push: %v", r)
				}
			}()
			results[i] = job()
		}(i, job)
	}
	wg.Wait()

	for _, result := range results {
		d.metrics.pushes.WithLabelValues(result.channel.String(), resultLabel(result.err)).Inc()
		if result.err != nil {
			log.Warn("Push failed", zap.String("channel", result.channel.String()), zap.Error(result.err))
			report.addBestEffort(result.channel, result.err)
		}
	}
}

func (d *Dispatcher) shouldPush(log logger.Logger, channel enum.PushChannel, available, enabled bool, to, whiteList string) bool {
	if !enabled {
		return false
	}
	if !available {
		log.Warn("Push channel enabled but not wired", zap.String("channel", channel.String()))
		return false
	}
	if !whitelist.IsAllowed(to, whiteList) {
		d.metrics.pushes.WithLabelValues(channel.String(), resultSkipped).Inc()
		return false
	}
	return true
}

func (d *Dispatcher) recordDelivery(ctx context.Context, email *dto.InboundEmail, source enum.EmailSource, report *Report) {
	if d.deliveryLogs == nil {
		return
	}

	status := models.DeliveryStatusDelivered
	if report.Err() != nil {
		status = models.DeliveryStatusFailed
	}

	entry := &models.DeliveryLog{
		DispatchID: report.DispatchId,
		Source:     source.String(),
		Recipient:  email.To,
		MessageID:  email.MessageId,
		Actions:    report.Actions.String(),
		Status:     status,
		Failures:   report.FailureMessages(),
	}
	if err := d.deliveryLogs.Create(ctx, entry); err != nil {
		d.log.Warn("Failed to record delivery log", zap.String("dispatchId", report.DispatchId), zap.Error(err))
	}
}

package dispatch

import (
	"context"
	"sync"

	"github.com/opentracing/opentracing-go"
	tracingLog "github.com/opentracing/opentracing-go/log"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/wrdo/mailrouter/dto"
	mailrouter_errors "github.com/wrdo/mailrouter/errors"
	"github.com/wrdo/mailrouter/interfaces"
	"github.com/wrdo/mailrouter/internal/enum"
	"github.com/wrdo/mailrouter/internal/logger"
	"github.com/wrdo/mailrouter/internal/tracing"
	"github.com/wrdo/mailrouter/internal/utils"
)

// Executor runs the primary delivery actions for one message.
type Executor struct {
	log       logger.Logger
	mailbox   interfaces.MailboxStore
	forwarder interfaces.ExternalForwarder
	metrics   *Metrics
}

func NewExecutor(log logger.Logger, mailbox interfaces.MailboxStore, forwarder interfaces.ExternalForwarder, metrics *Metrics) *Executor {
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &Executor{
		log:       log,
		mailbox:   mailbox,
		forwarder: forwarder,
		metrics:   metrics,
	}
}

// Execute starts every action concurrently and waits for all of them. Nothing is cancelled
// or rolled back when one fails; the result is a *DeliveryFailure naming the first failed
// action in set order.
func (e *Executor) Execute(ctx context.Context, email *dto.InboundEmail, cfg *dto.FeatureConfig, actions ActionSet) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "Executor.Execute")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.LogFields(tracingLog.String("actions", actions.String()))

	results := make([]error, len(actions))
	var wg sync.WaitGroup
	for i, action := range actions {
		wg.Add(1)
		go func(i int, action enum.DeliveryAction) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					results[i] = errors.Errorf("panic in %s: %v", action, r)
				}
			}()
			results[i] = e.run(ctx, email, cfg, action)
		}(i, action)
	}
	wg.Wait()

	var failure *DeliveryFailure
	for i, err := range results {
		e.metrics.actions.WithLabelValues(actions[i].String(), resultLabel(err)).Inc()
		if err == nil {
			continue
		}
		e.log.Error("Delivery action failed",
			zap.String("action", actions[i].String()),
			zap.String("dispatchId", utils.GetDispatchIdFromContext(ctx)),
			zap.Error(err))
		if failure == nil {
			failure = &DeliveryFailure{Action: actions[i], Err: err}
		}
		failure.Failed = append(failure.Failed, actions[i])
	}

	if failure != nil {
		tracing.TraceErr(span, failure)
		return failure
	}
	return nil
}

func (e *Executor) run(ctx context.Context, email *dto.InboundEmail, cfg *dto.FeatureConfig, action enum.DeliveryAction) error {
	switch action {
	case enum.DeliveryCatchAll:
		return e.catchAll(ctx, email, cfg.CatchAll)
	case enum.DeliveryExternalForward:
		return e.forwarder.Forward(ctx, email, cfg.Forward)
	case enum.DeliveryNormalSave:
		return e.save(ctx, email)
	}
	return errors.Wrapf(mailrouter_errors.ErrUnknownAction, "%q", action)
}

// catchAll stores a copy of the message in every catch-all mailbox. Any failed copy fails
// the action once all copies have settled.
func (e *Executor) catchAll(ctx context.Context, email *dto.InboundEmail, cfg dto.CatchAllConfig) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "Executor.CatchAll")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	targets := utils.ParseAndValidateEmails(e.log, cfg.Targets)
	if len(targets) == 0 {
		tracing.TraceErr(span, mailrouter_errors.ErrNoCatchAllTargets)
		return mailrouter_errors.ErrNoCatchAllTargets
	}
	span.LogFields(tracingLog.Int("targets", len(targets)))

	var g errgroup.Group
	for _, target := range targets {
		copied := email.WithRecipient(target)
		g.Go(func() error {
			return e.save(ctx, copied)
		})
	}
	if err := g.Wait(); err != nil {
		tracing.TraceErr(span, err)
		return err
	}
	return nil
}

func (e *Executor) save(ctx context.Context, email *dto.InboundEmail) error {
	id, err := e.mailbox.Save(ctx, email)
	if err != nil {
		return errors.Wrapf(err, "save to %s", email.To)
	}
	if id == "" {
		e.log.Debug("Mailbox not found, message dropped", zap.String("to", email.To))
	}
	return nil
}

package listeners

import (
	"context"

	"github.com/opentracing/opentracing-go"
	"go.uber.org/zap"

	"github.com/wrdo/mailrouter/dto"
	"github.com/wrdo/mailrouter/interfaces"
	"github.com/wrdo/mailrouter/internal/enum"
	"github.com/wrdo/mailrouter/internal/logger"
	"github.com/wrdo/mailrouter/internal/tracing"
	"github.com/wrdo/mailrouter/services/events"
)

// ReceiveEmailListener dispatches inbound emails queued on the receive-email queue. A failed
// primary delivery is returned so the message goes to the dead letter queue.
type ReceiveEmailListener struct {
	events.BaseEventListener
	dispatcher interfaces.EmailDispatcher
}

func NewReceiveEmailListener(logger logger.Logger, dispatcher interfaces.EmailDispatcher) interfaces.EventListener {
	return &ReceiveEmailListener{
		BaseEventListener: events.NewBaseEventListener(
			logger,
			events.GetEventType[dto.InboundEmailEvent](), // subscribed event
			events.QueueReceiveEmail,                     // listening on Direct queue
		),
		dispatcher: dispatcher,
	}
}

func (l *ReceiveEmailListener) Handle(ctx context.Context, baseEvent any) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "ReceiveEmailListener.Handle")
	defer span.Finish()
	tracing.SetDefaultListenerSpanTags(ctx, span)

	validatedEvent, err := l.ValidateBaseEvent(ctx, baseEvent)
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}
	tracing.TagEntity(span, validatedEvent.Event.EntityId)

	inbound, err := events.DecodeEventData[dto.InboundEmailEvent](ctx, validatedEvent)
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}

	source := enum.EmailSourceRabbitMQ
	if inbound.Source != "" {
		source = enum.EmailSource(inbound.Source)
	}

	if err := l.dispatcher.Dispatch(ctx, &inbound.Email, source); err != nil {
		tracing.TraceErr(span, err)
		l.Logger().Error("Queued email delivery failed",
			zap.String("to", inbound.Email.To),
			zap.String("messageId", inbound.Email.MessageId),
			zap.Error(err))
		return err
	}
	return nil
}

package interfaces

import (
	"context"

	"github.com/wrdo/mailrouter/dto"
	"github.com/wrdo/mailrouter/internal/enum"
)

type EventPublisher interface {
	PublishFanoutEvent(ctx context.Context, entityId string, entityType enum.EntityType, message interface{}) error
	PublishReceiveEmailEvent(ctx context.Context, event dto.InboundEmailEvent) error
	Close() error
}

type EventListener interface {
	Handle(ctx context.Context, event any) error
	GetEventType() string
	GetQueueName() string
}

type EventSubscriber interface {
	RegisterListener(listener EventListener)
	ListenQueue(queueName string) error
	Close() error
}

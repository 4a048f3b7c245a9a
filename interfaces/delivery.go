package interfaces

import (
	"context"

	"github.com/wrdo/mailrouter/dto"
	"github.com/wrdo/mailrouter/internal/enum"
)

// MailboxStore persists an inbound message into the inbox of the mailbox named by email.To.
// An empty id with a nil error means no such mailbox exists and the message was dropped.
type MailboxStore interface {
	Save(ctx context.Context, email *dto.InboundEmail) (string, error)
}

// ExternalForwarder relays a message to the configured external addresses.
type ExternalForwarder interface {
	Forward(ctx context.Context, email *dto.InboundEmail, cfg dto.ForwardConfig) error
}

// OutboundSender is a transactional email provider.
type OutboundSender interface {
	Name() string
	Send(ctx context.Context, email *dto.OutboundEmail) error
}

type TelegramPusher interface {
	Push(ctx context.Context, email *dto.InboundEmail, cfg dto.TelegramConfig) error
}

type WebhookPusher interface {
	Push(ctx context.Context, email *dto.InboundEmail, cfg dto.WebhookConfig) error
}

// EmailDispatcher routes one inbound message. The error is non-nil only when primary delivery
// failed; push channel failures never surface here.
type EmailDispatcher interface {
	Dispatch(ctx context.Context, email *dto.InboundEmail, source enum.EmailSource) error
}

type InboxReader interface {
	ListInbox(ctx context.Context, userId, emailAddress string, page, pageSize int) (*dto.InboxPage, error)
}

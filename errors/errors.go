package mailrouter_errors

import "github.com/pkg/errors"

var (
	ErrUserIDNotSet = errors.New("userId not set on context")

	// delivery
	ErrNoCatchAllTargets  = errors.New("no valid catch-all email addresses configured")
	ErrNoForwardTargets   = errors.New("no valid forward email addresses configured")
	ErrNoSendingDomain    = errors.New("no email sending domain configured")
	ErrUnknownAction      = errors.New("unknown delivery action")
	ErrNoOutboundProvider = errors.New("no outbound email provider configured")

	// push
	ErrTelegramNotConfigured = errors.New("telegram bot token or chat id missing")
	ErrWebhookUrlMissing     = errors.New("webhook url missing")

	// inbox
	ErrMailboxNotFound  = errors.New("email address does not exist or has been deleted")
	ErrMailboxForbidden = errors.New("no permission to view this mailbox")

	// events
	ErrInvalidEvent = errors.New("invalid event")
)

package handlers

import (
	"github.com/wrdo/mailrouter/interfaces"
	"github.com/wrdo/mailrouter/internal/logger"
)

type APIHandlers struct {
	Catcher *EmailCatcherHandler
	Inbox   *InboxHandler
}

// InitHandlers builds the REST handlers. publisher may be nil, which disables async intake.
func InitHandlers(log logger.Logger, dispatcher interfaces.EmailDispatcher, publisher interfaces.EventPublisher, inbox interfaces.InboxReader) *APIHandlers {
	return &APIHandlers{
		Catcher: NewEmailCatcherHandler(log, dispatcher, publisher),
		Inbox:   NewInboxHandler(log, inbox),
	}
}

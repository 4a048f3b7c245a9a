package dto

import "github.com/wrdo/mailrouter/internal/models"

// InboxPage is one page of a mailbox inbox, newest first.
type InboxPage struct {
	List  []*models.ForwardEmail `json:"list"`
	Total int64                  `json:"total"`
}

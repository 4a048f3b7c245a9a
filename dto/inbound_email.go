package dto

import "github.com/wrdo/mailrouter/internal/utils"

// InboundEmail is a message already received and parsed upstream, as posted by the mail worker
// or queued on RabbitMQ.
type InboundEmail struct {
	From        string       `json:"from"`
	FromName    string       `json:"fromName"`
	To          string       `json:"to"`
	Cc          string       `json:"cc,omitempty"`
	Subject     string       `json:"subject,omitempty"`
	Text        string       `json:"text,omitempty"`
	HTML        string       `json:"html,omitempty"`
	Date        string       `json:"date,omitempty"`
	MessageId   string       `json:"messageId,omitempty"`
	ReplyTo     string       `json:"replyTo,omitempty"`
	Headers     string       `json:"headers,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Attachment is metadata only; the content lives in object storage at R2Path.
type Attachment struct {
	Filename string `json:"filename"`
	MimeType string `json:"mimeType"`
	R2Path   string `json:"r2Path"`
	Size     int64  `json:"size"`
}

// WithRecipient returns a copy addressed to another mailbox. Used for catch-all fan-out.
func (e InboundEmail) WithRecipient(to string) *InboundEmail {
	e.To = to
	return &e
}

// SenderDisplay is "Name <address>" when a display name is known, else the address.
func (e *InboundEmail) SenderDisplay() string {
	return utils.FormatSender(e.FromName, e.From)
}

type InboundEmailEvent struct {
	Email  InboundEmail `json:"email"`
	Source string       `json:"source,omitempty"`
}

// EmailStoredEvent is published after a message lands in a mailbox inbox.
type EmailStoredEvent struct {
	ForwardEmailId string `json:"forwardEmailId"`
	UserEmailId    string `json:"userEmailId"`
	UserId         string `json:"userId"`
	EmailAddress   string `json:"emailAddress"`
	From           string `json:"from"`
	Subject        string `json:"subject"`
	DispatchId     string `json:"dispatchId,omitempty"`
}

package mailbox

import (
	"context"

	"github.com/goccy/go-json"
	"github.com/opentracing/opentracing-go"
	tracingLog "github.com/opentracing/opentracing-go/log"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/wrdo/mailrouter/dto"
	mailrouter_errors "github.com/wrdo/mailrouter/errors"
	"github.com/wrdo/mailrouter/interfaces"
	"github.com/wrdo/mailrouter/internal/enum"
	"github.com/wrdo/mailrouter/internal/logger"
	"github.com/wrdo/mailrouter/internal/models"
	"github.com/wrdo/mailrouter/internal/tracing"
	"github.com/wrdo/mailrouter/internal/utils"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

type MailboxService struct {
	log           logger.Logger
	userEmails    interfaces.UserEmailRepository
	forwardEmails interfaces.ForwardEmailRepository
	publisher     interfaces.EventPublisher
}

// NewMailboxService builds the inbox store. publisher may be nil.
func NewMailboxService(log logger.Logger, userEmails interfaces.UserEmailRepository, forwardEmails interfaces.ForwardEmailRepository, publisher interfaces.EventPublisher) *MailboxService {
	return &MailboxService{
		log:           log,
		userEmails:    userEmails,
		forwardEmails: forwardEmails,
		publisher:     publisher,
	}
}

// Save stores email in the inbox of email.To. When no mailbox owns the address the message
// is dropped and Save returns an empty id and no error.
func (s *MailboxService) Save(ctx context.Context, email *dto.InboundEmail) (string, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "MailboxService.Save")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.LogFields(tracingLog.String("to", email.To))

	userEmail, err := s.userEmails.GetByEmailAddress(ctx, email.To)
	if err != nil {
		tracing.TraceErr(span, err)
		return "", errors.Wrap(err, "lookup mailbox")
	}
	if userEmail == nil {
		span.LogFields(tracingLog.Bool("result.stored", false))
		return "", nil
	}

	record, err := newForwardEmail(email)
	if err != nil {
		tracing.TraceErr(span, err)
		return "", err
	}

	if err := s.forwardEmails.Create(ctx, record); err != nil {
		tracing.TraceErr(span, err)
		return "", errors.Wrap(err, "store email")
	}
	tracing.TagEntity(span, record.ID)

	s.notifyStored(ctx, record, userEmail)
	return record.ID, nil
}

func newForwardEmail(email *dto.InboundEmail) (*models.ForwardEmail, error) {
	attachments := []byte("[]")
	if len(email.Attachments) > 0 {
		var err error
		attachments, err = json.Marshal(email.Attachments)
		if err != nil {
			return nil, errors.Wrap(err, "encode attachments")
		}
	}

	return &models.ForwardEmail{
		From:        email.From,
		FromName:    email.FromName,
		To:          email.To,
		Subject:     email.Subject,
		Text:        email.Text,
		HTML:        email.HTML,
		Date:        email.Date,
		MessageID:   email.MessageId,
		ReplyTo:     email.ReplyTo,
		Cc:          email.Cc,
		Headers:     "[]",
		Attachments: string(attachments),
	}, nil
}

// notifyStored never fails the save.
func (s *MailboxService) notifyStored(ctx context.Context, record *models.ForwardEmail, userEmail *models.UserEmail) {
	if s.publisher == nil {
		return
	}

	event := dto.EmailStoredEvent{
		ForwardEmailId: record.ID,
		UserEmailId:    userEmail.ID,
		UserId:         userEmail.UserID,
		EmailAddress:   userEmail.EmailAddress,
		From:           record.From,
		Subject:        record.Subject,
		DispatchId:     utils.GetDispatchIdFromContext(ctx),
	}
	if err := s.publisher.PublishFanoutEvent(ctx, record.ID, enum.FORWARD_EMAIL, event); err != nil {
		s.log.Warn("Failed to publish email stored event", zap.String("forwardEmailId", record.ID), zap.Error(err))
	}
}

// ListInbox returns a page of the inbox of emailAddress, which userId must own.
func (s *MailboxService) ListInbox(ctx context.Context, userId, emailAddress string, page, pageSize int) (*dto.InboxPage, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "MailboxService.ListInbox")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.LogFields(tracingLog.String("emailAddress", emailAddress), tracingLog.Int("page", page), tracingLog.Int("pageSize", pageSize))

	userEmail, err := s.userEmails.GetByEmailAddress(ctx, emailAddress)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrap(err, "lookup mailbox")
	}
	if userEmail == nil || userEmail.IsDeleted() {
		return nil, mailrouter_errors.ErrMailboxNotFound
	}
	if userEmail.UserID != userId {
		return nil, mailrouter_errors.ErrMailboxForbidden
	}

	page, pageSize = normalizePaging(page, pageSize)
	emails, total, err := s.forwardEmails.ListByRecipient(ctx, emailAddress, page, pageSize)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrap(err, "list inbox")
	}
	if emails == nil {
		emails = []*models.ForwardEmail{}
	}
	return &dto.InboxPage{List: emails, Total: total}, nil
}

func normalizePaging(page, pageSize int) (int, int) {
	if page < 1 {
		page = DefaultPage
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}

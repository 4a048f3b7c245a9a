package mailbox

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/wrdo/mailrouter/dto"
	mailrouter_errors "github.com/wrdo/mailrouter/errors"
	"github.com/wrdo/mailrouter/internal/database"
	"github.com/wrdo/mailrouter/internal/enum"
	"github.com/wrdo/mailrouter/internal/logger"
	"github.com/wrdo/mailrouter/internal/models"
	"github.com/wrdo/mailrouter/internal/repository"
	"github.com/wrdo/mailrouter/internal/utils"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishFanoutEvent(ctx context.Context, entityId string, entityType enum.EntityType, message interface{}) error {
	return m.Called(ctx, entityId, entityType, message).Error(0)
}

func (m *mockPublisher) PublishReceiveEmailEvent(ctx context.Context, event dto.InboundEmailEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *mockPublisher) Close() error {
	return nil
}

func testLogger() logger.Logger {
	appLogger := logger.NewAppLogger(&logger.Config{DevMode: true})
	appLogger.InitLogger()
	return appLogger
}

func newTestRepositories(t *testing.T) *repository.Repositories {
	t.Helper()
	db, err := database.NewConnection(&database.DatabaseConfig{
		Driver:     database.DriverSQLite,
		SQLitePath: ":memory:",
		LogLevel:   "SILENT",
	})
	require.NoError(t, err)
	require.NoError(t, repository.MigrateDB(db))
	return repository.InitRepositories(db)
}

func seedMailbox(t *testing.T, repos *repository.Repositories, userId, address string, deleted bool) *models.UserEmail {
	t.Helper()
	userEmail := &models.UserEmail{UserID: userId, EmailAddress: address}
	if deleted {
		userEmail.DeletedAt = utils.NowPtr()
	}
	require.NoError(t, repos.UserEmailRepository.Create(context.Background(), userEmail))
	return userEmail
}

func TestSave_StoresMessageAndPublishes(t *testing.T) {
	repos := newTestRepositories(t)
	mailbox := seedMailbox(t, repos, "usr_1", "inbox@wr.do", false)
	publisher := new(mockPublisher)
	publisher.On("PublishFanoutEvent", mock.Anything, mock.Anything, enum.FORWARD_EMAIL, mock.MatchedBy(func(e dto.EmailStoredEvent) bool {
		return e.UserEmailId == mailbox.ID && e.UserId == "usr_1" && e.DispatchId == "dsp-1"
	})).Return(nil).Once()

	service := NewMailboxService(testLogger(), repos.UserEmailRepository, repos.ForwardEmailRepository, publisher)
	ctx := utils.SetDispatchIdInContext(context.Background(), "dsp-1")
	email := &dto.InboundEmail{
		From:        "a@x.com",
		FromName:    "Alice",
		To:          "inbox@wr.do",
		Subject:     "Hi",
		Text:        "hello",
		Attachments: []dto.Attachment{{Filename: "a.pdf", MimeType: "application/pdf", R2Path: "mail/a.pdf", Size: 12}},
	}

	id, err := service.Save(ctx, email)
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	publisher.AssertExpectations(t)

	page, err := service.ListInbox(context.Background(), "usr_1", "inbox@wr.do", 1, 10)
	require.NoError(t, err)
	require.Len(t, page.List, 1)
	stored := page.List[0]
	assert.Equal(t, id, stored.ID)
	assert.Equal(t, "[]", stored.Headers)
	assert.Nil(t, stored.ReadAt)

	var attachments []dto.Attachment
	require.NoError(t, json.Unmarshal([]byte(stored.Attachments), &attachments))
	assert.Equal(t, email.Attachments, attachments)
}

func TestSave_UnknownMailboxIsDropped(t *testing.T) {
	repos := newTestRepositories(t)
	publisher := new(mockPublisher)
	service := NewMailboxService(testLogger(), repos.UserEmailRepository, repos.ForwardEmailRepository, publisher)

	id, err := service.Save(context.Background(), &dto.InboundEmail{From: "a@x.com", To: "nobody@wr.do"})
	require.NoError(t, err)
	assert.Empty(t, id)
	publisher.AssertNotCalled(t, "PublishFanoutEvent", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSave_SoftDeletedMailboxStillReceives(t *testing.T) {
	repos := newTestRepositories(t)
	seedMailbox(t, repos, "usr_1", "old@wr.do", true)
	service := NewMailboxService(testLogger(), repos.UserEmailRepository, repos.ForwardEmailRepository, nil)

	id, err := service.Save(context.Background(), &dto.InboundEmail{From: "a@x.com", To: "old@wr.do"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
}

func TestSave_PublishFailureDoesNotFailSave(t *testing.T) {
	repos := newTestRepositories(t)
	seedMailbox(t, repos, "usr_1", "inbox@wr.do", false)
	publisher := new(mockPublisher)
	publisher.On("PublishFanoutEvent", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("broker down")).Once()
	service := NewMailboxService(testLogger(), repos.UserEmailRepository, repos.ForwardEmailRepository, publisher)

	id, err := service.Save(context.Background(), &dto.InboundEmail{From: "a@x.com", To: "inbox@wr.do"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
}

func TestListInbox(t *testing.T) {
	repos := newTestRepositories(t)
	seedMailbox(t, repos, "usr_1", "inbox@wr.do", false)
	seedMailbox(t, repos, "usr_1", "gone@wr.do", true)
	service := NewMailboxService(testLogger(), repos.UserEmailRepository, repos.ForwardEmailRepository, nil)
	ctx := context.Background()

	for _, subject := range []string{"first", "second", "third"} {
		_, err := service.Save(ctx, &dto.InboundEmail{From: "a@x.com", To: "inbox@wr.do", Subject: subject})
		require.NoError(t, err)
		time.Sleep(5 * time.Millisecond)
	}

	page, err := service.ListInbox(ctx, "usr_1", "inbox@wr.do", 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	require.Len(t, page.List, 2)
	assert.Equal(t, "third", page.List[0].Subject)
	assert.Equal(t, "second", page.List[1].Subject)

	page, err = service.ListInbox(ctx, "usr_1", "inbox@wr.do", 0, 0)
	require.NoError(t, err)
	assert.Len(t, page.List, 3)

	_, err = service.ListInbox(ctx, "usr_2", "inbox@wr.do", 1, 10)
	assert.ErrorIs(t, err, mailrouter_errors.ErrMailboxForbidden)

	_, err = service.ListInbox(ctx, "usr_1", "gone@wr.do", 1, 10)
	assert.ErrorIs(t, err, mailrouter_errors.ErrMailboxNotFound)

	_, err = service.ListInbox(ctx, "usr_1", "missing@wr.do", 1, 10)
	assert.ErrorIs(t, err, mailrouter_errors.ErrMailboxNotFound)

	page, err = service.ListInbox(ctx, "usr_1", "inbox@wr.do", 5, 10)
	require.NoError(t, err)
	assert.NotNil(t, page.List)
	assert.Empty(t, page.List)
}

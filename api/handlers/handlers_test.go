package handlers

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/wrdo/mailrouter/dto"
	mailrouter_errors "github.com/wrdo/mailrouter/errors"
	"github.com/wrdo/mailrouter/internal/enum"
	"github.com/wrdo/mailrouter/internal/logger"
	"github.com/wrdo/mailrouter/internal/models"
	"github.com/wrdo/mailrouter/internal/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testLogger() logger.Logger {
	appLogger := logger.NewAppLogger(&logger.Config{DevMode: true})
	appLogger.InitLogger()
	return appLogger
}

type mockDispatcher struct {
	mock.Mock
}

func (m *mockDispatcher) Dispatch(ctx context.Context, email *dto.InboundEmail, source enum.EmailSource) error {
	return m.Called(ctx, email, source).Error(0)
}

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

type mockInboxReader struct {
	mock.Mock
}

func (m *mockInboxReader) ListInbox(ctx context.Context, userId, emailAddress string, page, pageSize int) (*dto.InboxPage, error) {
	args := m.Called(ctx, userId, emailAddress, page, pageSize)
	result, _ := args.Get(0).(*dto.InboxPage)
	return result, args.Error(1)
}

func catcherRouter(dispatcher *mockDispatcher, publisher *mockPublisher) *gin.Engine {
	var h *EmailCatcherHandler
	if publisher == nil {
		h = NewEmailCatcherHandler(testLogger(), dispatcher, nil)
	} else {
		h = NewEmailCatcherHandler(testLogger(), dispatcher, publisher)
	}
	r := gin.New()
	r.POST("/api/v1/email-catcher", h.Receive())
	return r
}

func postEmail(r *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	var raw []byte
	switch b := body.(type) {
	case string:
		raw = []byte(b)
	default:
		raw, _ = json.Marshal(b)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestEmailCatcher_DispatchesInline(t *testing.T) {
	dispatcher := new(mockDispatcher)
	dispatcher.On("Dispatch", mock.Anything, mock.MatchedBy(func(e *dto.InboundEmail) bool {
		return e.To == "me@wr.do" && e.Subject == "Hi"
	}), enum.EmailSourceCatcherAPI).Return(nil)

	w := postEmail(catcherRouter(dispatcher, nil), "/api/v1/email-catcher", dto.InboundEmail{From: "a@x.com", To: " me@wr.do ", Subject: "Hi"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(200), decode(t, w)["status"])
	dispatcher.AssertExpectations(t)
}

func TestEmailCatcher_PrimaryFailure(t *testing.T) {
	dispatcher := new(mockDispatcher)
	dispatcher.On("Dispatch", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("email operation failed: db down"))

	w := postEmail(catcherRouter(dispatcher, nil), "/api/v1/email-catcher", dto.InboundEmail{From: "a@x.com", To: "me@wr.do"})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decode(t, w)
	assert.Equal(t, float64(500), body["status"])
	assert.Equal(t, "email operation failed: db down", body["error"])
}

func TestEmailCatcher_BadRequests(t *testing.T) {
	dispatcher := new(mockDispatcher)
	r := catcherRouter(dispatcher, nil)

	assert.Equal(t, http.StatusBadRequest, postEmail(r, "/api/v1/email-catcher", "not json").Code)

	w := postEmail(r, "/api/v1/email-catcher", dto.InboundEmail{From: "a@x.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w)["error"], "to: is required")

	w = postEmail(r, "/api/v1/email-catcher", dto.InboundEmail{From: "a@x.com", To: "nobody"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w)["error"], "to: is not a valid email address")

	dispatcher.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything, mock.Anything)
}

func TestEmailCatcher_Async(t *testing.T) {
	dispatcher := new(mockDispatcher)
	publisher := new(mockPublisher)
	publisher.On("PublishReceiveEmailEvent", mock.Anything, mock.MatchedBy(func(e dto.InboundEmailEvent) bool {
		return e.Email.To == "me@wr.do" && e.Source == "catcher-api"
	})).Return(nil)

	w := postEmail(catcherRouter(dispatcher, publisher), "/api/v1/email-catcher?async=true", dto.InboundEmail{From: "a@x.com", To: "me@wr.do"})

	assert.Equal(t, http.StatusAccepted, w.Code)
	publisher.AssertExpectations(t)
	dispatcher.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything, mock.Anything)
}

func TestEmailCatcher_AsyncFallsBackWhenQueueFails(t *testing.T) {
	dispatcher := new(mockDispatcher)
	dispatcher.On("Dispatch", mock.Anything, mock.Anything, enum.EmailSourceCatcherAPI).Return(nil)
	publisher := new(mockPublisher)
	publisher.On("PublishReceiveEmailEvent", mock.Anything, mock.Anything).Return(errors.New("broker down"))

	w := postEmail(catcherRouter(dispatcher, publisher), "/api/v1/email-catcher?async=true", dto.InboundEmail{From: "a@x.com", To: "me@wr.do"})

	assert.Equal(t, http.StatusOK, w.Code)
	dispatcher.AssertExpectations(t)
}

func inboxRouter(inbox *mockInboxReader, userId string) *gin.Engine {
	r := gin.New()
	r.GET("/api/v1/email/inbox", func(c *gin.Context) {
		if userId != "" {
			ctx := utils.WithCustomContext(c.Request.Context(), &utils.CustomContext{UserId: userId})
			c.Request = c.Request.WithContext(ctx)
		}
		c.Next()
	}, NewInboxHandler(testLogger(), inbox).List())
	return r
}

func getInbox(r *gin.Engine, query string) *httptest.ResponseRecorder {
	return doGet(r, "/api/v1/email/inbox"+query)
}

func TestInbox_List(t *testing.T) {
	inbox := new(mockInboxReader)
	inbox.On("ListInbox", mock.Anything, "usr_1", "me@wr.do", 2, 5).Return(&dto.InboxPage{
		List:  []*models.ForwardEmail{{ID: "fe_1", Subject: "Hi"}},
		Total: 6,
	}, nil)

	w := getInbox(inboxRouter(inbox, "usr_1"), "?emailAddress=me@wr.do&page=2&size=5")

	assert.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, float64(6), body["total"])
	assert.Len(t, body["list"], 1)
}

func TestInbox_Defaults(t *testing.T) {
	inbox := new(mockInboxReader)
	inbox.On("ListInbox", mock.Anything, "usr_1", "me@wr.do", 1, 10).Return(&dto.InboxPage{List: []*models.ForwardEmail{}}, nil)

	w := getInbox(inboxRouter(inbox, "usr_1"), "?emailAddress=me@wr.do&page=abc")
	assert.Equal(t, http.StatusOK, w.Code)
	inbox.AssertExpectations(t)
}

func TestInbox_Errors(t *testing.T) {
	inbox := new(mockInboxReader)
	inbox.On("ListInbox", mock.Anything, "usr_1", "gone@wr.do", 1, 10).Return(nil, mailrouter_errors.ErrMailboxNotFound)
	inbox.On("ListInbox", mock.Anything, "usr_1", "theirs@wr.do", 1, 10).Return(nil, mailrouter_errors.ErrMailboxForbidden)
	inbox.On("ListInbox", mock.Anything, "usr_1", "boom@wr.do", 1, 10).Return(nil, errors.New("db down"))
	r := inboxRouter(inbox, "usr_1")

	assert.Equal(t, http.StatusBadRequest, getInbox(r, "").Code)
	assert.Equal(t, http.StatusNotFound, getInbox(r, "?emailAddress=gone@wr.do").Code)
	assert.Equal(t, http.StatusForbidden, getInbox(r, "?emailAddress=theirs@wr.do").Code)

	w := getInbox(r, "?emailAddress=boom@wr.do")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "db down")

	assert.Equal(t, http.StatusUnauthorized, getInbox(inboxRouter(inbox, ""), "?emailAddress=me@wr.do").Code)
}

func TestHealthAndStatus(t *testing.T) {
	r := gin.New()
	r.GET("/health", HealthCheck)
	r.GET("/status", Status("brevo", false))

	w := doGet(r, "/health")
	assert.Equal(t, http.StatusOK, w.Code)

	w = doGet(r, "/status")
	body := decode(t, w)
	assert.Equal(t, "brevo", body["outboundProvider"])
	assert.Equal(t, false, body["eventsEnabled"])
}

func doGet(r *gin.Engine, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	mailrouter_errors "github.com/wrdo/mailrouter/errors"
	"github.com/wrdo/mailrouter/interfaces"
	"github.com/wrdo/mailrouter/internal/logger"
	"github.com/wrdo/mailrouter/internal/tracing"
	"github.com/wrdo/mailrouter/internal/utils"
)

const (
	defaultInboxPage     = 1
	defaultInboxPageSize = 10
)

type InboxHandler struct {
	log   logger.Logger
	inbox interfaces.InboxReader
}

func NewInboxHandler(log logger.Logger, inbox interfaces.InboxReader) *InboxHandler {
	return &InboxHandler{
		log:   log,
		inbox: inbox,
	}
}

// List returns one page of stored mail for ?emailAddress=, which the caller must own.
func (h *InboxHandler) List() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "InboxHandler.List")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		userId := utils.GetUserIdFromContext(ctx)
		if userId == "" {
			tracing.TraceErr(span, mailrouter_errors.ErrUserIDNotSet)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		emailAddress := strings.TrimSpace(c.Query("emailAddress"))
		if emailAddress == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing emailAddress parameter"})
			return
		}
		page := queryInt(c, "page", defaultInboxPage)
		pageSize := queryInt(c, "size", defaultInboxPageSize)

		result, err := h.inbox.ListInbox(ctx, userId, emailAddress, page, pageSize)
		switch {
		case err == nil:
			c.JSON(http.StatusOK, result)
		case errors.Is(err, mailrouter_errors.ErrMailboxNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, mailrouter_errors.ErrMailboxForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		default:
			tracing.TraceErr(span, err)
			h.log.Errorf("Error fetching inbox of %s: %v", emailAddress, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
	}
}

func queryInt(c *gin.Context, name string, def int) int {
	value, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return def
	}
	return value
}

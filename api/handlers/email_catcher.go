package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"
	"go.uber.org/zap"

	apierrors "github.com/wrdo/mailrouter/api/errors"
	"github.com/wrdo/mailrouter/dto"
	"github.com/wrdo/mailrouter/interfaces"
	"github.com/wrdo/mailrouter/internal/enum"
	"github.com/wrdo/mailrouter/internal/logger"
	"github.com/wrdo/mailrouter/internal/tracing"
	"github.com/wrdo/mailrouter/internal/utils"
)

type EmailCatcherHandler struct {
	log        logger.Logger
	dispatcher interfaces.EmailDispatcher
	publisher  interfaces.EventPublisher
}

func NewEmailCatcherHandler(log logger.Logger, dispatcher interfaces.EmailDispatcher, publisher interfaces.EventPublisher) *EmailCatcherHandler {
	return &EmailCatcherHandler{
		log:        log,
		dispatcher: dispatcher,
		publisher:  publisher,
	}
}

// Receive accepts one parsed inbound email from the mail worker. With ?async=true and a
// broker configured the email is queued and 202 is returned; otherwise it is dispatched
// inline and the response reflects the primary delivery outcome only.
func (h *EmailCatcherHandler) Receive() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "EmailCatcherHandler.Receive")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		var email dto.InboundEmail
		if err := c.ShouldBindJSON(&email); err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusBadRequest, gin.H{"status": http.StatusBadRequest, "error": "No email data received"})
			return
		}

		if validationErrs := validateInboundEmail(&email); validationErrs.HasErrors() {
			tracing.TraceErr(span, validationErrs)
			c.JSON(http.StatusBadRequest, gin.H{
				"status": http.StatusBadRequest,
				"error":  validationErrs.Error(),
				"fields": validationErrs.Messages(),
			})
			return
		}
		span.LogKV("to", email.To, "messageId", email.MessageId)

		if c.Query("async") == "true" && h.publisher != nil {
			event := dto.InboundEmailEvent{Email: email, Source: enum.EmailSourceCatcherAPI.String()}
			err := h.publisher.PublishReceiveEmailEvent(ctx, event)
			if err == nil {
				c.JSON(http.StatusAccepted, gin.H{"status": http.StatusAccepted})
				return
			}
			tracing.TraceErr(span, err)
			h.log.Warn("Queueing inbound email failed, dispatching inline", zap.String("to", email.To), zap.Error(err))
		}

		if err := h.dispatcher.Dispatch(ctx, &email, enum.EmailSourceCatcherAPI); err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{"status": http.StatusInternalServerError, "error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": http.StatusOK})
	}
}

func validateInboundEmail(email *dto.InboundEmail) *apierrors.MultiErrors {
	errs := apierrors.NewMultiErrors()

	email.To = strings.TrimSpace(email.To)
	switch {
	case email.To == "":
		errs.Add("to", "is required", nil)
	case !utils.IsValidEmail(email.To):
		errs.Add("to", "is not a valid email address", nil)
	}

	for i, attachment := range email.Attachments {
		if attachment.Size < 0 {
			errs.Add(fmt.Sprintf("attachments[%d].size", i), "must not be negative", nil)
		}
	}
	return errs
}

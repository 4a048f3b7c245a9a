package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wrdo/mailrouter/api/handlers"
	"github.com/wrdo/mailrouter/api/middleware"
	"github.com/wrdo/mailrouter/internal/logger"
	"github.com/wrdo/mailrouter/internal/repository"
	"github.com/wrdo/mailrouter/internal/tracing"
	"github.com/wrdo/mailrouter/services"
)

const appSource = "mailrouter"

// RegisterRoutes sets up all API endpoints
func RegisterRoutes(r *gin.Engine, s *services.Services, repos *repository.Repositories, log logger.Logger, catcherAPIKey string, gatherer prometheus.Gatherer) {
	if s == nil {
		panic("Services cannot be nil")
	}
	if repos == nil {
		panic("Repositories cannot be nil")
	}

	r.Use(gin.Recovery())
	r.Use(tracing.RecoveryWithJaeger(opentracing.GlobalTracer()))

	apiHandlers := handlers.InitHandlers(log, s.Dispatcher, s.Publisher(), s.MailboxService)

	r.GET("/health", handlers.HealthCheck)
	r.GET("/status", handlers.Status(s.OutboundSender.Name(), s.EventsService != nil))
	if gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	v1 := r.Group("/api/v1")
	v1.Use(middleware.TracingMiddleware())

	// called by the mail worker
	catcher := v1.Group("/email-catcher")
	catcher.Use(middleware.APIKeyMiddleware(middleware.APIKeyConfig{
		HeaderName:  middleware.CatcherAPIKeyHeader,
		ValidAPIKey: catcherAPIKey,
	}))
	catcher.Use(middleware.CustomContextMiddleware(appSource))
	{
		catcher.POST("", apiHandlers.Catcher.Receive())
	}

	// called by end users with their personal API key
	email := v1.Group("/email")
	email.Use(middleware.UserAPIKeyMiddleware(repos.UserRepository, log))
	email.Use(middleware.CustomContextMiddleware(appSource))
	{
		email.GET("/inbox", apiHandlers.Inbox.List())
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
}

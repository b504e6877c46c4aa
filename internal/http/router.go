// Package httpapi wires the HTTP transport (Gin) to the bot's application
// services, middleware, and route handlers. It centralizes cross-cutting
// concerns such as tracing, correlation IDs, logging/redaction, panic
// recovery, metrics, webhook dedup, and rate limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/line/line-bot-sdk-go/v7/linebot"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/mshida/kaimono-bot/internal/config"
	"github.com/mshida/kaimono-bot/internal/domain"
	"github.com/mshida/kaimono-bot/internal/http/handlers"
	"github.com/mshida/kaimono-bot/internal/http/middleware"
	"github.com/mshida/kaimono-bot/internal/notify"
	"github.com/mshida/kaimono-bot/internal/repo"
	"github.com/mshida/kaimono-bot/internal/services"
)

// listRepoShim adapts the repository free functions to the services.ListRepo
// interface expected by the ListService. This keeps services decoupled from
// the concrete repo package while reusing existing functions.
type listRepoShim struct{}

// FindUserByLineID proxies repo.FindUserByLineID.
func (listRepoShim) FindUserByLineID(ctx context.Context, db *gorm.DB, lineUserID string) (*domain.User, error) {
	return repo.FindUserByLineID(ctx, db, lineUserID)
}

// CreateUser proxies repo.CreateUser.
func (listRepoShim) CreateUser(ctx context.Context, db *gorm.DB, lineUserID string) (*domain.User, error) {
	return repo.CreateUser(ctx, db, lineUserID)
}

// CreateItem proxies repo.CreateItem.
func (listRepoShim) CreateItem(ctx context.Context, db *gorm.DB, userID, name string) (*domain.Item, error) {
	return repo.CreateItem(ctx, db, userID, name)
}

// ListItems proxies repo.ListItems.
func (listRepoShim) ListItems(ctx context.Context, db *gorm.DB, userID string, bought bool) ([]domain.Item, error) {
	return repo.ListItems(ctx, db, userID, bought)
}

// FirstUnboughtItemByName proxies repo.FirstUnboughtItemByName.
func (listRepoShim) FirstUnboughtItemByName(ctx context.Context, db *gorm.DB, userID, name string) (*domain.Item, error) {
	return repo.FirstUnboughtItemByName(ctx, db, userID, name)
}

// MarkItemBought proxies repo.MarkItemBought.
func (listRepoShim) MarkItemBought(ctx context.Context, db *gorm.DB, id string) error {
	return repo.MarkItemBought(ctx, db, id)
}

// MarkAllItemsBought proxies repo.MarkAllItemsBought.
func (listRepoShim) MarkAllItemsBought(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	return repo.MarkAllItemsBought(ctx, db, userID)
}

// FirstItemURL proxies repo.FirstItemURL.
func (listRepoShim) FirstItemURL(ctx context.Context, db *gorm.DB) (*domain.ItemURL, error) {
	return repo.FirstItemURL(ctx, db)
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), webhook dedup and
// rate limiting, health and metrics endpoints, and mounts the webhook.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with secret scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Gzip for responses
//  7. Metrics
//  8. Webhook dedup (before rate limiter to allow bypass on replay)
//  9. Rate limiter (per client IP, bypass on replay)
func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg config.Config) error {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with redaction
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{}))

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (1 MiB); webhook batches are far smaller
	r.Use(limitBody(1 << 20))

	// 6) Compress responses for clients that accept it
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	// 7) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 8) Webhook dedup (before rate limiting)
	r.Use(middleware.WebhookDedup(
		middleware.DedupOptions{},
		func(ctx context.Context, retryKey string, now time.Time) (bool, error) {
			rec, err := repo.GetWebhookDelivery(ctx, db, retryKey, now)
			if err != nil || rec == nil {
				return false, nil
			}
			return true, nil
		},
	))

	// 9) Token-bucket rate limiter per client IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByClientIP())
	r.Use(rl.Handler())

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", handlers.Health)

	// Dependency injection: handler ← service ← repo/db, platform client
	if cfg.LineChannelSecret == "" || cfg.LineChannelAccessToken == "" {
		return errors.New("httpapi: LINE channel credentials are required")
	}
	client, err := linebot.New(cfg.LineChannelSecret, cfg.LineChannelAccessToken)
	if err != nil {
		return err
	}

	svc := services.NewListService(db, listRepoShim{}, notify.New(cfg.SlackWebhookURL))
	h := handlers.NewWebhookHandler(
		&handlers.SDKGateway{Client: client},
		svc,
		func(ctx context.Context, retryKey string, status int) error {
			_, err := repo.CreateWebhookDelivery(ctx, db, retryKey, status, cfg.DedupTTL)
			if errors.Is(err, repo.ErrDuplicate) {
				return nil
			}
			return err
		},
	)

	r.POST("/callback", h.Callback)
	return nil
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements webhook redelivery deduplication. LINE delivers
// webhooks at least once; a redelivery carries the same X-Line-Retry-Key as
// the original attempt. The middleware validates the header, performs a
// user-supplied lookup to detect an already-processed delivery, and
// annotates the request context so downstream code can:
//   - read the normalized key (GetRetryKey)
//   - detect replayed deliveries (IsReplay)
//   - bypass rate limiting when a replay is acknowledged (internal flag)
//
// Design goals:
//   - Keep transport concerns (validation, context stashing) in middleware.
//   - Decouple persistence via a narrow DeliveryLookup function type.
//   - Remain framework-agnostic beyond Gin's context.
package middleware

import (
	"context"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
)

// HeaderRetryKey is the header LINE sets on webhook redeliveries. The value
// is stable across retries of one delivery, which makes it a natural
// idempotency key.
const HeaderRetryKey = "X-Line-Retry-Key"

// Context keys used internally to stash dedup state.
// These keys are intentionally unexported and referenced via accessor helpers.
const (
	ctxKeyRetryKey   = "dedup.key"
	ctxKeyReplay     = "dedup.replay" // bool: true when the delivery was already processed
	ctxKeyRateBypass = "rate.bypass"  // bool: true to skip rate limiting
)

// GetRetryKey returns the validated retry key stored in the Gin context by
// WebhookDedup. The second return value indicates presence.
//
// Handlers should prefer this function over reading the header directly.
func GetRetryKey(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxKeyRetryKey)
	if !ok {
		return "", false
	}
	s, _ := v.(string)
	return s, s != ""
}

// IsReplay reports whether the middleware detected that this request
// redelivers an already-processed webhook.
//
// When true, the handler should acknowledge the delivery without
// re-executing commands or firing notifications.
func IsReplay(c *gin.Context) bool {
	v, ok := c.Get(ctxKeyReplay)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// DedupOptions configures header validation behavior for WebhookDedup.
// TTL enforcement is intentionally out of scope here and should be
// implemented inside the provided lookup function.
type DedupOptions struct {
	// MaxLen caps the accepted key length. Values <= 0 default to 64.
	MaxLen int
	// Pattern restricts allowed characters. If nil, a UUID-shaped pattern is
	// used; LINE documents the retry key as a UUID.
	Pattern *regexp.Regexp
}

// DeliveryLookup answers whether a still-valid delivery record exists for
// the retry key at the given time. Implementations typically consult the
// webhook_deliveries table.
//
// Return exists=true when the delivery was already processed; return an
// error only for lookup failures (which should not block normal processing).
type DeliveryLookup func(ctx context.Context, retryKey string, now time.Time) (exists bool, err error)

// WebhookDedup validates the X-Line-Retry-Key header (if present), stashes
// it in the request context, and checks for a prior processed delivery via
// the supplied lookup. When a replay is detected, it marks the context so
// downstream components can:
//   - detect the replay via IsReplay
//   - bypass rate limiting (internal flag checked by the RateLimiter)
//
// Behavior:
//   - If the header is absent (first delivery attempts have none): no-op.
//   - If the header fails validation: responds 400 with a compact error body.
//   - If lookup indicates a replay: sets replay + rate-bypass flags.
//   - Always invokes the next handler unless validation fails.
//
// The middleware does not itself acknowledge replays; the webhook handler
// stays in control of the response.
func WebhookDedup(opts DedupOptions, lookup DeliveryLookup) gin.HandlerFunc {
	maxLen := opts.MaxLen
	if maxLen <= 0 {
		maxLen = 64
	}
	pat := opts.Pattern
	if pat == nil {
		pat = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)
	}

	return func(c *gin.Context) {
		key := c.GetHeader(HeaderRetryKey)
		if key == "" {
			// Nothing to validate or stash; proceed.
			c.Next()
			return
		}

		if len(key) > maxLen || !pat.MatchString(key) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"request_id": c.Writer.Header().Get(requestIDHeader),
				"code":       "bad_request",
				"message":    "invalid retry key",
			})
			return
		}

		c.Set(ctxKeyRetryKey, key)

		if lookup != nil {
			exists, err := lookup(c.Request.Context(), key, time.Now().UTC())
			// Lookup failures must not block processing; the worst case is
			// one duplicate execution, which the platform already implies.
			if err == nil && exists {
				c.Set(ctxKeyReplay, true)
				c.Set(ctxKeyRateBypass, true)
			}
		}

		c.Next()
	}
}

// Webhook HTTP handler.
//
// This file exposes the messaging-platform ingress:
//   - POST /callback (signed webhook, text message events)
//
// The handler is transport-thin: it verifies the request signature via the
// platform SDK, dispatches each text message event to the list service, and
// delivers the computed reply through the platform's reply API. Delivery
// retries are made safe by the dedup middleware: replayed requests (same
// X-Line-Retry-Key) are acknowledged without reprocessing.
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/line/line-bot-sdk-go/v7/linebot"

	"github.com/mshida/kaimono-bot/internal/http/middleware"
)

//
// Service contracts (context-aware)
//

// ListService computes the reply for a single inbound text message.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type ListService interface {
	// Reply interprets text for the given platform user and returns the
	// outbound reply body.
	Reply(ctx context.Context, lineUserID, text string) (string, error)
}

// LineGateway abstracts the platform SDK operations the handler needs.
//
// The production implementation wraps *linebot.Client; tests substitute a
// fake to drive signature failures and capture outbound replies.
type LineGateway interface {
	// ParseRequest verifies the webhook signature and decodes events.
	// It must return linebot.ErrInvalidSignature when verification fails.
	ParseRequest(req *http.Request) ([]*linebot.Event, error)
	// ReplyText sends a single text message using the event's reply token.
	ReplyText(ctx context.Context, replyToken, text string) error
}

// SDKGateway is the production LineGateway backed by the official SDK client.
type SDKGateway struct {
	Client *linebot.Client
}

// ParseRequest verifies the X-Line-Signature header and decodes the payload.
func (g *SDKGateway) ParseRequest(req *http.Request) ([]*linebot.Event, error) {
	return g.Client.ParseRequest(req)
}

// ReplyText sends text via the reply API, bound to ctx.
func (g *SDKGateway) ReplyText(ctx context.Context, replyToken, text string) error {
	_, err := g.Client.ReplyMessage(replyToken, linebot.NewTextMessage(text)).WithContext(ctx).Do()
	return err
}

// RecordDeliveryFunc persists a processed retry key so that platform retries
// of the same delivery are acknowledged without reprocessing. Duplicate keys
// must not be treated as errors by implementations.
type RecordDeliveryFunc func(ctx context.Context, retryKey string, status int) error

//
// Handler wiring
//

// WebhookHandler handles the signed webhook endpoint. It depends on abstract
// interfaces to keep transport concerns separate from business logic.
type WebhookHandler struct {
	gateway LineGateway
	svc     ListService
	record  RecordDeliveryFunc
}

// NewWebhookHandler constructs a WebhookHandler. record may be nil when
// delivery bookkeeping is disabled (e.g., in isolated tests).
func NewWebhookHandler(gw LineGateway, svc ListService, record RecordDeliveryFunc) *WebhookHandler {
	return &WebhookHandler{gateway: gw, svc: svc, record: record}
}

// Callback handles POST /callback.
//
// Flow:
//  1. Replayed deliveries (detected by dedup middleware) get 200 "OK"
//     immediately; the original processing already ran.
//  2. The signature is verified and events decoded; a bad signature is a
//     400 with code signature_invalid.
//  3. Each text message event is dispatched to the list service; the reply
//     is delivered best-effort. A failed reply delivery is logged but does
//     not fail the webhook, since the platform would otherwise retry the
//     whole batch.
//  4. The retry key, when present, is recorded so the next replay of this
//     delivery short-circuits at step 1.
//
// The endpoint always acknowledges successfully parsed requests with 200 so
// the platform does not retry deliveries we have already acted on.
func (h *WebhookHandler) Callback(c *gin.Context) {
	if middleware.IsReplay(c) {
		c.String(http.StatusOK, "OK")
		return
	}

	events, err := h.gateway.ParseRequest(c.Request)
	if err != nil {
		if errors.Is(err, linebot.ErrInvalidSignature) {
			fail(c, http.StatusBadRequest, ErrCodeSignatureInvalid, "webhook signature verification failed")
			return
		}
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "malformed webhook payload")
		return
	}

	ctx := c.Request.Context()
	lg := middleware.LoggerFrom(c)

	for _, event := range events {
		if event.Type != linebot.EventTypeMessage {
			continue
		}
		msg, ok := event.Message.(*linebot.TextMessage)
		if !ok {
			continue
		}
		if event.Source == nil || event.Source.UserID == "" {
			lg.Warn().Msg("text event without user source; skipping")
			continue
		}

		reply, err := h.svc.Reply(ctx, event.Source.UserID, msg.Text)
		if err != nil {
			lg.Error().Err(err).
				Str("line_user_id", event.Source.UserID).
				Msg("reply computation failed")
			continue
		}
		if err := h.gateway.ReplyText(ctx, event.ReplyToken, reply); err != nil {
			lg.Error().Err(err).Msg("reply delivery failed")
		}
	}

	if h.record != nil {
		if key, ok := middleware.GetRetryKey(c); ok {
			if err := h.record(ctx, key, http.StatusOK); err != nil {
				lg.Warn().Err(err).Msg("delivery record failed")
			}
		}
	}

	c.String(http.StatusOK, "OK")
}

// Health handles GET /health and reports process liveness.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

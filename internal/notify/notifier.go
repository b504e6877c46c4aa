// Package notify delivers one-way audit messages to an operations channel.
//
// Notifications are strictly best-effort: delivery failures are logged and
// swallowed, and no caller ever blocks on or branches over the outcome. The
// reply path to the user must be unaffected by the channel being down or
// unconfigured.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// Notifier sends a fire-and-forget text notification.
//
// Implementations must never panic and must not surface delivery errors to
// the caller; Notify has no error return on purpose.
type Notifier interface {
	Notify(ctx context.Context, text string)
}

// Nop is a Notifier that discards every message. It is used when no
// operations channel is configured.
type Nop struct{}

// Notify implements Notifier by doing nothing.
func (Nop) Notify(context.Context, string) {}

// Slack posts plain-text messages to a Slack incoming webhook.
//
// An incoming webhook takes a single JSON document ({"text": "..."}) per
// message; there is no result to consume beyond the status code.
type Slack struct {
	webhookURL string
	client     *http.Client
}

// NewSlack constructs a Slack notifier for the given incoming-webhook URL.
// A nil client defaults to one with a short timeout so a slow channel
// cannot stall webhook handling.
func NewSlack(webhookURL string, client *http.Client) *Slack {
	if client == nil {
		client = &http.Client{Timeout: 3 * time.Second}
	}
	return &Slack{webhookURL: webhookURL, client: client}
}

// New returns a Slack notifier for the URL, or Nop when the URL is empty.
func New(webhookURL string) Notifier {
	if webhookURL == "" {
		return Nop{}
	}
	return NewSlack(webhookURL, nil)
}

// payload is the incoming-webhook message body.
type payload struct {
	Text string `json:"text"`
}

// Notify posts text to the webhook. Failures (marshalling, transport,
// non-2xx status) are logged at warn level and otherwise ignored.
func (s *Slack) Notify(ctx context.Context, text string) {
	body, err := json.Marshal(payload{Text: text})
	if err != nil {
		log.Warn().Err(err).Msg("slack notify: marshal")
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		log.Warn().Err(err).Msg("slack notify: build request")
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		log.Warn().Err(err).Msg("slack notify: post")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Warn().Int("status", resp.StatusCode).Msg("slack notify: non-2xx response")
	}
}

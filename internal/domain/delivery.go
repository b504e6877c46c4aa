// Package domain defines the persistence models for the bot.
package domain

import "time"

// WebhookDelivery records a processed webhook delivery, keyed by the
// platform's retry key. LINE redelivers webhooks at least once with a stable
// X-Line-Retry-Key, so recording the key lets replays be acknowledged
// without re-executing commands or firing duplicate notifications.
//
// Rows expire after a TTL; expired rows are treated as absent so the table
// stays small without a background sweeper.
type WebhookDelivery struct {
	ID        string    `gorm:"type:TEXT NOT NULL;primaryKey"`
	RetryKey  string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_deliveries_retry_key"`
	Status    int       `gorm:"type:INTEGER NOT NULL"`
	CreatedAt time.Time `gorm:"type:DATETIME NOT NULL;autoCreateTime"`
	ExpiresAt time.Time `gorm:"type:DATETIME NOT NULL;index"`
}

// TableName implements the GORM tabler interface.
func (WebhookDelivery) TableName() string { return "webhook_deliveries" }

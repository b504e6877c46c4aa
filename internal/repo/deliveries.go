// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository helpers for the
// WebhookDelivery model used to deduplicate redelivered webhooks.
package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mshida/kaimono-bot/internal/domain"
)

// ErrDuplicate indicates that a delivery record already exists for the
// given retry key.
var ErrDuplicate = errors.New("duplicate")

// GetWebhookDelivery returns a non-expired delivery record for the retry key,
// or ErrNotFound.
func GetWebhookDelivery(ctx context.Context, db *gorm.DB, retryKey string, now time.Time) (*domain.WebhookDelivery, error) {
	if strings.TrimSpace(retryKey) == "" {
		return nil, ErrNotFound
	}
	var rec domain.WebhookDelivery
	err := db.WithContext(ctx).
		Where("retry_key = ? AND expires_at > ?", retryKey, now).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// CreateWebhookDelivery records a processed delivery and returns ErrDuplicate
// on a unique violation (the same retry key was recorded concurrently).
func CreateWebhookDelivery(ctx context.Context, db *gorm.DB, retryKey string, status int, ttl time.Duration) (*domain.WebhookDelivery, error) {
	now := time.Now().UTC()
	rec := &domain.WebhookDelivery{
		ID:        uuid.NewString(),
		RetryKey:  retryKey,
		Status:    status,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	if err := db.WithContext(ctx).Create(rec).Error; err != nil {
		// glebarez/sqlite often returns plain-text errors for UNIQUE violations.
		low := strings.ToLower(err.Error())
		if errors.Is(err, gorm.ErrDuplicatedKey) ||
			strings.Contains(low, "unique constraint failed") ||
			strings.Contains(low, "constraint failed: unique") {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return rec, nil
}

// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides read access to the static
// recommendation records (ItemURL).
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/mshida/kaimono-bot/internal/domain"
)

// FirstItemURL returns the first recommendation record, oldest row first.
// When no recommendation has been seeded, it returns ErrNotFound; the caller
// is expected to degrade to an informational reply rather than fail.
func FirstItemURL(ctx context.Context, db *gorm.DB) (*domain.ItemURL, error) {
	var rec domain.ItemURL
	err := db.WithContext(ctx).
		Order("created_at asc, id asc").
		First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the User model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a user is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience). Call sites must
//     treat "not found" as a normal outcome, never a fault: a sender the bot
//     has not seen yet is an expected state for most commands.
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mshida/kaimono-bot/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for consistency across the service
// layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// FindUserByLineID fetches the user owning the given LINE user id.
// It returns ErrNotFound when no such user exists.
func FindUserByLineID(ctx context.Context, db *gorm.DB, lineUserID string) (*domain.User, error) {
	var u domain.User
	err := db.WithContext(ctx).
		Where("line_user_id = ?", lineUserID).
		First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser inserts a new User row for the given LINE user id. The user ID
// is a randomly generated UUID (string), and CreatedAt is set to UTC.
//
// The line_user_id column is unique; inserting a second row for the same
// sender returns the DB's constraint error.
func CreateUser(ctx context.Context, db *gorm.DB, lineUserID string) (*domain.User, error) {
	u := &domain.User{
		ID:         uuid.NewString(),
		LineUserID: lineUserID,
		CreatedAt:  time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(u).Error; err != nil {
		return nil, err
	}
	return u, nil
}

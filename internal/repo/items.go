// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Item model.
//
// Ordering contract: listings and the duplicate-name tie-break are
// oldest-first (created_at ascending, id ascending as a stable secondary
// key). Marking an item bought is monotonic; no function here ever sets
// bought back to false.
//
// Functions:
//
//   - CreateItem(ctx, db, userID, name) -> *domain.Item, error
//     Inserts a new unbought Item row with UUID primary key.
//
//   - ListItems(ctx, db, userID, bought) -> []domain.Item, error
//     Returns the user's items with the given bought status, oldest first.
//
//   - FirstUnboughtItemByName(ctx, db, userID, name) -> *domain.Item, error
//     Oldest unbought item with an exactly matching name, or ErrNotFound.
//
//   - MarkItemBought(ctx, db, id) -> error
//     Flips a single item to bought; ErrNotFound if no row was affected.
//
//   - MarkAllItemsBought(ctx, db, userID) -> (int64, error)
//     Single UPDATE flipping every unbought item for the user; returns the
//     number of rows changed. Calling it again is a no-op (0, nil).
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mshida/kaimono-bot/internal/domain"
)

// CreateItem inserts a new unbought Item owned by userID with the given
// name. Duplicate names are allowed; every add is a fresh row.
func CreateItem(ctx context.Context, db *gorm.DB, userID, name string) (*domain.Item, error) {
	it := &domain.Item{
		ID:        uuid.NewString(),
		Name:      name,
		UserID:    userID,
		Bought:    false,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(it).Error; err != nil {
		return nil, err
	}
	return it, nil
}

// ListItems returns all items belonging to userID whose bought flag matches
// the given status, ordered oldest first. It returns an empty slice if
// there are none.
func ListItems(ctx context.Context, db *gorm.DB, userID string, bought bool) ([]domain.Item, error) {
	var out []domain.Item
	err := db.WithContext(ctx).
		Where("user_id = ? AND bought = ?", userID, bought).
		Order("created_at asc, id asc").
		Find(&out).Error
	return out, err
}

// FirstUnboughtItemByName fetches the oldest unbought item owned by userID
// whose name matches exactly. If none exists, it returns ErrNotFound.
func FirstUnboughtItemByName(ctx context.Context, db *gorm.DB, userID, name string) (*domain.Item, error) {
	var it domain.Item
	err := db.WithContext(ctx).
		Where("user_id = ? AND bought = ? AND name = ?", userID, false, name).
		Order("created_at asc, id asc").
		First(&it).Error
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// MarkItemBought sets bought=true on the item with the given id. If no rows
// are affected (item missing), it returns ErrNotFound.
func MarkItemBought(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).
		Model(&domain.Item{}).
		Where("id = ?", id).
		Update("bought", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// MarkAllItemsBought flips every unbought item owned by userID to bought in
// one UPDATE statement and reports how many rows changed. A concurrent add
// either lands before the statement (and is included) or after it (and
// stays unbought); there is no partially updated state for readers to see.
func MarkAllItemsBought(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	res := db.WithContext(ctx).
		Model(&domain.Item{}).
		Where("user_id = ? AND bought = ?", userID, false).
		Update("bought", true)
	return res.RowsAffected, res.Error
}

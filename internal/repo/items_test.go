package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mshida/kaimono-bot/internal/domain"
)

func TestCreateItem_DefaultsToUnbought(t *testing.T) {
	db := newTestDB(t, &domain.Item{})

	it, err := CreateItem(context.Background(), db, "user-1", "牛乳")
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	if it.ID == "" || it.Name != "牛乳" || it.UserID != "user-1" || it.Bought {
		t.Fatalf("unexpected Item fields: %+v", it)
	}

	var got domain.Item
	if err := db.First(&got, "id = ?", it.ID).Error; err != nil {
		t.Fatalf("load created item: %v", err)
	}
	if got.Bought {
		t.Fatalf("persisted item should be unbought: %+v", got)
	}
}

func TestCreateItem_DuplicateNamesAllowed(t *testing.T) {
	db := newTestDB(t, &domain.Item{})

	for i := 0; i < 2; i++ {
		if _, err := CreateItem(context.Background(), db, "user-1", "牛乳"); err != nil {
			t.Fatalf("CreateItem #%d: %v", i+1, err)
		}
	}
	items, err := ListItems(context.Background(), db, "user-1", false)
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len(items) = %d, want 2 separate rows", len(items))
	}
}

func TestListItems_OldestFirstAndFiltered(t *testing.T) {
	db := newTestDB(t, &domain.Item{})

	t1 := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	seedItem(t, db, "i2", "user-1", "パン", false, t1.Add(time.Hour))
	seedItem(t, db, "i1", "user-1", "牛乳", false, t1)
	seedItem(t, db, "i3", "user-1", "卵", true, t1.Add(2*time.Hour))
	seedItem(t, db, "i4", "user-2", "米", false, t1)

	items, err := ListItems(context.Background(), db, "user-1", false)
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if len(items) != 2 || items[0].ID != "i1" || items[1].ID != "i2" {
		t.Fatalf("expected [i1 i2] oldest first, got %+v", items)
	}

	bought, err := ListItems(context.Background(), db, "user-1", true)
	if err != nil {
		t.Fatalf("ListItems bought: %v", err)
	}
	if len(bought) != 1 || bought[0].ID != "i3" {
		t.Fatalf("expected [i3], got %+v", bought)
	}
}

func TestListItems_EmptyListIsNotAnError(t *testing.T) {
	db := newTestDB(t, &domain.Item{})

	items, err := ListItems(context.Background(), db, "user-1", false)
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected empty slice, got %+v", items)
	}
}

func TestFirstUnboughtItemByName_OldestWinsOnDuplicates(t *testing.T) {
	db := newTestDB(t, &domain.Item{})

	t1 := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	seedItem(t, db, "newer", "user-1", "牛乳", false, t1.Add(time.Hour))
	seedItem(t, db, "older", "user-1", "牛乳", false, t1)
	seedItem(t, db, "boughtrow", "user-1", "牛乳", true, t1.Add(-time.Hour))

	it, err := FirstUnboughtItemByName(context.Background(), db, "user-1", "牛乳")
	if err != nil {
		t.Fatalf("FirstUnboughtItemByName: %v", err)
	}
	if it.ID != "older" {
		t.Fatalf("tie-break picked %q, want the oldest unbought row", it.ID)
	}
}

func TestFirstUnboughtItemByName_IDTieBreakOnEqualTimestamps(t *testing.T) {
	db := newTestDB(t, &domain.Item{})

	at := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	seedItem(t, db, "b", "user-1", "牛乳", false, at)
	seedItem(t, db, "a", "user-1", "牛乳", false, at)

	it, err := FirstUnboughtItemByName(context.Background(), db, "user-1", "牛乳")
	if err != nil {
		t.Fatalf("FirstUnboughtItemByName: %v", err)
	}
	if it.ID != "a" {
		t.Fatalf("equal timestamps should fall back to id order, got %q", it.ID)
	}
}

func TestFirstUnboughtItemByName_NotFound(t *testing.T) {
	db := newTestDB(t, &domain.Item{})

	seedItem(t, db, "i1", "user-1", "牛乳", true, time.Now().UTC())

	_, err := FirstUnboughtItemByName(context.Background(), db, "user-1", "牛乳")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for bought-only matches, got %v", err)
	}
}

func TestMarkItemBought_FlipsExactlyOneRow(t *testing.T) {
	db := newTestDB(t, &domain.Item{})

	at := time.Now().UTC()
	seedItem(t, db, "i1", "user-1", "牛乳", false, at)
	seedItem(t, db, "i2", "user-1", "牛乳", false, at.Add(time.Second))

	if err := MarkItemBought(context.Background(), db, "i1"); err != nil {
		t.Fatalf("MarkItemBought: %v", err)
	}

	// Fresh struct per lookup: reusing one would leave the previous primary
	// key set and GORM would AND it into the next WHERE clause.
	var first domain.Item
	if err := db.First(&first, "id = ?", "i1").Error; err != nil {
		t.Fatalf("load i1: %v", err)
	}
	if !first.Bought {
		t.Fatal("i1 should be bought")
	}
	var second domain.Item
	if err := db.First(&second, "id = ?", "i2").Error; err != nil {
		t.Fatalf("load i2: %v", err)
	}
	if second.Bought {
		t.Fatal("i2 must stay unbought")
	}
}

func TestMarkItemBought_MissingRow(t *testing.T) {
	db := newTestDB(t, &domain.Item{})

	err := MarkItemBought(context.Background(), db, "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMarkAllItemsBought_Idempotent(t *testing.T) {
	db := newTestDB(t, &domain.Item{})

	at := time.Now().UTC()
	seedItem(t, db, "i1", "user-1", "牛乳", false, at)
	seedItem(t, db, "i2", "user-1", "パン", false, at)
	seedItem(t, db, "i3", "user-1", "卵", true, at)
	seedItem(t, db, "other", "user-2", "米", false, at)

	n, err := MarkAllItemsBought(context.Background(), db, "user-1")
	if err != nil {
		t.Fatalf("MarkAllItemsBought: %v", err)
	}
	if n != 2 {
		t.Fatalf("rows affected = %d, want 2", n)
	}

	// Second run finds nothing to flip.
	n, err = MarkAllItemsBought(context.Background(), db, "user-1")
	if err != nil {
		t.Fatalf("second MarkAllItemsBought: %v", err)
	}
	if n != 0 {
		t.Fatalf("second run affected %d rows, want 0", n)
	}

	// Other users are untouched.
	var other domain.Item
	if err := db.First(&other, "id = ?", "other").Error; err != nil {
		t.Fatalf("load other: %v", err)
	}
	if other.Bought {
		t.Fatal("user-2's item must stay unbought")
	}
}

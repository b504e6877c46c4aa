// Package domain defines the persistence models for shopping-list users,
// items, and recommendation records. These types are mapped with GORM and
// form the core data layer of the bot.
package domain

import "time"

// User represents a LINE account known to the bot. Users are created lazily
// the first time an unknown sender adds an item and are never deleted.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - LineUserID: the messaging platform's stable per-user identifier;
//     unique, and the lookup key for every list operation.
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
type User struct {
	ID         string    `json:"id"           gorm:"type:char(36);primaryKey"`
	LineUserID string    `json:"line_user_id" gorm:"type:varchar(64);not null;uniqueIndex:ux_users_line_user_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// Item is a single shopping-list entry owned by a user. Items are only ever
// inserted and flipped to bought; they are never deleted, and Bought never
// reverts to false. Duplicate unbought names may coexist for one user.
//
// Fields:
//   - ID: UUID primary key (char(36)).
//   - Name: free-text label taken from the user's message (may be empty).
//   - UserID: foreign key to the owning user (indexed together with Bought).
//   - Bought: false while the item is on the list, true once purchased.
//   - CreatedAt / UpdatedAt: timestamps managed by GORM. CreatedAt doubles
//     as the oldest-first tie-break when several unbought items share a name.
type Item struct {
	ID        string    `json:"id"      gorm:"type:char(36);primaryKey"`
	Name      string    `json:"name"    gorm:"type:varchar(255);not null"`
	UserID    string    `json:"user_id" gorm:"type:char(36);not null;index:idx_user_items,priority:1"`
	Bought    bool      `json:"bought"  gorm:"not null;default:false;index:idx_user_items,priority:2"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// User is the list owner. Items follow their user on update/delete.
	User User `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Item.
func (Item) TableName() string { return "items" }

// ItemURL is a static recommendation record (name plus product URL) served
// by the recommendation command. Rows are seeded operationally, never
// mutated through chat.
type ItemURL struct {
	ID        string    `json:"id"   gorm:"type:char(36);primaryKey"`
	Name      string    `json:"name" gorm:"type:varchar(255);not null"`
	URL       string    `json:"url"  gorm:"type:varchar(512);not null"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for ItemURL.
func (ItemURL) TableName() string { return "item_urls" }

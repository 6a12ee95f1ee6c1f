// internal/domain/wishlist/entity.go
package wishlist

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WishlistItem records that a user wants to hear when a book becomes
// available. Items are hard-deleted; they are not removed when a
// notification goes out.
type WishlistItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    string    `gorm:"column:user_id;not null;size:100;uniqueIndex:idx_wishlist_user_book;index" json:"userId"`
	BookID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_wishlist_user_book;index" json:"bookId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName overrides the table name
func (WishlistItem) TableName() string {
	return "wishlist_items"
}

// BeforeCreate assigns the identifier
func (w *WishlistItem) BeforeCreate(tx *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}

// internal/domain/user/entity.go
package user

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents a library member. UserID is the business key other
// resources reference; ID is the storage key.
type User struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    string         `gorm:"column:user_id;not null;size:100;index" json:"userId"`
	UserName  string         `gorm:"not null;size:255;index" json:"userName"`
	Email     string         `gorm:"not null;size:255;index" json:"email"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the table name for User
func (User) TableName() string {
	return "users"
}

// BeforeCreate assigns the storage key
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// BeforeSave normalizes fields on every write
func (u *User) BeforeSave(tx *gorm.DB) error {
	u.UserID = strings.TrimSpace(u.UserID)
	u.UserName = strings.TrimSpace(u.UserName)
	// Email should be lowercase
	u.Email = NormalizeEmail(u.Email)
	return nil
}

// NormalizeEmail trims and lower-cases an address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// GetDisplayName returns the user name, or the email when no name is set
func (u *User) GetDisplayName() string {
	if u.UserName != "" {
		return u.UserName
	}
	return u.Email
}

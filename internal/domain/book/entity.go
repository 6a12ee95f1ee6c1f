// internal/domain/book/entity.go
package book

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AvailabilityStatus is the lending state of a book
type AvailabilityStatus string

const (
	StatusAvailable AvailabilityStatus = "Available"
	StatusBorrowed  AvailabilityStatus = "Borrowed"
)

// IsValid reports whether s is one of the known statuses
func (s AvailabilityStatus) IsValid() bool {
	return s == StatusAvailable || s == StatusBorrowed
}

// Book represents the book entity
type Book struct {
	ID                 uuid.UUID          `gorm:"type:uuid;primaryKey" json:"id"`
	Title              string             `gorm:"not null;size:255;index" json:"title"`
	Author             string             `gorm:"not null;size:255;index" json:"author"`
	ISBN               string             `gorm:"column:isbn;not null;size:32" json:"isbn"`
	PublishedYear      int                `gorm:"not null" json:"publishedYear"`
	AvailabilityStatus AvailabilityStatus `gorm:"not null;size:16;default:'Available'" json:"availabilityStatus"`
	CreatedAt          time.Time          `json:"createdAt"`
	UpdatedAt          time.Time          `json:"updatedAt"`
	DeletedAt          gorm.DeletedAt     `gorm:"index" json:"-"`
}

// TableName overrides the table name
func (Book) TableName() string {
	return "books"
}

// BeforeCreate assigns an ID and normalizes fields before insert
func (b *Book) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.AvailabilityStatus == "" {
		b.AvailabilityStatus = StatusAvailable
	}
	return nil
}

// BeforeSave trims the text fields
func (b *Book) BeforeSave(tx *gorm.DB) error {
	b.Title = strings.TrimSpace(b.Title)
	b.Author = strings.TrimSpace(b.Author)
	b.ISBN = strings.TrimSpace(b.ISBN)
	return nil
}

// IsAvailable reports whether the book can be borrowed right now
func (b *Book) IsAvailable() bool {
	return b.AvailabilityStatus == StatusAvailable
}

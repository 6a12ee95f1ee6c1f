// internal/pkg/email/types.go
package email

import (
	"context"
	"time"
)

// EmailType represents the type of email being sent
type EmailType string

const (
	EmailTypeWishlistAvailable EmailType = "wishlist_available"
	EmailTypeTest              EmailType = "test"
)

// Email represents an email message
type Email struct {
	To          []string               `json:"to"`
	Subject     string                 `json:"subject"`
	HTMLContent string                 `json:"html_content"`
	TextContent string                 `json:"text_content,omitempty"`
	Type        EmailType              `json:"type"`
	Data        map[string]interface{} `json:"data,omitempty"`
}

// SendResult describes an accepted message
type SendResult struct {
	MessageID string `json:"message_id"`
	Provider  string `json:"provider"`
}

// Notifier delivers a single email. Implementations must be safe for
// concurrent use.
type Notifier interface {
	Send(ctx context.Context, email *Email) (*SendResult, error)
}

// EmailTemplateData contains common data for all email templates
type EmailTemplateData struct {
	SiteName  string `json:"site_name"`
	UserName  string `json:"user_name"`
	UserEmail string `json:"user_email"`
	Year      int    `json:"year"`
}

// WishlistAvailableData contains data for the wishlist availability email
type WishlistAvailableData struct {
	EmailTemplateData
	BookTitle  string `json:"book_title"`
	BookAuthor string `json:"book_author"`
}

// GetBaseTemplateData returns common template data
func GetBaseTemplateData(siteName, userName, userEmail string) EmailTemplateData {
	return EmailTemplateData{
		SiteName:  siteName,
		UserName:  userName,
		UserEmail: userEmail,
		Year:      time.Now().Year(),
	}
}

// internal/pkg/email/templates.go
package email

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
)

const wishlistAvailableSubject = "Your Wishlist Book is Now Available"

var wishlistAvailableHTML = htmltemplate.Must(htmltemplate.New("wishlist_available_html").Parse(
	`<p>Hello {{.UserName}},</p>

<p>Your wishlist book is now available:</p>

<p><strong>Book:</strong> {{.BookTitle}}<br>
<strong>Author:</strong> {{.BookAuthor}}</p>

<p>You can now borrow this book from the library.</p>

<p>Thank you,<br>
{{.SiteName}}</p>`))

var wishlistAvailableText = texttemplate.Must(texttemplate.New("wishlist_available_text").Parse(
	`Hello {{.UserName}},

Your wishlist book is now available:

Book: {{.BookTitle}}
Author: {{.BookAuthor}}

You can now borrow this book from the library.

Thank you,
{{.SiteName}}`))

// ComposeWishlistAvailable renders the "wishlist book available" message
func ComposeWishlistAvailable(data WishlistAvailableData) (*Email, error) {
	var html bytes.Buffer
	if err := wishlistAvailableHTML.Execute(&html, data); err != nil {
		return nil, fmt.Errorf("failed to render wishlist html template: %w", err)
	}

	var text bytes.Buffer
	if err := wishlistAvailableText.Execute(&text, data); err != nil {
		return nil, fmt.Errorf("failed to render wishlist text template: %w", err)
	}

	return &Email{
		To:          []string{data.UserEmail},
		Subject:     wishlistAvailableSubject,
		HTMLContent: html.String(),
		TextContent: text.String(),
		Type:        EmailTypeWishlistAvailable,
		Data: map[string]interface{}{
			"user_name":   data.UserName,
			"book_title":  data.BookTitle,
			"book_author": data.BookAuthor,
		},
	}, nil
}

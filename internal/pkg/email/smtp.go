// internal/pkg/email/smtp.go
package email

import (
	"fmt"

	"github.com/google/uuid"
	"gopkg.in/gomail.v2"
)

// sendSMTPEmail sends email over SMTP. SMTPUseTLS selects implicit TLS
// (port 465); otherwise STARTTLS is used when the server offers it.
func (s *EmailService) sendSMTPEmail(email *Email) (string, error) {
	if s.config.SMTPHost == "" {
		return "", fmt.Errorf("SMTP configuration incomplete: missing host")
	}

	messageID := fmt.Sprintf("<%s@%s>", uuid.New().String(), s.config.SMTPHost)

	m := s.buildSMTPMessage(email, messageID)

	d := gomail.NewDialer(s.config.SMTPHost, s.config.SMTPPort, s.config.SMTPUser, s.config.SMTPPass)
	d.SSL = s.config.SMTPUseTLS

	if err := d.DialAndSend(m); err != nil {
		return "", fmt.Errorf("failed to send SMTP email: %w", err)
	}

	return messageID, nil
}

func (s *EmailService) buildSMTPMessage(email *Email, messageID string) *gomail.Message {
	from := s.config.FromEmail
	if from == "" {
		from = s.config.SMTPUser
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", from, s.config.FromName)
	m.SetHeader("To", email.To...)
	m.SetHeader("Subject", email.Subject)
	m.SetHeader("Message-ID", messageID)
	if s.config.ReplyTo != "" {
		m.SetHeader("Reply-To", s.config.ReplyTo)
	}

	if email.TextContent != "" {
		m.SetBody("text/plain", email.TextContent)
		m.AddAlternative("text/html", email.HTMLContent)
	} else {
		m.SetBody("text/html", email.HTMLContent)
	}

	return m
}

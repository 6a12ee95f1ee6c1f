// internal/pkg/email/service.go
package email

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/your-org/library-backend/internal/config"
)

// Provider names accepted in EMAIL_PROVIDER
const (
	ProviderLog        = "log"
	ProviderSMTP       = "smtp"
	ProviderSendGrid   = "sendgrid"
	ProviderResend     = "resend"
	ProviderMailerSend = "mailersend"
)

// Endpoints holds the HTTP API URLs of the hosted providers
type Endpoints struct {
	Resend     string
	SendGrid   string
	MailerSend string
}

// DefaultEndpoints are the public provider APIs
var DefaultEndpoints = Endpoints{
	Resend:     "https://api.resend.com/emails",
	SendGrid:   "https://api.sendgrid.com/v3/mail/send",
	MailerSend: "https://api.mailersend.com/v1/email",
}

// Option customizes an EmailService
type Option func(*EmailService)

// WithHTTPClient replaces the client used for API providers
func WithHTTPClient(client *http.Client) Option {
	return func(s *EmailService) {
		s.client = client
	}
}

// WithEndpoints replaces the provider API URLs
func WithEndpoints(endpoints Endpoints) Option {
	return func(s *EmailService) {
		s.endpoints = endpoints
	}
}

// EmailService handles all email operations
type EmailService struct {
	config    config.EmailConfig
	client    *http.Client
	endpoints Endpoints
	logger    logrus.FieldLogger
}

// NewEmailService creates a new email service
func NewEmailService(cfg config.EmailConfig, logger logrus.FieldLogger, opts ...Option) *EmailService {
	service := &EmailService{
		config: cfg,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		endpoints: DefaultEndpoints,
		logger:    logger,
	}

	for _, opt := range opts {
		opt(service)
	}

	return service
}

// Provider returns the configured provider name
func (s *EmailService) Provider() string {
	return s.config.Provider
}

// Send sends an email using the configured provider
func (s *EmailService) Send(ctx context.Context, email *Email) (*SendResult, error) {
	if len(email.To) == 0 {
		return nil, fmt.Errorf("email has no recipients")
	}

	var (
		messageID string
		err       error
	)

	switch s.config.Provider {
	case ProviderLog:
		messageID, err = s.sendLogEmail(email)
	case ProviderSMTP:
		messageID, err = s.sendSMTPEmail(email)
	case ProviderResend:
		messageID, err = s.sendResendEmail(ctx, email)
	case ProviderSendGrid:
		messageID, err = s.sendSendGridEmail(ctx, email)
	case ProviderMailerSend:
		messageID, err = s.sendMailerSendEmail(ctx, email)
	default:
		return nil, fmt.Errorf("unsupported email provider: %s", s.config.Provider)
	}

	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"provider":   s.config.Provider,
		"to":         email.To,
		"type":       email.Type,
		"message_id": messageID,
	}).Info("Email sent")

	return &SendResult{MessageID: messageID, Provider: s.config.Provider}, nil
}

// sendLogEmail writes the message to the log instead of delivering it
func (s *EmailService) sendLogEmail(email *Email) (string, error) {
	body := email.TextContent
	if body == "" {
		body = email.HTMLContent
	}

	messageID := uuid.New().String()
	s.logger.WithFields(logrus.Fields{
		"to":         email.To,
		"subject":    email.Subject,
		"message_id": messageID,
	}).Info("Email notification (log provider)\n" + body)

	return messageID, nil
}

// fromAddress formats the sender for providers that take a single string
func (s *EmailService) fromAddress() string {
	if s.config.FromName != "" {
		return fmt.Sprintf("%s <%s>", s.config.FromName, s.config.FromEmail)
	}
	return s.config.FromEmail
}

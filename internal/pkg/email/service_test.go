package email

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/library-backend/internal/config"
)

func testConfig(provider string) config.EmailConfig {
	return config.EmailConfig{
		Provider:  provider,
		APIKey:    "test-key",
		FromEmail: "library@example.com",
		FromName:  "Library Management System",
	}
}

func wishlistEmail(t *testing.T) *Email {
	t.Helper()
	msg, err := ComposeWishlistAvailable(WishlistAvailableData{
		EmailTemplateData: GetBaseTemplateData("Library Management System", "Jane Doe", "jane@example.com"),
		BookTitle:         "The Go Programming Language",
		BookAuthor:        "Alan Donovan",
	})
	require.NoError(t, err)
	return msg
}

func TestComposeWishlistAvailable(t *testing.T) {
	msg := wishlistEmail(t)

	assert.Equal(t, []string{"jane@example.com"}, msg.To)
	assert.Equal(t, "Your Wishlist Book is Now Available", msg.Subject)
	assert.Equal(t, EmailTypeWishlistAvailable, msg.Type)
	assert.Contains(t, msg.TextContent, "Hello Jane Doe,")
	assert.Contains(t, msg.TextContent, "Book: The Go Programming Language")
	assert.Contains(t, msg.TextContent, "Author: Alan Donovan")
	assert.Contains(t, msg.HTMLContent, "<strong>Book:</strong> The Go Programming Language")
	assert.Contains(t, msg.HTMLContent, "<strong>Author:</strong> Alan Donovan")
}

func TestComposeWishlistAvailable_EscapesHTML(t *testing.T) {
	msg, err := ComposeWishlistAvailable(WishlistAvailableData{
		EmailTemplateData: GetBaseTemplateData("Library", "<script>", "x@example.com"),
		BookTitle:         "Tom & Jerry",
		BookAuthor:        "Anon",
	})
	require.NoError(t, err)

	assert.NotContains(t, msg.HTMLContent, "<script>")
	assert.Contains(t, msg.HTMLContent, "Tom &amp; Jerry")
	assert.Contains(t, msg.TextContent, "Tom & Jerry")
}

func TestSend_LogProvider(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	svc := NewEmailService(testConfig(ProviderLog), logger)

	result, err := svc.Send(context.Background(), wishlistEmail(t))
	require.NoError(t, err)

	assert.Equal(t, ProviderLog, result.Provider)
	assert.NotEmpty(t, result.MessageID)

	entries := hook.AllEntries()
	require.NotEmpty(t, entries)
	assert.Contains(t, entries[0].Message, "Author: Alan Donovan")
	assert.Equal(t, result.MessageID, entries[0].Data["message_id"])
}

func TestSend_Errors(t *testing.T) {
	logger, _ := logtest.NewNullLogger()

	tests := []struct {
		name    string
		cfg     config.EmailConfig
		email   *Email
		wantErr string
	}{
		{
			name:    "unsupported provider",
			cfg:     testConfig("pigeon"),
			email:   &Email{To: []string{"a@example.com"}},
			wantErr: "unsupported email provider: pigeon",
		},
		{
			name:    "no recipients",
			cfg:     testConfig(ProviderLog),
			email:   &Email{},
			wantErr: "email has no recipients",
		},
		{
			name:    "smtp without host",
			cfg:     testConfig(ProviderSMTP),
			email:   &Email{To: []string{"a@example.com"}},
			wantErr: "missing host",
		},
		{
			name: "api provider without key",
			cfg: config.EmailConfig{
				Provider:  ProviderResend,
				FromEmail: "library@example.com",
			},
			email:   &Email{To: []string{"a@example.com"}},
			wantErr: "Resend API key not configured",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewEmailService(tt.cfg, logger)
			result, err := svc.Send(context.Background(), tt.email)
			assert.Nil(t, result)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSend_Resend(t *testing.T) {
	var got ResendEmailRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"re_123"}`))
	}))
	defer server.Close()

	svc := NewEmailService(testConfig(ProviderResend), logrus.New(), WithEndpoints(Endpoints{Resend: server.URL}))

	result, err := svc.Send(context.Background(), wishlistEmail(t))
	require.NoError(t, err)

	assert.Equal(t, "re_123", result.MessageID)
	assert.Equal(t, "Library Management System <library@example.com>", got.From)
	assert.Equal(t, []string{"jane@example.com"}, got.To)
	assert.Contains(t, got.Text, "Alan Donovan")
}

func TestSend_SendGrid(t *testing.T) {
	var got SendGridEmailRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("X-Message-Id", "sg-42")
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	svc := NewEmailService(testConfig(ProviderSendGrid), logrus.New(), WithEndpoints(Endpoints{SendGrid: server.URL}))

	result, err := svc.Send(context.Background(), wishlistEmail(t))
	require.NoError(t, err)

	assert.Equal(t, "sg-42", result.MessageID)
	require.Len(t, got.Content, 2)
	assert.Equal(t, "text/plain", got.Content[0].Type)
	assert.Equal(t, "text/html", got.Content[1].Type)
	assert.Equal(t, "jane@example.com", got.Personalizations[0].To[0].Email)
}

func TestSend_MailerSendRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	svc := NewEmailService(testConfig(ProviderMailerSend), logrus.New(), WithEndpoints(Endpoints{MailerSend: server.URL}))

	result, err := svc.Send(context.Background(), wishlistEmail(t))
	assert.Nil(t, result)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MailerSend API returned status 422")
}

func TestBuildSMTPMessage(t *testing.T) {
	cfg := testConfig(ProviderSMTP)
	cfg.ReplyTo = "help@example.com"
	svc := NewEmailService(cfg, logrus.New())

	m := svc.buildSMTPMessage(wishlistEmail(t), "<id@example.com>")

	assert.Equal(t, []string{"jane@example.com"}, m.GetHeader("To"))
	assert.Equal(t, []string{"Your Wishlist Book is Now Available"}, m.GetHeader("Subject"))
	assert.Equal(t, []string{"<id@example.com>"}, m.GetHeader("Message-ID"))
	assert.Equal(t, []string{"help@example.com"}, m.GetHeader("Reply-To"))
}

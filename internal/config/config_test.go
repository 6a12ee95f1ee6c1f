package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("EMAIL_PROVIDER", "")
	t.Setenv("SMTP_HOST", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "local", cfg.Notification.Dispatch)
	assert.Equal(t, 4, cfg.Notification.FanOut)
	assert.Equal(t, "log", cfg.External.Email.Provider)
	assert.Equal(t, 7*24*time.Hour, cfg.Redis.SummaryTTL)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("APP_PORT", "8080")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_SQLITE_PATH", "/tmp/library.db")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_PORT", "465")
	t.Setenv("SMTP_SECURE", "true")
	t.Setenv("NOTIFY_FANOUT", "8")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("SERVER_REQUEST_TIMEOUT", "5s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "smtp", cfg.External.Email.Provider)
	assert.Equal(t, 465, cfg.External.Email.SMTPPort)
	assert.True(t, cfg.External.Email.SMTPUseTLS)
	assert.Equal(t, 8, cfg.Notification.FanOut)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.Security.CORSAllowedOrigins)
	assert.Equal(t, 5*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, "/tmp/library.db?_busy_timeout=5000&_foreign_keys=on", cfg.GetDatabaseDSN())
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("NOTIFY_WORKERS", "many")
	t.Setenv("REDIS_SUMMARY_TTL", "forever")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Notification.Workers)
	assert.Equal(t, 7*24*time.Hour, cfg.Redis.SummaryTTL)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:       ServerConfig{Port: "3000"},
			Database:     DatabaseConfig{Driver: "postgres", Host: "localhost", Name: "library_db", User: "library"},
			Notification: NotificationConfig{Dispatch: "local", Workers: 1, FanOut: 1},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"unknown driver", func(c *Config) { c.Database.Driver = "mysql" }, "unsupported DB_DRIVER: mysql"},
		{"postgres without host", func(c *Config) { c.Database.Host = "" }, "DB_HOST is required"},
		{"sqlite without path", func(c *Config) { c.Database.Driver = "sqlite" }, "DB_SQLITE_PATH is required"},
		{"redis without host", func(c *Config) { c.Redis.Enabled = true }, "REDIS_HOST is required"},
		{"unknown dispatch", func(c *Config) { c.Notification.Dispatch = "kafka" }, "unsupported NOTIFY_DISPATCH: kafka"},
		{"amqp without url", func(c *Config) { c.Notification.Dispatch = "amqp" }, "RABBITMQ_URL is required when NOTIFY_DISPATCH=amqp"},
		{"zero fan-out", func(c *Config) { c.Notification.FanOut = 0 }, "NOTIFY_FANOUT must be at least 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}

func TestGetDatabaseDSN_Postgres(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{
		Driver: "postgres", Host: "db", Port: "5432", User: "u", Password: "p", Name: "n", SSLMode: "disable",
	}}

	assert.Equal(t, "host=db port=5432 user=u password=p dbname=n sslmode=disable", cfg.GetDatabaseDSN())
	assert.Equal(t, "localhost:6379", (&Config{Redis: RedisConfig{Host: "localhost", Port: "6379"}}).GetRedisAddr())
}

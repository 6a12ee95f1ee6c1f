// cmd/notify/main.go
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/library-backend/internal/config"
	"github.com/your-org/library-backend/internal/domain/book"
	"github.com/your-org/library-backend/internal/domain/notification"
	"github.com/your-org/library-backend/internal/domain/user"
	"github.com/your-org/library-backend/internal/domain/wishlist"
	"github.com/your-org/library-backend/internal/infrastructure/database"
	"github.com/your-org/library-backend/internal/pkg/email"
	"github.com/your-org/library-backend/internal/pkg/logger"
)

type options struct {
	bookID    string
	testEmail string
	timeout   time.Duration
}

func main() {
	var opts options
	flag.StringVar(&opts.bookID, "book", "", "run the wishlist notification pipeline once for this book id")
	flag.StringVar(&opts.testEmail, "test-email", "", "send a test message to this address through the configured provider")
	flag.DurationVar(&opts.timeout, "timeout", 2*time.Minute, "overall deadline")
	flag.Parse()

	if opts.bookID == "" && opts.testEmail == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	// Exit only after run's deferred cleanup has happened
	os.Exit(run(cfg, opts))
}

func run(cfg *config.Config, opts options) int {
	log := logger.NewWithOutput(cfg, os.Stderr)

	ctx, cancel := context.WithTimeout(context.Background(), opts.timeout)
	defer cancel()

	notifier := email.NewEmailService(cfg.External.Email, log)

	if opts.testEmail != "" {
		result, err := notifier.Send(ctx, &email.Email{
			To:          []string{opts.testEmail},
			Subject:     fmt.Sprintf("Test message from %s", cfg.App.Name),
			HTMLContent: "<p>Email delivery is configured correctly.</p>",
			TextContent: "Email delivery is configured correctly.",
			Type:        email.EmailTypeTest,
		})
		if err != nil {
			log.WithError(err).Error("Send failed")
			return 1
		}
		log.WithFields(logrus.Fields{
			"provider":   result.Provider,
			"message_id": result.MessageID,
		}).Info("Test email sent")
	}

	if opts.bookID == "" {
		return 0
	}

	bookID, err := book.ParseID(opts.bookID)
	if err != nil {
		log.WithError(err).Errorf("Invalid -book value %q", opts.bookID)
		return 2
	}

	db, err := database.NewConnection(cfg, log)
	if err != nil {
		log.WithError(err).Error("Failed to connect to database")
		return 1
	}
	defer db.Close()

	users := user.NewService(db.GetDB(), log)
	books := book.NewService(db.GetDB(), nil, log)
	wishlists := wishlist.NewService(db.GetDB(), books, users)

	pipeline := notification.NewPipeline(
		notification.NewStore(books, users, wishlists),
		notifier,
		notification.NewLogRecorder(log),
		log,
		notification.PipelineConfig{
			FanOut:   cfg.Notification.FanOut,
			SiteName: cfg.External.Email.FromName,
		},
	)

	summary := pipeline.Run(ctx, bookID)

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(summary); err != nil {
		log.WithError(err).Error("Failed to write summary")
		return 1
	}

	if summary.Err != "" || summary.Failed > 0 {
		return 1
	}
	return 0
}

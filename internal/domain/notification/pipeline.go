// internal/domain/notification/pipeline.go
package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/your-org/library-backend/internal/domain/book"
	"github.com/your-org/library-backend/internal/domain/user"
	"github.com/your-org/library-backend/internal/domain/wishlist"
	"github.com/your-org/library-backend/internal/pkg/email"
	"golang.org/x/sync/errgroup"
)

const (
	SkipBookNotFound = "book not found"
	SkipNotAvailable = "book not available"
)

// PipelineConfig tunes a Pipeline
type PipelineConfig struct {
	// FanOut bounds concurrent deliveries within one run
	FanOut int
	// SiteName signs the outgoing message
	SiteName string
}

// Pipeline notifies every user that wishlisted a book once it is available
type Pipeline struct {
	store    Store
	notifier email.Notifier
	recorder SummaryRecorder
	logger   logrus.FieldLogger
	fanOut   int
	siteName string
}

// NewPipeline creates a new notification pipeline
func NewPipeline(store Store, notifier email.Notifier, recorder SummaryRecorder, logger logrus.FieldLogger, cfg PipelineConfig) *Pipeline {
	if cfg.FanOut < 1 {
		cfg.FanOut = 1
	}
	if cfg.SiteName == "" {
		cfg.SiteName = "Library Management System"
	}
	if recorder == nil {
		recorder = NewLogRecorder(logger)
	}

	return &Pipeline{
		store:    store,
		notifier: notifier,
		recorder: recorder,
		logger:   logger,
		fanOut:   cfg.FanOut,
		siteName: cfg.SiteName,
	}
}

// Run executes one pipeline run for bookID. It never returns an error: the
// outcome is reported through the summary, the recorder and the log.
func (p *Pipeline) Run(ctx context.Context, bookID uuid.UUID) (summary Summary) {
	summary = Summary{
		RunID:     uuid.New(),
		BookID:    bookID,
		Outcomes:  []Outcome{},
		StartedAt: time.Now().UTC(),
	}
	log := p.logger.WithFields(logrus.Fields{
		"run_id":  summary.RunID,
		"book_id": bookID,
	})

	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", r).Error("Wishlist notification run panicked")
			summary.Err = fmt.Sprintf("panic: %v", r)
			summary = p.finish(summary)
		}
	}()

	b, err := p.store.FindActiveBook(ctx, bookID)
	if err != nil {
		if errors.Is(err, book.ErrBookNotFound) {
			log.Info("Book not found for notification processing")
			summary.Skipped = SkipBookNotFound
			return p.finish(summary)
		}
		log.WithError(err).Error("Failed to load book for notification processing")
		summary.Err = err.Error()
		return p.finish(summary)
	}
	summary.Title = b.Title
	log = log.WithField("title", b.Title)

	// State may have moved on since the trigger fired
	if !b.IsAvailable() {
		log.WithField("status", b.AvailabilityStatus).Info("Book is not available, skipping notifications")
		summary.Skipped = SkipNotAvailable
		return p.finish(summary)
	}

	entries, err := p.store.ListWishlistByBook(ctx, bookID)
	if err != nil {
		log.WithError(err).Error("Failed to load wishlist entries")
		summary.Err = err.Error()
		return p.finish(summary)
	}

	if len(entries) == 0 {
		log.Info("No wishlist entries found for book")
	}

	outcomes := p.deliverAll(ctx, b, entries, log)
	summary = Fold(summary, outcomes)
	summary = p.finish(summary)

	if err := p.recorder.Record(ctx, summary); err != nil {
		log.WithError(err).Warn("Failed to record notification summary")
	}

	return summary
}

func (p *Pipeline) finish(summary Summary) Summary {
	summary.FinishedAt = time.Now().UTC()
	return summary
}

// deliverAll processes entries with at most fanOut in flight. Each entry
// writes only its own slot.
func (p *Pipeline) deliverAll(ctx context.Context, b *book.Book, entries []wishlist.WishlistItem, log logrus.FieldLogger) []Outcome {
	outcomes := make([]Outcome, len(entries))

	var g errgroup.Group
	g.SetLimit(p.fanOut)

	for i := range entries {
		i := i
		g.Go(func() error {
			outcomes[i] = p.deliver(ctx, b, entries[i], log)
			return nil
		})
	}

	// deliver never returns an error
	_ = g.Wait()
	return outcomes
}

// deliver processes one entry. Errors and panics become a failed outcome.
func (p *Pipeline) deliver(ctx context.Context, b *book.Book, entry wishlist.WishlistItem, log logrus.FieldLogger) (outcome Outcome) {
	outcome = Outcome{UserID: entry.UserID, Status: OutcomeFailed}
	log = log.WithField("user_id", entry.UserID)

	defer func() {
		if r := recover(); r != nil {
			outcome.Status = OutcomeFailed
			outcome.MessageID = ""
			outcome.Error = fmt.Sprintf("panic: %v", r)
			log.WithField("panic", r).Error("Notification delivery panicked")
		}
	}()

	u, err := p.store.FindActiveUserByUserID(ctx, entry.UserID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			log.Warn("User not found, skipping notification")
		} else {
			log.WithError(err).Error("Failed to load user for notification")
		}
		outcome.Error = err.Error()
		return outcome
	}
	outcome.Email = u.Email

	msg, err := email.ComposeWishlistAvailable(email.WishlistAvailableData{
		EmailTemplateData: email.GetBaseTemplateData(p.siteName, u.GetDisplayName(), u.Email),
		BookTitle:         b.Title,
		BookAuthor:        b.Author,
	})
	if err != nil {
		log.WithError(err).Error("Failed to compose notification")
		outcome.Error = err.Error()
		return outcome
	}

	result, err := p.notifier.Send(ctx, msg)
	if err != nil {
		log.WithError(err).Error("Failed to send notification")
		outcome.Error = err.Error()
		return outcome
	}

	outcome.Status = OutcomeSent
	if result != nil {
		outcome.MessageID = result.MessageID
	}
	log.WithField("email", u.Email).Debug("Notification sent")
	return outcome
}

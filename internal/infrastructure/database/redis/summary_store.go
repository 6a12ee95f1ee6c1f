// internal/infrastructure/database/redis/summary_store.go
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/your-org/library-backend/internal/domain/notification"
)

const summaryKeyPrefix = "notification:summary:"

// SummaryStore keeps the latest notification summary per book
type SummaryStore struct {
	client *Client
	ttl    time.Duration
}

// NewSummaryStore creates a summary store. A zero ttl keeps keys forever.
func NewSummaryStore(client *Client, ttl time.Duration) *SummaryStore {
	return &SummaryStore{
		client: client,
		ttl:    ttl,
	}
}

// Record stores the summary as the book's latest
func (s *SummaryStore) Record(ctx context.Context, summary notification.Summary) error {
	if err := s.client.SetJSON(ctx, summaryKey(summary.BookID), summary, s.ttl); err != nil {
		return fmt.Errorf("failed to store notification summary: %w", err)
	}
	return nil
}

// Latest returns the book's latest summary
func (s *SummaryStore) Latest(ctx context.Context, bookID uuid.UUID) (*notification.Summary, error) {
	var summary notification.Summary
	if err := s.client.GetJSON(ctx, summaryKey(bookID), &summary); err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, notification.ErrSummaryNotFound
		}
		return nil, fmt.Errorf("failed to load notification summary: %w", err)
	}
	return &summary, nil
}

func summaryKey(bookID uuid.UUID) string {
	return summaryKeyPrefix + bookID.String()
}

// internal/domain/notification/summary.go
package notification

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ErrSummaryNotFound is returned when no summary was recorded for a book
var ErrSummaryNotFound = errors.New("notification summary not found")

// OutcomeStatus tags a per-entry result
type OutcomeStatus string

const (
	OutcomeSent   OutcomeStatus = "sent"
	OutcomeFailed OutcomeStatus = "failed"
)

// Outcome is the result of processing one wishlist entry
type Outcome struct {
	UserID    string        `json:"userId"`
	Email     string        `json:"email,omitempty"`
	Status    OutcomeStatus `json:"status"`
	MessageID string        `json:"messageId,omitempty"`
	Error     string        `json:"error,omitempty"`
}

// Summary aggregates one pipeline run
type Summary struct {
	RunID      uuid.UUID `json:"runId"`
	BookID     uuid.UUID `json:"bookId"`
	Title      string    `json:"title"`
	Attempted  int       `json:"attempted"`
	Succeeded  int       `json:"succeeded"`
	Failed     int       `json:"failed"`
	Outcomes   []Outcome `json:"outcomes"`
	Skipped    string    `json:"skipped,omitempty"`
	Err        string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
}

// Fold builds the counts from the outcomes. Attempted is the number of
// entries processed, so every outcome counts exactly once.
func Fold(s Summary, outcomes []Outcome) Summary {
	s.Outcomes = outcomes
	s.Attempted = len(outcomes)
	s.Succeeded = 0
	s.Failed = 0
	for _, o := range outcomes {
		if o.Status == OutcomeSent {
			s.Succeeded++
		} else {
			s.Failed++
		}
	}
	return s
}

// SummaryRecorder receives the summary of every completed run
type SummaryRecorder interface {
	Record(ctx context.Context, summary Summary) error
}

// SummaryReader returns the last recorded summary for a book
type SummaryReader interface {
	Latest(ctx context.Context, bookID uuid.UUID) (*Summary, error)
}

// LogRecorder writes summaries to the logger
type LogRecorder struct {
	logger logrus.FieldLogger
}

// NewLogRecorder creates a recorder that only logs
func NewLogRecorder(logger logrus.FieldLogger) *LogRecorder {
	return &LogRecorder{logger: logger}
}

// Record logs the summary
func (r *LogRecorder) Record(ctx context.Context, summary Summary) error {
	r.logger.WithFields(logrus.Fields{
		"run_id":      summary.RunID,
		"book_id":     summary.BookID,
		"title":       summary.Title,
		"attempted":   summary.Attempted,
		"succeeded":   summary.Succeeded,
		"failed":      summary.Failed,
		"duration_ms": summary.FinishedAt.Sub(summary.StartedAt).Milliseconds(),
	}).Info("Wishlist notification summary")
	return nil
}

// MultiRecorder fans a summary out to several recorders
type MultiRecorder []SummaryRecorder

// Record calls every recorder and returns the first error
func (m MultiRecorder) Record(ctx context.Context, summary Summary) error {
	var firstErr error
	for _, r := range m {
		if err := r.Record(ctx, summary); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// MemoryStore keeps the latest summary per book in process memory. It
// serves as the SummaryReader when redis is disabled.
type MemoryStore struct {
	mu     sync.RWMutex
	latest map[uuid.UUID]Summary
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{latest: make(map[uuid.UUID]Summary)}
}

// Record replaces the stored summary for the book
func (m *MemoryStore) Record(ctx context.Context, summary Summary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latest[summary.BookID] = summary
	return nil
}

// Latest returns the most recent summary for the book
func (m *MemoryStore) Latest(ctx context.Context, bookID uuid.UUID) (*Summary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	summary, ok := m.latest[bookID]
	if !ok {
		return nil, ErrSummaryNotFound
	}
	return &summary, nil
}

// internal/domain/notification/trigger.go
package notification

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/your-org/library-backend/internal/domain/book"
)

// ShouldNotify reports whether a status change starts a pipeline run.
// Only Borrowed -> Available qualifies.
func ShouldNotify(previous, next book.AvailabilityStatus) bool {
	return previous == book.StatusBorrowed && next == book.StatusAvailable
}

// Trigger watches book updates and submits pipeline runs
type Trigger struct {
	dispatcher Dispatcher
	logger     logrus.FieldLogger
}

// NewTrigger creates a trigger that submits runs to dispatcher
func NewTrigger(dispatcher Dispatcher, logger logrus.FieldLogger) *Trigger {
	return &Trigger{
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// BookStatusChanged implements book.StatusObserver. It never blocks on the
// run and never panics into the caller.
func (t *Trigger) BookStatusChanged(bookID uuid.UUID, previous, next book.AvailabilityStatus) {
	if !ShouldNotify(previous, next) {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			t.logger.WithFields(logrus.Fields{
				"book_id": bookID,
				"panic":   r,
			}).Error("Failed to submit wishlist notification run")
		}
	}()

	t.logger.WithField("book_id", bookID).Info("Book became available, scheduling wishlist notifications")
	t.dispatcher.Submit(bookID)
}

// internal/infrastructure/database/migration.go
package database

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/your-org/library-backend/internal/domain/book"
	"github.com/your-org/library-backend/internal/domain/user"
	"github.com/your-org/library-backend/internal/domain/wishlist"
	"gorm.io/gorm"
)

// Migration handles database migrations
type Migration struct {
	db     *gorm.DB
	logger logrus.FieldLogger
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB, logger logrus.FieldLogger) *Migration {
	return &Migration{
		db:     db,
		logger: logger,
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	m.logger.Info("Running database auto-migrations")

	models := []interface{}{
		&book.Book{},
		&user.User{},
		&wishlist.WishlistItem{},
	}

	for _, model := range models {
		m.logger.Debugf("Migrating model: %T", model)
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	m.logger.Info("Database auto-migrations completed")
	return nil
}

// CreateIndexes creates the indexes AutoMigrate cannot express. Business
// keys are unique among rows that are not soft-deleted, so a deleted
// record's ISBN, userId or email can be reused.
func (m *Migration) CreateIndexes() error {
	m.logger.Info("Creating additional database indexes")

	indexes := []string{
		// Partial unique indexes over active rows
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_books_isbn_active ON books(isbn) WHERE deleted_at IS NULL",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_users_user_id_active ON users(user_id) WHERE deleted_at IS NULL",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email_active ON users(email) WHERE deleted_at IS NULL",

		// Listing order
		"CREATE INDEX IF NOT EXISTS idx_books_created_at ON books(created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_users_created_at ON users(created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_wishlist_items_created_at ON wishlist_items(created_at DESC)",

		// Filters
		"CREATE INDEX IF NOT EXISTS idx_books_published_year ON books(published_year)",
		"CREATE INDEX IF NOT EXISTS idx_books_availability ON books(availability_status)",
	}

	var failed []error
	for _, indexSQL := range indexes {
		if err := m.db.Exec(indexSQL).Error; err != nil {
			m.logger.WithError(err).WithField("sql", indexSQL).Warn("Failed to create index")
			failed = append(failed, err)
		}
	}

	m.logger.WithFields(logrus.Fields{
		"created": len(indexes) - len(failed),
		"failed":  len(failed),
	}).Info("Database indexes created")

	if len(failed) > 0 {
		return fmt.Errorf("failed to create %d indexes: %w", len(failed), errors.Join(failed...))
	}
	return nil
}

// SeedInitialData inserts a small catalogue for local development
func (m *Migration) SeedInitialData() error {
	m.logger.Info("Seeding initial data")

	if err := m.seedBooks(); err != nil {
		return fmt.Errorf("failed to seed books: %w", err)
	}

	if err := m.seedUsers(); err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}

	m.logger.Info("Initial data seeded")
	return nil
}

func (m *Migration) seedBooks() error {
	books := []book.Book{
		{
			Title:              "The Go Programming Language",
			Author:             "Alan A. A. Donovan",
			ISBN:               "978-0134190440",
			PublishedYear:      2015,
			AvailabilityStatus: book.StatusAvailable,
		},
		{
			Title:              "Designing Data-Intensive Applications",
			Author:             "Martin Kleppmann",
			ISBN:               "978-1449373320",
			PublishedYear:      2017,
			AvailabilityStatus: book.StatusBorrowed,
		},
		{
			Title:              "The Pragmatic Programmer",
			Author:             "David Thomas",
			ISBN:               "978-0135957059",
			PublishedYear:      2019,
			AvailabilityStatus: book.StatusAvailable,
		},
	}

	for i := range books {
		var existing book.Book
		result := m.db.Where("isbn = ?", books[i].ISBN).First(&existing)
		if result.Error == nil {
			m.logger.WithField("isbn", books[i].ISBN).Debug("Book already exists")
			continue
		}
		if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return result.Error
		}
		if err := m.db.Create(&books[i]).Error; err != nil {
			return err
		}
		m.logger.WithField("title", books[i].Title).Info("Created book")
	}

	return nil
}

func (m *Migration) seedUsers() error {
	users := []user.User{
		{UserID: "reader1", UserName: "Ada Reader", Email: "reader1@library.local"},
		{UserID: "reader2", UserName: "Grace Reader", Email: "reader2@library.local"},
	}

	for i := range users {
		var existing user.User
		result := m.db.Where("user_id = ?", users[i].UserID).First(&existing)
		if result.Error == nil {
			m.logger.WithField("user_id", users[i].UserID).Debug("User already exists")
			continue
		}
		if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return result.Error
		}
		if err := m.db.Create(&users[i]).Error; err != nil {
			return err
		}
		m.logger.WithField("user_id", users[i].UserID).Info("Created user")
	}

	return nil
}

// GetTableInfo logs the row count of every table
func (m *Migration) GetTableInfo() error {
	tables := []struct {
		name  string
		model interface{}
	}{
		{"books", &book.Book{}},
		{"users", &user.User{}},
		{"wishlist_items", &wishlist.WishlistItem{}},
	}

	var total int64
	for _, table := range tables {
		var count int64
		if err := m.db.Model(table.model).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to count %s: %w", table.name, err)
		}
		total += count
		m.logger.WithFields(logrus.Fields{
			"table":   table.name,
			"records": count,
		}).Info("Database table")
	}

	m.logger.WithField("records", total).Info("Total records across all tables")
	return nil
}

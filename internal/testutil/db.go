// Package testutil provides fixtures shared by package tests.
package testutil

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/your-org/library-backend/internal/config"
	"github.com/your-org/library-backend/internal/infrastructure/database"
	"github.com/your-org/library-backend/internal/pkg/logger"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewDB returns a migrated, isolated in-memory SQLite database that is
// closed when the test ends.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	conn, err := database.Open(
		sqlite.Open(dsn),
		config.DatabaseConfig{MaxOpenConns: 1},
		logger.Discard(),
		gormlogger.Silent,
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	migration := database.NewMigration(conn.GetDB(), logger.Discard())
	require.NoError(t, migration.RunAutoMigrations())
	require.NoError(t, migration.CreateIndexes())

	return conn.GetDB()
}

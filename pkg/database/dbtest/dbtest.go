// Package dbtest wires gorm's postgres dialector to go-sqlmock for repository
// tests.
package dbtest

import (
	"testing"
	"time"

	"anoa.com/alumnihub/pkg/database"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
)

// New returns a store handle backed by sqlmock. Unmet expectations fail the
// test at cleanup.
func New(t testing.TB) (database.Handle, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	db, err := database.Open(postgres.New(postgres.Config{Conn: sqlDB}), database.Options{})
	require.NoError(t, err)

	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = sqlDB.Close()
	})

	return database.NewHandle(db, time.Second), mock
}

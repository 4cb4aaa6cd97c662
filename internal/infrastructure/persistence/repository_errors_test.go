package persistence

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/vitrina/backend/internal/domain/shared"
)

// newMockDB builds a GORM handle over a mocked SQL connection so driver
// errors can be injected.
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})
	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

func TestGormProductRepository_IntegrityCountsPropagatesError(t *testing.T) {
	db, mock, mockDB := newMockDB(t)
	defer mockDB.Close()

	driverErr := errors.New("connection reset")
	mock.ExpectQuery(`SELECT count\(\*\) FROM "products"`).WillReturnError(driverErr)

	repo := NewGormProductRepository(db)
	_, err := repo.IntegrityCounts(context.Background())
	assert.ErrorIs(t, err, driverErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormCategoryRepository_SlugExistsPropagatesError(t *testing.T) {
	db, mock, mockDB := newMockDB(t)
	defer mockDB.Close()

	driverErr := errors.New("connection reset")
	mock.ExpectQuery(`SELECT count\(\*\) FROM "categories"`).WillReturnError(driverErr)

	repo := NewGormCategoryRepository(db)
	_, err := repo.SlugExists(context.Background(), "laptops")
	assert.ErrorIs(t, err, driverErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormSyncLogRepository_FindRecentPropagatesCountError(t *testing.T) {
	db, mock, mockDB := newMockDB(t)
	defer mockDB.Close()

	driverErr := errors.New("connection reset")
	mock.ExpectQuery(`SELECT count\(\*\) FROM "sync_logs"`).WillReturnError(driverErr)

	repo := NewGormSyncLogRepository(db)
	_, err := repo.FindRecent(context.Background(), "", "", shared.DefaultFilter())
	assert.ErrorIs(t, err, driverErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

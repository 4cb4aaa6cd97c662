package persistence

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/vitrina/backend/internal/domain/catalog"
	domainsync "github.com/vitrina/backend/internal/domain/sync"
)

// setupCatalogTestDB creates an in-memory SQLite database with the full
// catalog schema for testing
func setupCatalogTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&catalog.Category{},
		&catalog.Manufacturer{},
		&catalog.Parameter{},
		&catalog.ParameterOption{},
		&catalog.Product{},
		&catalog.ProductParameter{},
		&catalog.ProductDocument{},
		&domainsync.SyncLog{},
	)
	require.NoError(t, err)

	return db
}

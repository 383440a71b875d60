// Package testhelpers wires an in-memory database for handler tests.
package testhelpers

import (
	"testing"

	"unified-saas-backend/database"
	"unified-saas-backend/internal/domain/apps"
	"unified-saas-backend/internal/domain/customers"
	"unified-saas-backend/internal/domain/products"
	"unified-saas-backend/internal/domain/subscriptions"
	"unified-saas-backend/internal/domain/templates"
	"unified-saas-backend/internal/domain/users"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB opens a fresh in-memory sqlite database, migrates every domain
// model and installs it as the process-wide database.DB.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&users.User{},
		&users.VerificationToken{},
		&templates.Template{},
		&apps.App{},
		&products.Product{},
		&customers.Customer{},
		&subscriptions.Subscription{},
	))

	database.DB = db
	return db
}

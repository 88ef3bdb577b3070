package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"

	"github.com/example/logistics-erp/internal/models"
)

func TestOpenSQLiteMigratesSchema(t *testing.T) {
	db, err := Open(Options{Driver: "sqlite", DSN: ":memory:", LogLevel: "silent"}, zap.NewNop())
	require.NoError(t, err)

	for _, model := range []interface{}{
		&models.User{}, &models.Order{}, &models.OrderItem{}, &models.Shipment{},
		&models.InventoryItem{}, &models.Vehicle{}, &models.Invoice{}, &models.PasswordReset{}, &models.Address{},
	} {
		assert.True(t, db.Migrator().HasTable(model))
	}
	assert.True(t, db.Migrator().HasTable("fleet"))
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(Options{Driver: "oracle"}, zap.NewNop())
	assert.Error(t, err)
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, parseLogLevel("silent"))
	assert.Equal(t, gormlogger.Info, parseLogLevel("INFO"))
	assert.Equal(t, gormlogger.Warn, parseLogLevel(""))
}

func TestEnsureDatabaseIgnoresNonPostgres(t *testing.T) {
	assert.NoError(t, ensureDatabase("file:test.db"))
}

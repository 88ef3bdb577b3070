package database

import (
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/example/logistics-erp/internal/models"
)

// Options selects the database backend.
type Options struct {
	Driver   string
	DSN      string
	LogLevel string
}

// Open connects to the configured database and runs migrations.
func Open(opts Options, logger *zap.Logger) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger:         gormlogger.Default.LogMode(parseLogLevel(opts.LogLevel)),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	var (
		conn *gorm.DB
		err  error
	)

	switch opts.Driver {
	case "sqlite":
		conn, err = gorm.Open(&sqlite.Dialector{DriverName: sqliteDriverName, DSN: opts.DSN}, gormConfig)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		if strings.Contains(opts.DSN, ":memory:") {
			sqlDB, err := conn.DB()
			if err != nil {
				return nil, err
			}
			// every pooled connection would otherwise see its own empty database
			sqlDB.SetMaxOpenConns(1)
		}
	case "postgres", "":
		if err := ensureDatabase(opts.DSN); err != nil {
			return nil, fmt.Errorf("ensure database: %w", err)
		}
		conn, err = gorm.Open(postgres.Open(opts.DSN), gormConfig)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported database driver %q", opts.Driver)
	}

	if err := Migrate(conn); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logger.Info("database ready", zap.String("driver", conn.Dialector.Name()))
	return conn, nil
}

// Migrate creates or updates every table the application owns.
func Migrate(conn *gorm.DB) error {
	migrations := []interface{}{
		&models.User{},
		&models.PasswordReset{},
		&models.Address{},
		&models.Order{},
		&models.OrderItem{},
		&models.Shipment{},
		&models.InventoryItem{},
		&models.Vehicle{},
		&models.Invoice{},
	}

	for _, migration := range migrations {
		if err := conn.AutoMigrate(migration); err != nil {
			return err
		}
	}

	return nil
}

func parseLogLevel(level string) gormlogger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}

func ensureDatabase(dsn string) error {
	if !strings.HasPrefix(dsn, "postgres://") && !strings.HasPrefix(dsn, "postgresql://") {
		return nil
	}

	parsed, err := url.Parse(dsn)
	if err != nil {
		return err
	}

	dbName := strings.TrimPrefix(parsed.Path, "/")
	if dbName == "" {
		return nil
	}

	parsed.Path = "/postgres"

	sqlDB, err := sql.Open("postgres", parsed.String())
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		return err
	}

	var exists bool
	if err := sqlDB.QueryRow("SELECT EXISTS (SELECT 1 FROM pg_database WHERE datname = $1)", dbName).Scan(&exists); err != nil {
		return err
	}

	if exists {
		return nil
	}

	_, err = sqlDB.Exec("CREATE DATABASE " + pq.QuoteIdentifier(dbName))
	return err
}

// Package db is the persistence boundary of the CRM: a gorm-backed
// repository storing companies and contacts in postgres or sqlite.
package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gartstein/crm/internal/crm/db/models"
	e "github.com/gartstein/crm/internal/crm/errors"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	sqliteURLPrefix = "sqlite:///"
)

type Repository struct {
	db *gorm.DB
}

// Config selects and addresses the database. URL, when set, wins over the
// individual postgres fields; it accepts postgres://, postgresql:// and
// sqlite:///path URLs.
type Config struct {
	Driver   string
	URL      string
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string

	MaxOpenConns int
	// ConnectTimeout bounds the retries while the database comes up.
	ConnectTimeout time.Duration
}

func NewRepository(cfg *Config) (*Repository, error) {
	dialector, err := cfg.dialector()
	if err != nil {
		return nil, err
	}

	bo := backoff.NewExponentialBackOff()
	if cfg.ConnectTimeout > 0 {
		bo.MaxElapsedTime = cfg.ConnectTimeout
	}

	var db *gorm.DB
	err = backoff.Retry(func() error {
		conn, err := gorm.Open(dialector, &gorm.Config{
			TranslateError: true,
			Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		})
		if err != nil {
			return err
		}
		sqlDB, err := conn.DB()
		if err != nil {
			return backoff.Permanent(err)
		}
		if err := sqlDB.Ping(); err != nil {
			_ = sqlDB.Close()
			return err
		}
		db = conn
		return nil
	}, bo)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}
	switch {
	case dialector.Name() == DriverSQLite:
		// sqlite serialises writers, and every :memory: connection is its own database.
		sqlDB.SetMaxOpenConns(1)
	case cfg.MaxOpenConns > 0:
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	if err := db.AutoMigrate(&models.Company{}, &models.Contact{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Repository{db: db}, nil
}

func (cfg *Config) dialector() (gorm.Dialector, error) {
	url := strings.TrimSpace(cfg.URL)
	switch {
	case strings.HasPrefix(url, sqliteURLPrefix):
		return sqlite.Open(strings.TrimPrefix(url, sqliteURLPrefix)), nil
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return postgres.Open(url), nil
	case url != "":
		return nil, fmt.Errorf("unsupported database url scheme: %q", url)
	}

	switch cfg.Driver {
	case DriverSQLite:
		return sqlite.Open(cfg.DBName), nil
	case DriverPostgres, "":
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)
		return postgres.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %q", cfg.Driver)
	}
}

// translate maps gorm errors onto the domain sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return e.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return e.ErrDuplicateEmail
	default:
		return err
	}
}

func (r *Repository) WithTransaction(ctx context.Context, fn func(repo *Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repository{db: tx})
	})
}

func (r *Repository) Exec(ctx context.Context, query string, params ...interface{}) error {
	result := r.db.WithContext(ctx).Exec(query, params...)
	if result.Error != nil {
		return result.Error
	}
	return nil
}

// Ping checks that the database is reachable.
func (r *Repository) Ping(ctx context.Context) error {
	db, err := r.db.DB()
	if err != nil {
		return err
	}
	return db.PingContext(ctx)
}

func (r *Repository) Close() error {
	db, err := r.db.DB()
	if err != nil {
		return err
	}
	return db.Close()
}

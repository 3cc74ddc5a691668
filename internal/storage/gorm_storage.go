package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/seblin/curpy/internal/migrate"
	"github.com/seblin/curpy/internal/rates"
)

// GormStorage keeps snapshots in a SQL table, one row per publication date.
// Load returns the newest row.
type GormStorage struct {
	db     *gorm.DB
	driver string
}

func NewGormStorage(driver, dsn string) (*GormStorage, error) {
	var gormDialector gorm.Dialector
	switch driver {
	case "postgres":
		gormDialector = postgres.Open(dsn)
	case "sqlite":
		gormDialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}

	db, err := gorm.Open(gormDialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	return &GormStorage{db: db, driver: driver}, nil
}

// Migrate brings the schema up to date with the embedded goose migrations.
func (s *GormStorage) Migrate(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return migrate.Up(ctx, sqlDB, s.driver)
}

func (s *GormStorage) Load(ctx context.Context) (*rates.Snapshot, error) {
	var row RatesSnapshot
	result := s.db.WithContext(ctx).Order("published_on desc").First(&row)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", rates.ErrCacheRead, result.Error)
	}
	snap, err := DecodeSnapshot(row.Payload)
	if err != nil {
		return nil, fmt.Errorf("row %s: %w", row.PublishedOn, err)
	}
	return &snap, nil
}

func (s *GormStorage) Save(ctx context.Context, snap rates.Snapshot) error {
	payload, err := EncodeSnapshot(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	row := RatesSnapshot{
		PublishedOn: snap.PublishedOn.Format(rates.DateLayout),
		Payload:     payload,
		FetchedAt:   time.Now().UTC(),
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "published_on"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "fetched_at"}),
	}).Create(&row).Error
}

func (s *GormStorage) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *GormStorage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

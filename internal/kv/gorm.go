package kv

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/britishfeed/feedstore/internal/domain"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// GormStore keeps keys in the kv_entries table of a SQL database.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens postgres (dsn) or sqlite (path) and migrates the kv table.
func NewGormStore(dbType, dsn, path string, debug bool) (*GormStore, error) {
	gcfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}
	if debug {
		gcfg.Logger = logger.Default.LogMode(logger.Info)
	}

	var dialector gorm.Dialector
	switch dbType {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		if dsn == "" {
			if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
				return nil, unavailable(err, "open", path)
			}
			dsn = path
		}
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database type %q", dbType)
	}

	db, err := gorm.Open(dialector, gcfg)
	if err != nil {
		return nil, unavailable(err, "open", dbType)
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(20)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
	}
	return NewGormStoreWithDB(db)
}

// NewGormStoreWithDB migrates domain.Tables on an existing handle.
func NewGormStoreWithDB(db *gorm.DB) (*GormStore, error) {
	if err := db.Migrator().AutoMigrate(domain.Tables...); err != nil {
		zap.L().Error("kv table migration failed", zap.String("namespace", "kv"), zap.Error(err))
		return nil, unavailable(err, "migrate", "kv_entries")
	}
	return &GormStore{db: db}, nil
}

func (s *GormStore) Get(ctx context.Context, key string) (string, bool, error) {
	var e domain.KVEntry
	err := s.db.WithContext(ctx).Where("key = ?", key).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, unavailable(err, "get", key)
	}
	return e.Value, true, nil
}

func (s *GormStore) Put(ctx context.Context, key, value string) error {
	e := domain.KVEntry{Key: key, Value: value, UpdatedAt: time.Now()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&e).Error
	if err != nil {
		return unavailable(err, "put", key)
	}
	return nil
}

func (s *GormStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	var rows []string
	err := s.db.WithContext(ctx).Model(&domain.KVEntry{}).
		Where("key LIKE ?", prefix+"%").
		Order("key ASC").
		Pluck("key", &rows).Error
	if err != nil {
		return nil, unavailable(err, "keys", prefix)
	}
	// LIKE treats '_' as a wildcard
	keys := rows[:0]
	for _, k := range rows {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

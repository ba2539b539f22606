// Package kv is the generic get/put primitive every store in feedstore persists through.
package kv

import (
	"context"
	"fmt"

	"github.com/britishfeed/feedstore/config"
	"github.com/britishfeed/feedstore/internal/domain"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Store is a string key-value primitive, atomic per key.
type Store interface {
	// Get returns the value under key; ok is false when nothing is stored.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	// Put overwrites the value under key.
	Put(ctx context.Context, key, value string) error
	Close() error
}

// Lister is implemented by backends that can enumerate keys.
type Lister interface {
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// Open builds the backend selected by cfg.Storage.Type.
func Open(cfg *config.AppConfig) (Store, error) {
	var (
		store Store
		err   error
	)
	switch cfg.Storage.Type {
	case "", "bolt":
		store, err = NewBoltStore(cfg.GetStoragePath())
	case "redis":
		store, err = NewRedisStore(cfg.Storage.Addr, cfg.Storage.Password, cfg.Storage.DB)
	case "postgres", "sqlite":
		store, err = NewGormStore(cfg.Storage.Type, cfg.Storage.DSN, cfg.GetStoragePath(), cfg.Storage.Debug)
	case "memory":
		store = NewMemoryStore()
	default:
		return nil, fmt.Errorf("unsupported storage type %q", cfg.Storage.Type)
	}
	if err != nil {
		return nil, err
	}
	zap.L().Info("key-value store opened",
		zap.String("namespace", "kv"),
		zap.String("type", cfg.Storage.Type))
	return store, nil
}

func unavailable(err error, op, key string) error {
	return errors.Wrapf(domain.ErrBackingStoreUnavailable, "%s %q: %v", op, key, err)
}

package fetch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
)

type DiskCacheConfig struct {
	Dir      string
	InMemory bool
	TTL      time.Duration
	Logger   *slog.Logger
}

// DiskCache persists response bodies across runs in a badger database.
type DiskCache struct {
	next   Getter
	db     *badger.DB
	ttl    time.Duration
	logger *slog.Logger
}

func OpenDiskCache(cfg DiskCacheConfig, next Getter) (*DiskCache, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Dir == "" {
			return nil, errors.New("cache dir is required for persistent cache")
		}
		if err := os.MkdirAll(cfg.Dir, 0o750); err != nil {
			return nil, fmt.Errorf("create cache dir %s: %w", cfg.Dir, err)
		}
		opts = badger.DefaultOptions(cfg.Dir)
	}
	opts = opts.WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &DiskCache{next: next, db: db, ttl: cfg.TTL, logger: logger}, nil
}

func (c *DiskCache) Get(ctx context.Context, url string) (string, error) {
	key := []byte("body:" + url)
	var cached []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		cached, err = item.ValueCopy(nil)
		return err
	})
	switch {
	case err == nil:
		c.logger.Debug("cache hit", "url", url)
		return string(cached), nil
	case !errors.Is(err, badger.ErrKeyNotFound):
		c.logger.Warn("cache read failed", "url", url, "error", err)
	}

	body, err := c.next.Get(ctx, url)
	if err != nil {
		return "", err
	}
	err = c.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry(key, []byte(body))
		if c.ttl > 0 {
			e = e.WithTTL(c.ttl)
		}
		return txn.SetEntry(e)
	})
	if err != nil {
		c.logger.Warn("cache write failed", "url", url, "error", err)
	}
	return body, nil
}

func (c *DiskCache) Close() error {
	return c.db.Close()
}

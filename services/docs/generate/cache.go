// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package generate

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
)

const (
	cacheKeyPrefix  = "docnsrt/gen/v1/"
	cacheDefaultTTL = 30 * 24 * time.Hour
)

var errCacheMiss = errors.New("cache miss")

// Cache stores backend replies keyed by model and prompt.
//
// Description:
//
//	Re-running over an unchanged function sends the same prompt, so the
//	stored reply is reused instead of calling the backend again. Entries
//	expire after the TTL. An empty directory opens an in-memory store that
//	lives for the run only.
//
// Thread Safety: Safe for concurrent use.
type Cache struct {
	db     *badger.DB
	ttl    time.Duration
	logger *slog.Logger
}

// OpenCache opens the cache in dir, creating the directory if needed.
func OpenCache(dir string, ttl time.Duration, logger *slog.Logger) (*Cache, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if ttl <= 0 {
		ttl = cacheDefaultTTL
	}

	var opts badger.Options
	if dir == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create cache directory %s: %w", dir, err)
		}
		opts = badger.DefaultOptions(dir)
	}
	opts = opts.WithNumVersionsToKeep(1).WithLogger(&badgerLogger{logger: logger})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open response cache: %w", err)
	}
	return &Cache{db: db, ttl: ttl, logger: logger}, nil
}

// CacheKey returns the hex SHA-256 of the model name and prompt.
func CacheKey(modelName, prompt string) string {
	h := sha256.New()
	fmt.Fprintf(h, "model=%s\n", modelName)
	h.Write([]byte(prompt))
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the stored reply. The bool is false on a miss.
func (c *Cache) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	var raw []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(cacheKeyPrefix + key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return errCacheMiss
		}
		if err != nil {
			return fmt.Errorf("get cache key: %w", err)
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, errCacheMiss) {
		c.logger.Debug("response cache miss", slog.String("key", shortHash(key)))
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("response cache load: %w", err)
	}
	c.logger.Debug("response cache hit", slog.String("key", shortHash(key)))
	return string(raw), true, nil
}

// Put stores a reply under key.
func (c *Cache) Put(ctx context.Context, key, reply string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := c.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry([]byte(cacheKeyPrefix+key), []byte(reply)).WithTTL(c.ttl))
	})
	if err != nil {
		return fmt.Errorf("response cache save: %w", err)
	}
	return nil
}

// Close closes the underlying store.
func (c *Cache) Close() error {
	return c.db.Close()
}

func shortHash(h string) string {
	if len(h) > 8 {
		return h[:8]
	}
	return h
}

// badgerLogger routes badger's internal logging to slog at one level
// lower than badger uses, so routine compaction notices stay quiet.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

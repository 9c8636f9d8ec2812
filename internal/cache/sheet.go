// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// sheet.go provides a Valkey-backed store for compiled stylesheets.
// Every API instance publishes to and reads from the same keys, so a rule
// applied through one instance is served by all of them. Entries expire
// after a TTL and are rebuilt from the database on the next read.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// sheetKeyPrefix is the Valkey key prefix for stylesheets.
	sheetKeyPrefix = "sheet:"

	// DefaultSheetTTL is how long a published stylesheet stays cached.
	DefaultSheetTTL = 24 * time.Hour
)

// SheetCache stores stylesheets in Valkey.
type SheetCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSheetCache creates a sheet cache backed by the given Valkey client.
func NewSheetCache(client *redis.Client, ttl time.Duration) *SheetCache {
	if ttl == 0 {
		ttl = DefaultSheetTTL
	}
	return &SheetCache{client: client, ttl: ttl}
}

// Replace stores css under key, replacing any previous content.
func (sc *SheetCache) Replace(ctx context.Context, key, css string) error {
	if err := sc.client.Set(ctx, sheetKeyPrefix+key, css, sc.ttl).Err(); err != nil {
		return fmt.Errorf("sheet cache set %s: %w", key, err)
	}
	slog.Debug("sheet cache stored", "key", key, "bytes", len(css))
	return nil
}

// Remove deletes the stylesheet under key. Removing a missing key is not
// an error.
func (sc *SheetCache) Remove(ctx context.Context, key string) error {
	if err := sc.client.Del(ctx, sheetKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("sheet cache delete %s: %w", key, err)
	}
	return nil
}

// Get returns the stylesheet under key and whether it exists.
func (sc *SheetCache) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := sc.client.Get(ctx, sheetKeyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("sheet cache get %s: %w", key, err)
	}
	return val, true, nil
}

// Clear removes every cached stylesheet by scanning for the prefix. Used at
// startup after migrations, since cached CSS may predate the current
// compiler.
func (sc *SheetCache) Clear(ctx context.Context) error {
	var cursor uint64
	var deleted int
	for {
		keys, nextCursor, err := sc.client.Scan(ctx, cursor, sheetKeyPrefix+"*", 100).Result()
		if err != nil {
			return fmt.Errorf("sheet cache scan: %w", err)
		}
		if len(keys) > 0 {
			if err := sc.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("sheet cache bulk delete: %w", err)
			}
			deleted += len(keys)
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Info("sheet cache cleared", "deleted", deleted)
	}
	return nil
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// page.go provides a Valkey-backed full-page HTML cache. Rendered records,
// archives and pages are stored so repeated requests skip the database
// and the template fill entirely.
package cache

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// pageKeyPrefix is the Valkey key prefix for cached pages.
	pageKeyPrefix = "page:"
	// DefaultPageTTL is how long a rendered page stays cached.
	DefaultPageTTL = 5 * time.Minute
)

// PageCache manages full-page HTML caching in Valkey.
type PageCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPageCache creates a new page cache backed by the given Valkey client.
func NewPageCache(client *redis.Client, ttl time.Duration) *PageCache {
	if ttl == 0 {
		ttl = DefaultPageTTL
	}
	return &PageCache{client: client, ttl: ttl}
}

// Get retrieves cached HTML for a key. Reports false on a miss or error.
func (pc *PageCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := pc.client.Get(ctx, pageKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("page cache get error", "key", key, "error", err)
		return nil, false
	}
	slog.Debug("page cache hit", "key", key)
	return val, true
}

// Set stores rendered HTML under key with the configured TTL.
func (pc *PageCache) Set(ctx context.Context, key string, html []byte) {
	if err := pc.client.Set(ctx, pageKeyPrefix+key, html, pc.ttl).Err(); err != nil {
		slog.Warn("page cache set error", "key", key, "error", err)
	}
}

// Invalidate removes a single cached entry.
func (pc *PageCache) Invalidate(ctx context.Context, key string) {
	if err := pc.client.Del(ctx, pageKeyPrefix+key).Err(); err != nil {
		slog.Warn("page cache invalidate error", "key", key, "error", err)
		return
	}
	slog.Debug("page cache invalidated", "key", key)
}

// InvalidateType removes every cached record and archive page of a
// content type.
func (pc *PageCache) InvalidateType(ctx context.Context, typ string) {
	pc.deleteMatching(ctx, pageKeyPrefix+"rec:"+typ+":*")
	pc.deleteMatching(ctx, pageKeyPrefix+"archive:"+typ+":*")
}

// InvalidateAll removes all cached pages. Used when type definitions,
// mappings or template pages change, since any page could be affected.
func (pc *PageCache) InvalidateAll(ctx context.Context) {
	if n := pc.deleteMatching(ctx, pageKeyPrefix+"*"); n > 0 {
		slog.Info("page cache fully cleared", "deleted", n)
	}
}

// deleteMatching scans for keys matching pattern and deletes them in
// batches. Returns the number of keys deleted.
func (pc *PageCache) deleteMatching(ctx context.Context, pattern string) int {
	var cursor uint64
	var deleted int
	for {
		keys, next, err := pc.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			slog.Warn("page cache scan error", "pattern", pattern, "error", err)
			return deleted
		}
		if len(keys) > 0 {
			if err := pc.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("page cache bulk delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = next
		if cursor == 0 {
			return deleted
		}
	}
}

// RecordKey returns the cache key of a rendered record.
func RecordKey(typ, slug string) string {
	return "rec:" + typ + ":" + slug
}

// ArchiveKey returns the cache key of one archive page of a type.
func ArchiveKey(typ string, page int) string {
	return "archive:" + typ + ":" + strconv.Itoa(page)
}

// PageKey returns the cache key of a rendered page record.
func PageKey(slug string) string {
	return "pg:" + slug
}

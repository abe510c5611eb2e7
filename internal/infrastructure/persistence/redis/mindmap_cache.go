// Package redis 提供脑图 TTL 缓存实现
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"arxiv-digest-api/internal/config"
	"arxiv-digest-api/internal/domain/entity"
	apperrors "arxiv-digest-api/pkg/errors"
	"arxiv-digest-api/pkg/logger"
	"arxiv-digest-api/pkg/metrics"
)

// KV 脑图缓存依赖的最小键值接口，由 *Client 实现
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	TTL(ctx context.Context, key string) (time.Duration, error)
	Del(ctx context.Context, keys ...string) error
}

// MindMapCache 脑图 TTL 缓存
// 条目的版本、命中计数与过期时间由本层独占管理，调用方只读
type MindMapCache struct {
	kv      KV
	version int
	ttl     time.Duration
}

// NewMindMapCache 创建脑图缓存
func NewMindMapCache(client *Client, cfg *config.MindMapConfig) *MindMapCache {
	return &MindMapCache{
		kv:      client,
		version: cfg.CacheVersion,
		ttl:     cfg.CacheTTL,
	}
}

func (c *MindMapCache) key(arxivID string) string {
	return fmt.Sprintf("mindmap:v%d:%s", c.version, arxivID)
}

// Get 读取缓存条目
// 命中时 hit_count+1 并以剩余 TTL 原地重写，不重置过期时间；
// 版本不匹配的条目视为未命中并删除
func (c *MindMapCache) Get(ctx context.Context, arxivID string) (*entity.MindMapCacheEntry, error) {
	ctx, span := cacheTracer.Start(ctx, "mindmap_cache.Get",
		trace.WithAttributes(attribute.String("arxiv_id", arxivID)))
	defer span.End()

	key := c.key(arxivID)
	raw, err := c.kv.Get(ctx, key)
	if err != nil {
		if IsNil(err) {
			span.SetAttributes(attribute.Bool("cache.hit", false))
			metrics.MindMapCacheOps.WithLabelValues("get", "miss").Inc()
			return nil, nil
		}
		span.RecordError(err)
		metrics.MindMapCacheOps.WithLabelValues("get", "error").Inc()
		return nil, apperrors.Wrap(err, apperrors.CodeCacheError, "failed to read mindmap cache")
	}

	var entry entity.MindMapCacheEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		// 损坏的条目当作未命中处理并删除
		logger.Warn(ctx, "corrupt mindmap cache entry, dropping", "arxiv_id", arxivID, "error", err.Error())
		_ = c.kv.Del(ctx, key)
		metrics.MindMapCacheOps.WithLabelValues("get", "corrupt").Inc()
		return nil, nil
	}

	if entry.CacheVersion != c.version {
		// 陈旧版本条目视为不存在，不做升级
		_ = c.kv.Del(ctx, key)
		span.SetAttributes(attribute.Bool("cache.stale_version", true))
		metrics.MindMapCacheOps.WithLabelValues("get", "stale").Inc()
		return nil, nil
	}

	entry.HitCount++

	// 以剩余 TTL 原地重写，保留原过期时间
	if remaining, ttlErr := c.kv.TTL(ctx, key); ttlErr == nil && remaining > 0 {
		if b, mErr := json.Marshal(&entry); mErr == nil {
			if setErr := c.kv.Set(ctx, key, string(b), remaining); setErr != nil {
				logger.Warn(ctx, "failed to persist mindmap hit count",
					"arxiv_id", arxivID, "error", setErr.Error())
			}
		}
	}

	span.SetAttributes(attribute.Bool("cache.hit", true))
	metrics.MindMapCacheOps.WithLabelValues("get", "hit").Inc()
	return &entry, nil
}

// Set 写入缓存条目，版本取当前配置值，hit_count 归零
func (c *MindMapCache) Set(ctx context.Context, arxivID string, m *entity.MindMap) error {
	ctx, span := cacheTracer.Start(ctx, "mindmap_cache.Set",
		trace.WithAttributes(attribute.String("arxiv_id", arxivID)))
	defer span.End()

	now := time.Now()
	entry := &entity.MindMapCacheEntry{
		MindMap:      m,
		CacheVersion: c.version,
		HitCount:     0,
		CachedAt:     now,
		ExpiresAt:    now.Add(c.ttl),
	}

	b, err := json.Marshal(entry)
	if err != nil {
		span.RecordError(err)
		return apperrors.Wrap(err, apperrors.CodeCacheError, "failed to marshal mindmap cache entry")
	}
	if err := c.kv.Set(ctx, c.key(arxivID), string(b), c.ttl); err != nil {
		span.RecordError(err)
		metrics.MindMapCacheOps.WithLabelValues("set", "error").Inc()
		return apperrors.Wrap(err, apperrors.CodeCacheError, "failed to write mindmap cache")
	}

	metrics.MindMapCacheOps.WithLabelValues("set", "ok").Inc()
	return nil
}

// Invalidate 删除缓存条目，返回是否存在
func (c *MindMapCache) Invalidate(ctx context.Context, arxivID string) (bool, error) {
	ctx, span := cacheTracer.Start(ctx, "mindmap_cache.Invalidate",
		trace.WithAttributes(attribute.String("arxiv_id", arxivID)))
	defer span.End()

	key := c.key(arxivID)
	_, err := c.kv.Get(ctx, key)
	if err != nil {
		if IsNil(err) {
			metrics.MindMapCacheOps.WithLabelValues("invalidate", "miss").Inc()
			return false, nil
		}
		span.RecordError(err)
		return false, apperrors.Wrap(err, apperrors.CodeCacheError, "failed to read mindmap cache")
	}

	if err := c.kv.Del(ctx, key); err != nil {
		span.RecordError(err)
		metrics.MindMapCacheOps.WithLabelValues("invalidate", "error").Inc()
		return false, apperrors.Wrap(err, apperrors.CodeCacheError, "failed to delete mindmap cache")
	}

	metrics.MindMapCacheOps.WithLabelValues("invalidate", "ok").Inc()
	return true, nil
}

// Status 只读查询缓存状态，不改变 hit_count
func (c *MindMapCache) Status(ctx context.Context, arxivID string) (*entity.MindMapCacheStatus, error) {
	ctx, span := cacheTracer.Start(ctx, "mindmap_cache.Status",
		trace.WithAttributes(attribute.String("arxiv_id", arxivID)))
	defer span.End()

	key := c.key(arxivID)
	raw, err := c.kv.Get(ctx, key)
	if err != nil {
		if IsNil(err) {
			return &entity.MindMapCacheStatus{Cached: false}, nil
		}
		span.RecordError(err)
		return nil, apperrors.Wrap(err, apperrors.CodeCacheError, "failed to read mindmap cache")
	}

	var entry entity.MindMapCacheEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return &entity.MindMapCacheStatus{Cached: false}, nil
	}
	if entry.CacheVersion != c.version {
		return &entity.MindMapCacheStatus{Cached: false}, nil
	}

	status := &entity.MindMapCacheStatus{
		Cached:       true,
		CacheVersion: entry.CacheVersion,
		HitCount:     entry.HitCount,
		CachedAt:     &entry.CachedAt,
		ExpiresAt:    &entry.ExpiresAt,
	}
	if remaining, ttlErr := c.kv.TTL(ctx, key); ttlErr == nil && remaining > 0 {
		status.TTLRemaining = int64(remaining.Seconds())
	}
	return status, nil
}

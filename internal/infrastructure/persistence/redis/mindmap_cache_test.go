package redis

import (
	"context"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arxiv-digest-api/internal/domain/entity"
)

// fakeKV 内存版 KV，带固定剩余 TTL 语义
type fakeKV struct {
	data map[string]string
	ttls map[string]time.Duration
}

func newFakeKV() *fakeKV {
	return &fakeKV{
		data: make(map[string]string),
		ttls: make(map[string]time.Duration),
	}
}

func (f *fakeKV) Get(_ context.Context, key string) (string, error) {
	v, ok := f.data[key]
	if !ok {
		return "", goredis.Nil
	}
	return v, nil
}

func (f *fakeKV) Set(_ context.Context, key string, value interface{}, expiration time.Duration) error {
	f.data[key] = value.(string)
	f.ttls[key] = expiration
	return nil
}

func (f *fakeKV) TTL(_ context.Context, key string) (time.Duration, error) {
	if _, ok := f.data[key]; !ok {
		return -2 * time.Second, nil
	}
	return f.ttls[key], nil
}

func (f *fakeKV) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(f.data, k)
		delete(f.ttls, k)
	}
	return nil
}

func testMindMap() *entity.MindMap {
	return &entity.MindMap{
		ArxivID: "2401.00001",
		Title:   "Attention Is Not All You Need",
		Root: &entity.MindMapNode{
			ID:         "n0",
			Label:      "Attention Is Not All You Need",
			Kind:       entity.NodeKindRoot,
			Importance: entity.ImportancePrimary,
			Children: []*entity.MindMapNode{
				{ID: "n1", Label: "Problem", Kind: entity.NodeKindProblem, Importance: entity.ImportanceSecondary},
			},
		},
		GeneratedAt: time.Now(),
	}
}

func newTestCache(kv KV) *MindMapCache {
	return &MindMapCache{kv: kv, version: 3, ttl: time.Hour}
}

func TestMindMapCacheRoundTrip(t *testing.T) {
	kv := newFakeKV()
	cache := newTestCache(kv)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "2401.00001", testMindMap()))

	entry, err := cache.Get(ctx, "2401.00001")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, "2401.00001", entry.MindMap.ArxivID)
	assert.Equal(t, 3, entry.CacheVersion)
	assert.Equal(t, 1, entry.HitCount)
	assert.Equal(t, 2, entry.MindMap.NodeCount())
}

func TestMindMapCacheMiss(t *testing.T) {
	cache := newTestCache(newFakeKV())

	entry, err := cache.Get(context.Background(), "2401.99999")

	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestMindMapCacheHitCountPreservesTTL(t *testing.T) {
	kv := newFakeKV()
	cache := newTestCache(kv)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "2401.00001", testMindMap()))
	key := cache.key("2401.00001")
	// 模拟已流逝一部分 TTL
	kv.ttls[key] = 10 * time.Minute

	for i := 1; i <= 3; i++ {
		entry, err := cache.Get(ctx, "2401.00001")
		require.NoError(t, err)
		require.NotNil(t, entry)
		assert.Equal(t, i, entry.HitCount)
	}

	// 命中重写不得重置过期时间
	assert.Equal(t, 10*time.Minute, kv.ttls[key])
}

func TestMindMapCacheStatusDoesNotMutate(t *testing.T) {
	kv := newFakeKV()
	cache := newTestCache(kv)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "2401.00001", testMindMap()))

	for i := 0; i < 5; i++ {
		status, err := cache.Status(ctx, "2401.00001")
		require.NoError(t, err)
		assert.True(t, status.Cached)
		assert.Equal(t, 0, status.HitCount)
	}

	entry, err := cache.Get(ctx, "2401.00001")
	require.NoError(t, err)
	assert.Equal(t, 1, entry.HitCount)
}

func TestMindMapCacheVersionAdvanceIsMiss(t *testing.T) {
	kv := newFakeKV()
	oldCache := &MindMapCache{kv: kv, version: 3, ttl: time.Hour}
	ctx := context.Background()

	require.NoError(t, oldCache.Set(ctx, "2401.00001", testMindMap()))

	// 版本升级后旧条目视为不存在
	newCache := &MindMapCache{kv: kv, version: 4, ttl: time.Hour}
	entry, err := newCache.Get(ctx, "2401.00001")
	require.NoError(t, err)
	assert.Nil(t, entry)

	status, err := newCache.Status(ctx, "2401.00001")
	require.NoError(t, err)
	assert.False(t, status.Cached)
}

func TestMindMapCacheStaleVersionDeletedOnRead(t *testing.T) {
	kv := newFakeKV()
	cache := newTestCache(kv)
	ctx := context.Background()

	// 同一键下写入版本不匹配的条目（配置漂移场景）
	stale := &MindMapCache{kv: kv, version: 2, ttl: time.Hour}
	require.NoError(t, stale.Set(ctx, "2401.00001", testMindMap()))
	kv.data[cache.key("2401.00001")] = kv.data[stale.key("2401.00001")]

	entry, err := cache.Get(ctx, "2401.00001")
	require.NoError(t, err)
	assert.Nil(t, entry)
	_, ok := kv.data[cache.key("2401.00001")]
	assert.False(t, ok)
}

func TestMindMapCacheInvalidate(t *testing.T) {
	kv := newFakeKV()
	cache := newTestCache(kv)
	ctx := context.Background()

	existed, err := cache.Invalidate(ctx, "2401.00001")
	require.NoError(t, err)
	assert.False(t, existed)

	require.NoError(t, cache.Set(ctx, "2401.00001", testMindMap()))

	existed, err = cache.Invalidate(ctx, "2401.00001")
	require.NoError(t, err)
	assert.True(t, existed)

	entry, err := cache.Get(ctx, "2401.00001")
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestMindMapCacheCorruptEntryDropped(t *testing.T) {
	kv := newFakeKV()
	cache := newTestCache(kv)
	ctx := context.Background()

	kv.data[cache.key("2401.00001")] = "{not json"

	entry, err := cache.Get(ctx, "2401.00001")
	require.NoError(t, err)
	assert.Nil(t, entry)
	_, ok := kv.data[cache.key("2401.00001")]
	assert.False(t, ok)
}

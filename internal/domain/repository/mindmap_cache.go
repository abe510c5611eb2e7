// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"arxiv-digest-api/internal/domain/entity"
)

// MindMapCache 脑图 TTL 缓存接口
// 缓存条目的生命周期（版本、命中计数、过期）由实现独占管理
type MindMapCache interface {
	// Get 读取缓存条目，命中时 hit_count+1 且保留剩余 TTL；未命中返回 nil
	Get(ctx context.Context, arxivID string) (*entity.MindMapCacheEntry, error)

	// Set 写入缓存条目，版本取当前配置值，hit_count 归零
	Set(ctx context.Context, arxivID string, m *entity.MindMap) error

	// Invalidate 删除缓存条目，返回是否存在
	Invalidate(ctx context.Context, arxivID string) (bool, error)

	// Status 只读查询缓存状态，不改变 hit_count
	Status(ctx context.Context, arxivID string) (*entity.MindMapCacheStatus, error)
}

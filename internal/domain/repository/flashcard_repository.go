// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"arxiv-digest-api/internal/domain/entity"
)

// FlashcardRepository 闪卡仓储接口
type FlashcardRepository interface {
	// GetFresh 获取分类下未过期的闪卡，按生成时间倒序，最多 limit 条
	GetFresh(ctx context.Context, category string, limit int) ([]*entity.Flashcard, error)

	// UpsertBatch 按 (category, arxiv_id) 批量插入或更新闪卡
	UpsertBatch(ctx context.Context, cards []*entity.Flashcard) error

	// DeleteExpired 删除已过期闪卡，最多 limit 条，返回删除数量
	DeleteExpired(ctx context.Context, limit int) (int64, error)
}

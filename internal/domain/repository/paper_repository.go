// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"arxiv-digest-api/internal/domain/entity"
)

// PaperRepository 论文仓储接口
type PaperRepository interface {
	// GetByArxivID 根据 arXiv ID 获取论文，不存在时返回 CodePaperNotFound
	GetByArxivID(ctx context.Context, arxivID string) (*entity.Paper, error)

	// RecentByCategory 获取指定分类下最新的已处理论文，按发布时间倒序
	RecentByCategory(ctx context.Context, category string, max int) ([]*entity.Paper, error)
}

// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"arxiv-digest-api/internal/domain/entity"
)

// ChunkRepository 论文分块仓储接口（向量库）
type ChunkRepository interface {
	// GetByPaper 获取论文的全部分块，按 chunk_index 升序
	GetByPaper(ctx context.Context, arxivID string) ([]*entity.PaperChunk, error)

	// SearchByVector 在指定论文范围内按向量检索 topK 个分块
	SearchByVector(ctx context.Context, arxivID string, vector []float32, topK int) ([]*entity.PaperChunk, error)
}

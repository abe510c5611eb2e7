// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"arxiv-digest-api/internal/domain/entity"
	apperrors "arxiv-digest-api/pkg/errors"
)

type PaperRepository struct {
	client *Client
}

func NewPaperRepository(client *Client) *PaperRepository {
	return &PaperRepository{client: client}
}

// GetByArxivID 根据 arXiv ID 获取论文
func (r *PaperRepository) GetByArxivID(ctx context.Context, arxivID string) (*entity.Paper, error) {
	ctx, span := tracer.Start(ctx, "postgres.PaperRepository.GetByArxivID")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var paper entity.Paper
	if err := db.First(&paper, "arxiv_id = ?", arxivID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPaperNotFound.WithDetail(arxivID)
		}
		span.RecordError(err)
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to get paper")
	}
	return &paper, nil
}

// RecentByCategory 获取分类下最新的已处理论文，按发布时间倒序
func (r *PaperRepository) RecentByCategory(ctx context.Context, category string, max int) ([]*entity.Paper, error) {
	ctx, span := tracer.Start(ctx, "postgres.PaperRepository.RecentByCategory")
	defer span.End()

	if max <= 0 {
		return []*entity.Paper{}, nil
	}

	db := getDB(ctx, r.client.db)
	var papers []*entity.Paper
	err := db.Where("pdf_processed = ? AND ? = ANY(categories)", true, category).
		Order("published_at DESC").
		Limit(max).
		Find(&papers).Error
	if err != nil {
		span.RecordError(err)
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError,
			fmt.Sprintf("failed to list recent papers for %s", category))
	}
	return papers, nil
}

// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"time"

	"gorm.io/gorm/clause"

	"arxiv-digest-api/internal/domain/entity"
	apperrors "arxiv-digest-api/pkg/errors"
)

type FlashcardRepository struct {
	client *Client
}

func NewFlashcardRepository(client *Client) *FlashcardRepository {
	return &FlashcardRepository{client: client}
}

// GetFresh 获取分类下未过期的闪卡，按生成时间倒序
func (r *FlashcardRepository) GetFresh(ctx context.Context, category string, limit int) ([]*entity.Flashcard, error) {
	ctx, span := tracer.Start(ctx, "postgres.FlashcardRepository.GetFresh")
	defer span.End()

	if limit <= 0 {
		return []*entity.Flashcard{}, nil
	}

	db := getDB(ctx, r.client.db)
	var cards []*entity.Flashcard
	err := db.Where("category = ? AND expires_at > ?", category, time.Now()).
		Order("generated_at DESC").
		Limit(limit).
		Find(&cards).Error
	if err != nil {
		span.RecordError(err)
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to list fresh flashcards")
	}
	return cards, nil
}

// UpsertBatch 按 (category, arxiv_id) 批量插入或更新闪卡
func (r *FlashcardRepository) UpsertBatch(ctx context.Context, cards []*entity.Flashcard) error {
	ctx, span := tracer.Start(ctx, "postgres.FlashcardRepository.UpsertBatch")
	defer span.End()

	if len(cards) == 0 {
		return nil
	}

	db := getDB(ctx, r.client.db)
	err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "category"}, {Name: "arxiv_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"title", "source_url", "summary", "generated_at", "expires_at", "updated_at",
		}),
	}).Create(&cards).Error
	if err != nil {
		span.RecordError(err)
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to upsert flashcards")
	}
	return nil
}

// DeleteExpired 删除已过期闪卡，最多 limit 条
func (r *FlashcardRepository) DeleteExpired(ctx context.Context, limit int) (int64, error) {
	ctx, span := tracer.Start(ctx, "postgres.FlashcardRepository.DeleteExpired")
	defer span.End()

	if limit <= 0 {
		return 0, nil
	}

	// gorm 的 Delete 不支持 LIMIT，用子查询圈定批量
	db := getDB(ctx, r.client.db)
	result := db.Exec(
		"DELETE FROM flashcards WHERE id IN (SELECT id FROM flashcards WHERE expires_at <= ? ORDER BY expires_at ASC LIMIT ?)",
		time.Now(), limit,
	)
	if result.Error != nil {
		span.RecordError(result.Error)
		return 0, apperrors.Wrap(result.Error, apperrors.CodeDatabaseError, "failed to delete expired flashcards")
	}
	return result.RowsAffected, nil
}

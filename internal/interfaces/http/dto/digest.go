// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"time"

	"arxiv-digest-api/internal/domain/entity"
)

// FlashcardItem 单张闪卡
type FlashcardItem struct {
	ArxivID     string                   `json:"arxiv_id"`
	Title       string                   `json:"title"`
	SourceURL   string                   `json:"source_url,omitempty"`
	Summary     *entity.FlashcardPayload `json:"summary"`
	GeneratedAt time.Time                `json:"generated_at"`
	ExpiresAt   time.Time                `json:"expires_at"`
}

// FlashcardListResponse 分类闪卡列表响应
type FlashcardListResponse struct {
	Category    string          `json:"category"`
	Cards       []FlashcardItem `json:"cards"`
	Regenerated bool            `json:"regenerated"`
}

// NewFlashcardList 由实体构建闪卡列表响应
func NewFlashcardList(category string, cards []*entity.Flashcard, regenerated bool) FlashcardListResponse {
	items := make([]FlashcardItem, 0, len(cards))
	for _, card := range cards {
		items = append(items, FlashcardItem{
			ArxivID:     card.ArxivID,
			Title:       card.Title,
			SourceURL:   card.SourceURL,
			Summary:     card.Summary,
			GeneratedAt: card.GeneratedAt,
			ExpiresAt:   card.ExpiresAt,
		})
	}
	return FlashcardListResponse{
		Category:    category,
		Cards:       items,
		Regenerated: regenerated,
	}
}

// CleanupResponse 过期闪卡清理响应
type CleanupResponse struct {
	Deleted int64 `json:"deleted"`
}

// MindMapResponse 脑图响应
type MindMapResponse struct {
	MindMap *entity.MindMap `json:"mindmap"`
	Cached  bool            `json:"cached"`
}

// MindMapInvalidateResponse 脑图缓存失效响应
type MindMapInvalidateResponse struct {
	Invalidated bool `json:"invalidated"`
}

// AskRequest 论文问答请求
type AskRequest struct {
	Question string `json:"question" binding:"required"`
}

// AskResponse 论文问答响应
type AskResponse struct {
	ArxivID string                   `json:"arxiv_id"`
	Result  *entity.StructuredAnswer `json:"result"`
}

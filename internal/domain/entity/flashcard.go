// Package entity 定义领域实体
package entity

import (
	"time"
)

// FlashcardPayload LLM 生成的闪卡内容，持久化为 jsonb
type FlashcardPayload struct {
	Headline     string     `json:"headline"`
	Insight      string     `json:"insight"`
	WhyItMatters string     `json:"why_it_matters,omitempty"`
	Confidence   Confidence `json:"confidence,omitempty"`
	IsPartial    bool       `json:"is_partial,omitempty"`
	Diagnostics  []string   `json:"diagnostics,omitempty"`
}

// Flashcard 分类级闪卡实体，(category, arxiv_id) 唯一
type Flashcard struct {
	ID          string            `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Category    string            `json:"category" gorm:"type:varchar(32);uniqueIndex:uk_flashcards_category_arxiv;not null"`
	ArxivID     string            `json:"arxiv_id" gorm:"type:varchar(32);uniqueIndex:uk_flashcards_category_arxiv;not null"`
	Title       string            `json:"title" gorm:"type:text;not null"`
	SourceURL   string            `json:"source_url,omitempty" gorm:"type:text"`
	Summary     *FlashcardPayload `json:"summary" gorm:"type:jsonb;serializer:json;not null"`
	GeneratedAt time.Time         `json:"generated_at" gorm:"not null"`
	ExpiresAt   time.Time         `json:"expires_at" gorm:"index;not null"`
	CreatedAt   time.Time         `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time         `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName 指定表名
func (Flashcard) TableName() string {
	return "flashcards"
}

// NewFlashcard 基于论文和校验后的内容创建闪卡
func NewFlashcard(category string, paper *Paper, payload *FlashcardPayload, ttl time.Duration) *Flashcard {
	now := time.Now()
	return &Flashcard{
		Category:    category,
		ArxivID:     paper.ArxivID,
		Title:       paper.Title,
		SourceURL:   paper.AbsURL(),
		Summary:     payload,
		GeneratedAt: now,
		ExpiresAt:   now.Add(ttl),
	}
}

// IsFresh 检查闪卡是否仍在新鲜度窗口内
func (f *Flashcard) IsFresh(now time.Time) bool {
	return f.ExpiresAt.After(now)
}

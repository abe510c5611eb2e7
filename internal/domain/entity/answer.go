// Package entity 定义领域实体
package entity

import (
	"time"
)

// Confidence 生成结果的置信度
type Confidence string

const (
	ConfidenceHigh    Confidence = "high"
	ConfidenceMedium  Confidence = "medium"
	ConfidenceLow     Confidence = "low"
	ConfidenceUnknown Confidence = "unknown"
)

// IsValid 检查置信度取值是否合法
func (c Confidence) IsValid() bool {
	switch c {
	case ConfidenceHigh, ConfidenceMedium, ConfidenceLow, ConfidenceUnknown:
		return true
	}
	return false
}

// AnswerMetadata 结构化回答元数据
type AnswerMetadata struct {
	Confidence     Confidence `json:"confidence"`
	IsPartial      bool       `json:"is_partial"`
	IsUnanswerable bool       `json:"is_unanswerable"`
	Diagnostics    []string   `json:"diagnostics,omitempty"`
	ModelUsed      string     `json:"model_used,omitempty"`
	GeneratedAt    time.Time  `json:"generated_at"`
}

// StructuredAnswer 基于论文内容的结构化回答
type StructuredAnswer struct {
	Answer    string         `json:"answer"`
	Sources   []string       `json:"sources,omitempty"`
	Citations []string       `json:"citations,omitempty"`
	Metadata  AnswerMetadata `json:"metadata"`
}

// Package flashcard 实现分类级闪卡批量生成流水线
package flashcard

import (
	"encoding/json"
	"strings"

	"arxiv-digest-api/internal/domain/entity"
	"arxiv-digest-api/internal/workflow/node"
	apperrors "arxiv-digest-api/pkg/errors"
	"arxiv-digest-api/pkg/metrics"
)

// cardShape LLM 输出的闪卡形状
type cardShape struct {
	Headline     string `json:"headline"`
	Insight      string `json:"insight"`
	WhyItMatters string `json:"why_it_matters,omitempty"`
	Confidence   string `json:"confidence,omitempty"`
}

var cardAllowedFields = []string{"headline", "insight", "why_it_matters", "confidence"}

// ParseCard 将模型输出解析为闪卡内容
// 解析失败时降级构造：原始文本进入 insight，置信度 low，is_partial=true；
// 仅空输入返回校验失败
func ParseCard(raw string, structured json.RawMessage, fallbackHeadline string) (*entity.FlashcardPayload, error) {
	if strings.TrimSpace(raw) == "" && len(structured) == 0 {
		metrics.ResponseRepairTotal.WithLabelValues("flashcard", "failed").Inc()
		return nil, apperrors.ErrValidationFailed.WithDetail("empty llm output")
	}

	// 快速路径：输出形状已由 Provider 强约束
	if len(structured) > 0 {
		if shape, err := node.DecodeStrict[cardShape](string(structured)); err == nil {
			if payload := buildCardPayload(shape, nil); payload != nil {
				metrics.ResponseRepairTotal.WithLabelValues("flashcard", "clean").Inc()
				return payload, nil
			}
		}
	}

	shape, diags, err := node.DecodeLenient[cardShape](raw, cardAllowedFields)
	if err == nil {
		if payload := buildCardPayload(shape, diags); payload != nil {
			outcome := "clean"
			if len(diags) > 0 {
				outcome = "repaired"
			}
			metrics.ResponseRepairTotal.WithLabelValues("flashcard", outcome).Inc()
			return payload, nil
		}
		diags = append(diags, "parsed_payload_missing_primary_content")
	}

	// 降级构造：原始文本作为核心内容
	text := strings.TrimSpace(raw)
	if text == "" {
		text = strings.TrimSpace(string(structured))
	}
	metrics.ResponseRepairTotal.WithLabelValues("flashcard", "degraded").Inc()
	diags = append(diags, "degraded_plain_text_response")
	return &entity.FlashcardPayload{
		Headline:    fallbackHeadline,
		Insight:     text,
		Confidence:  entity.ConfidenceLow,
		IsPartial:   true,
		Diagnostics: diags,
	}, nil
}

// buildCardPayload 校验核心字段并补全默认值，不可构造时返回 nil
func buildCardPayload(shape *cardShape, diags []string) *entity.FlashcardPayload {
	headline := strings.TrimSpace(shape.Headline)
	insight := strings.TrimSpace(shape.Insight)
	if headline == "" || insight == "" {
		return nil
	}

	confidence := entity.Confidence(strings.ToLower(strings.TrimSpace(shape.Confidence)))
	if !confidence.IsValid() {
		// 闪卡缺省置信度为 medium
		confidence = entity.ConfidenceMedium
	}

	return &entity.FlashcardPayload{
		Headline:     headline,
		Insight:      insight,
		WhyItMatters: strings.TrimSpace(shape.WhyItMatters),
		Confidence:   confidence,
		Diagnostics:  diags,
	}
}

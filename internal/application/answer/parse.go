// Package answer 实现基于检索段落的论文问答流水线
package answer

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"arxiv-digest-api/internal/domain/entity"
	"arxiv-digest-api/internal/workflow/node"
	apperrors "arxiv-digest-api/pkg/errors"
	"arxiv-digest-api/pkg/metrics"
)

// answerShape LLM 输出的回答形状
type answerShape struct {
	Answer         string   `json:"answer"`
	Sources        []string `json:"sources,omitempty"`
	Citations      []string `json:"citations,omitempty"`
	Confidence     string   `json:"confidence,omitempty"`
	IsUnanswerable bool     `json:"is_unanswerable,omitempty"`
}

var answerAllowedFields = []string{"answer", "sources", "citations", "confidence", "is_unanswerable"}

// parseAnswer 将模型输出解析为结构化回答
// 解析失败时降级构造：原始文本整体作为 answer，置信度 low，is_partial=true；
// 仅空输入返回校验失败。模型未给出来源时从检索段落回填。
func parseAnswer(raw string, structured json.RawMessage, chunks []*entity.PaperChunk, model string) (*entity.StructuredAnswer, error) {
	if strings.TrimSpace(raw) == "" && len(structured) == 0 {
		metrics.ResponseRepairTotal.WithLabelValues("answer", "failed").Inc()
		return nil, apperrors.ErrValidationFailed.WithDetail("empty llm output")
	}

	// 快速路径：输出形状已由 Provider 强约束
	if len(structured) > 0 {
		if shape, err := node.DecodeStrict[answerShape](string(structured)); err == nil {
			if result := buildAnswer(shape, nil, chunks, model); result != nil {
				metrics.ResponseRepairTotal.WithLabelValues("answer", "clean").Inc()
				return result, nil
			}
		}
	}

	shape, diags, err := node.DecodeLenient[answerShape](raw, answerAllowedFields)
	if err == nil {
		if result := buildAnswer(shape, diags, chunks, model); result != nil {
			outcome := "clean"
			if len(diags) > 0 {
				outcome = "repaired"
			}
			metrics.ResponseRepairTotal.WithLabelValues("answer", outcome).Inc()
			return result, nil
		}
		diags = append(diags, "parsed_payload_missing_primary_content")
	}

	// 降级构造：原始文本整体作为回答
	text := strings.TrimSpace(raw)
	if text == "" {
		text = strings.TrimSpace(string(structured))
	}
	metrics.ResponseRepairTotal.WithLabelValues("answer", "degraded").Inc()
	diags = append(diags, "degraded_plain_text_response")
	return &entity.StructuredAnswer{
		Answer:  text,
		Sources: backfillSources(nil, chunks),
		Metadata: entity.AnswerMetadata{
			Confidence:  entity.ConfidenceLow,
			IsPartial:   true,
			Diagnostics: diags,
			ModelUsed:   model,
			GeneratedAt: time.Now(),
		},
	}, nil
}

// buildAnswer 校验核心字段并补全默认值，不可构造时返回 nil
func buildAnswer(shape *answerShape, diags []string, chunks []*entity.PaperChunk, model string) *entity.StructuredAnswer {
	text := strings.TrimSpace(shape.Answer)
	if text == "" {
		return nil
	}

	confidence := entity.Confidence(strings.ToLower(strings.TrimSpace(shape.Confidence)))
	if !confidence.IsValid() {
		confidence = entity.ConfidenceUnknown
	}
	// 模型明确表示无法回答时置信度不高于 low
	if shape.IsUnanswerable && confidence != entity.ConfidenceUnknown {
		confidence = entity.ConfidenceLow
	}

	return &entity.StructuredAnswer{
		Answer:    text,
		Sources:   backfillSources(shape.Sources, chunks),
		Citations: shape.Citations,
		Metadata: entity.AnswerMetadata{
			Confidence:     confidence,
			IsUnanswerable: shape.IsUnanswerable,
			Diagnostics:    diags,
			ModelUsed:      model,
			GeneratedAt:    time.Now(),
		},
	}
}

// backfillSources 模型未声明来源时按检索段落补全
func backfillSources(sources []string, chunks []*entity.PaperChunk) []string {
	if len(sources) > 0 {
		return sources
	}
	seen := make(map[string]struct{}, len(chunks))
	out := make([]string, 0, len(chunks))
	for i, c := range chunks {
		section := strings.TrimSpace(c.SectionTitle)
		if section == "" {
			section = "Body"
		}
		label := fmt.Sprintf("[%d] %s", i+1, section)
		if _, ok := seen[label]; ok {
			continue
		}
		seen[label] = struct{}{}
		out = append(out, label)
	}
	return out
}

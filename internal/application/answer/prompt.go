// Package answer 实现基于检索段落的论文问答流水线
package answer

import (
	"fmt"
	"strings"

	"arxiv-digest-api/internal/domain/entity"
)

// renderPassages 将检索段落渲染为带编号的引用块，编号与 citations 对应
func renderPassages(chunks []*entity.PaperChunk) string {
	var b strings.Builder
	for i, c := range chunks {
		section := strings.TrimSpace(c.SectionTitle)
		if section == "" {
			section = "Body"
		}
		fmt.Fprintf(&b, "[%d] (%s) %s\n\n", i+1, section, strings.TrimSpace(c.Text))
	}
	return strings.TrimSpace(b.String())
}

// answerJSONSchema 问答输出的 JSON Schema，用于 response_format 强约束
func answerJSONSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"answer": map[string]any{
				"type":        "string",
				"description": "Answer grounded in the retrieved passages",
			},
			"sources": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
			"citations": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "Passage numbers like [1] supporting the answer",
			},
			"confidence": map[string]any{
				"type": "string",
				"enum": []string{"high", "medium", "low"},
			},
			"is_unanswerable": map[string]any{
				"type": "boolean",
			},
		},
		"required": []string{"answer"},
	}
}

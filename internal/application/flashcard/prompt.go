// Package flashcard 实现分类级闪卡批量生成流水线
package flashcard

import (
	"context"

	"github.com/cloudwego/eino/schema"

	"arxiv-digest-api/internal/domain/entity"
	"arxiv-digest-api/internal/workflow/node"
	"arxiv-digest-api/internal/workflow/prompt"
)

// buildCardMessages 组装闪卡生成提示词，正文节选按字符预算截断
func buildCardMessages(ctx context.Context, registry *prompt.Registry, category string, paper *entity.Paper, snippetMaxRunes int) ([]*schema.Message, error) {
	tpl, err := registry.ChatTemplate(prompt.PromptFlashcardV1)
	if err != nil {
		return nil, err
	}

	return tpl.Format(ctx, map[string]any{
		"category": category,
		"title":    paper.Title,
		"abstract": paper.Abstract,
		"snippet":  node.TruncateByRunes(paper.RawText, snippetMaxRunes),
	})
}

// cardJSONSchema 闪卡输出的 JSON Schema，用于 response_format 强约束
func cardJSONSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"headline": map[string]any{
				"type":        "string",
				"description": "One-sentence core contribution",
			},
			"insight": map[string]any{
				"type":        "string",
				"description": "Key method and results in 2-3 sentences",
			},
			"why_it_matters": map[string]any{
				"type": "string",
			},
			"confidence": map[string]any{
				"type": "string",
				"enum": []string{"high", "medium", "low"},
			},
		},
		"required": []string{"headline", "insight"},
	}
}

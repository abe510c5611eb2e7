// Package mindmap 实现论文脑图的单键生成与缓存编排
package mindmap

import (
	"context"
	"strings"
	"time"

	"arxiv-digest-api/internal/config"
	"arxiv-digest-api/internal/domain/entity"
	"arxiv-digest-api/internal/infrastructure/llm"
	"arxiv-digest-api/internal/workflow/node"
	"arxiv-digest-api/internal/workflow/prompt"
	apperrors "arxiv-digest-api/pkg/errors"
	"arxiv-digest-api/pkg/metrics"
	"arxiv-digest-api/pkg/tracer"
)

// inference 推理依赖，由 llm.Gateway 实现
type inference interface {
	Generate(ctx context.Context, req *llm.Request) (*llm.Result, error)
}

// mindMapShape LLM 输出的脑图形状
type mindMapShape struct {
	Title           string              `json:"title"`
	Root            *entity.MindMapNode `json:"root"`
	SectionsCovered []string            `json:"sections_covered,omitempty"`
}

var mindMapAllowedFields = []string{"title", "root", "sections_covered"}

// Generator 脑图生成器：提示词组装 → 推理 → 树形校验
// 脑图不降级：无法构造合法树即为失败
type Generator struct {
	gateway  inference
	registry *prompt.Registry
	cfg      *config.MindMapConfig
}

// NewGenerator 创建脑图生成器
func NewGenerator(gateway *llm.Gateway, registry *prompt.Registry, cfg *config.MindMapConfig) *Generator {
	return &Generator{
		gateway:  gateway,
		registry: registry,
		cfg:      cfg,
	}
}

// Generate 为论文生成脑图
func (g *Generator) Generate(ctx context.Context, paper *entity.Paper, chunks []*entity.PaperChunk) (*entity.MindMap, error) {
	ctx, span := tracer.Start(ctx, "mindmap.Generate")
	defer span.End()

	content, covered := buildContent(chunks, g.cfg.ContentMaxRunes)
	if strings.TrimSpace(content) == "" {
		return nil, apperrors.ErrNoContentIndexed.WithDetail(paper.ArxivID)
	}

	tpl, err := g.registry.ChatTemplate(prompt.PromptMindMapV1)
	if err != nil {
		return nil, apperrors.ErrGenerationFailed.WithError(err)
	}
	messages, err := tpl.Format(ctx, map[string]any{
		"title":    paper.Title,
		"arxiv_id": paper.ArxivID,
		"content":  content,
	})
	if err != nil {
		return nil, apperrors.ErrGenerationFailed.WithError(err)
	}

	start := time.Now()
	result, err := g.gateway.Generate(ctx, &llm.Request{
		Messages:     messages,
		Kind:         "mindmap",
		OutputSchema: mindMapJSONSchema(),
		SchemaName:   "paper_mindmap",
	})
	if err != nil {
		metrics.MindMapGenerationDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
		return nil, err
	}

	m, err := g.parse(result, paper, covered)
	if err != nil {
		metrics.MindMapGenerationDuration.WithLabelValues("invalid").Observe(time.Since(start).Seconds())
		return nil, err
	}
	metrics.MindMapGenerationDuration.WithLabelValues("ok").Observe(time.Since(start).Seconds())
	return m, nil
}

// parse 解析并校验模型输出，脑图没有降级路径
func (g *Generator) parse(result *llm.Result, paper *entity.Paper, covered []string) (*entity.MindMap, error) {
	var (
		shape *mindMapShape
		diags []string
		err   error
	)

	// 快速路径：输出形状已由 Provider 强约束
	if len(result.Structured) > 0 {
		shape, err = node.DecodeStrict[mindMapShape](string(result.Structured))
	}
	if shape == nil {
		shape, diags, err = node.DecodeLenient[mindMapShape](result.Text, mindMapAllowedFields)
	}
	if err != nil {
		metrics.ResponseRepairTotal.WithLabelValues("mindmap", "failed").Inc()
		return nil, apperrors.ErrValidationFailed.WithError(err)
	}

	title := strings.TrimSpace(shape.Title)
	if title == "" {
		title = paper.Title
	}
	sections := shape.SectionsCovered
	if len(sections) == 0 {
		sections = covered
	}

	m := &entity.MindMap{
		ArxivID:         paper.ArxivID,
		Title:           title,
		Root:            shape.Root,
		SectionsCovered: sections,
		GeneratedAt:     time.Now(),
		ModelUsed:       result.Model,
	}
	if err := ValidateTree(m); err != nil {
		metrics.ResponseRepairTotal.WithLabelValues("mindmap", "failed").Inc()
		return nil, apperrors.ErrValidationFailed.WithError(err)
	}

	outcome := "clean"
	if len(diags) > 0 {
		outcome = "repaired"
	}
	metrics.ResponseRepairTotal.WithLabelValues("mindmap", outcome).Inc()
	return m, nil
}

// Package answer 实现基于检索段落的论文问答流水线
package answer

import (
	"context"
	"strings"

	"github.com/cloudwego/eino/schema"

	"arxiv-digest-api/internal/config"
	"arxiv-digest-api/internal/domain/entity"
	"arxiv-digest-api/internal/domain/repository"
	"arxiv-digest-api/internal/infrastructure/embedding"
	"arxiv-digest-api/internal/infrastructure/llm"
	"arxiv-digest-api/internal/workflow/prompt"
	apperrors "arxiv-digest-api/pkg/errors"
	"arxiv-digest-api/pkg/logger"
	"arxiv-digest-api/pkg/tracer"
)

const defaultTopK = 6

// inference 推理依赖，由 llm.Gateway 实现
type inference interface {
	Generate(ctx context.Context, req *llm.Request) (*llm.Result, error)
	Stream(ctx context.Context, req *llm.Request) (*schema.StreamReader[*schema.Message], error)
}

// embedder 查询向量化依赖，由 embedding.Client 实现
type embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Service 问答应用服务：检索增强的单轮问答
type Service struct {
	papers   repository.PaperRepository
	chunks   repository.ChunkRepository
	embedder embedder
	gateway  inference
	registry *prompt.Registry
	cfg      *config.AnswerConfig
}

// NewService 创建问答应用服务
func NewService(
	papers repository.PaperRepository,
	chunks repository.ChunkRepository,
	embedderClient *embedding.Client,
	gateway *llm.Gateway,
	registry *prompt.Registry,
	cfg *config.AnswerConfig,
) *Service {
	return &Service{
		papers:   papers,
		chunks:   chunks,
		embedder: embedderClient,
		gateway:  gateway,
		registry: registry,
		cfg:      cfg,
	}
}

// Ask 针对单篇论文回答问题
// 流程：论文校验 → 问题向量化 → 论文内向量检索 → 推理 → 结构化解析
func (s *Service) Ask(ctx context.Context, arxivID, question string) (*entity.StructuredAnswer, error) {
	ctx, span := tracer.Start(ctx, "answer.Ask")
	defer span.End()
	ctx = logger.WithContext(ctx, logger.ArxivIDKey, arxivID)

	paper, retrieved, err := s.retrieve(ctx, arxivID, question)
	if err != nil {
		return nil, err
	}

	messages, err := s.buildMessages(ctx, paper, retrieved, question)
	if err != nil {
		return nil, err
	}

	result, err := s.gateway.Generate(ctx, &llm.Request{
		Messages:     messages,
		Kind:         "answer",
		OutputSchema: answerJSONSchema(),
		SchemaName:   "paper_answer",
	})
	if err != nil {
		return nil, err
	}

	structured, err := parseAnswer(result.Text, result.Structured, retrieved, result.Model)
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "answer generated",
		"passages", len(retrieved),
		"confidence", string(structured.Metadata.Confidence),
	)
	return structured, nil
}

// AskStream 流式回答，返回增量文本流与检索段落
// 流式路径不做结构化解析，调用方负责关闭 StreamReader
func (s *Service) AskStream(ctx context.Context, arxivID, question string) (*schema.StreamReader[*schema.Message], []*entity.PaperChunk, error) {
	ctx, span := tracer.Start(ctx, "answer.AskStream")
	defer span.End()
	ctx = logger.WithContext(ctx, logger.ArxivIDKey, arxivID)

	paper, retrieved, err := s.retrieve(ctx, arxivID, question)
	if err != nil {
		return nil, nil, err
	}

	messages, err := s.buildMessages(ctx, paper, retrieved, question)
	if err != nil {
		return nil, nil, err
	}

	reader, err := s.gateway.Stream(ctx, &llm.Request{
		Messages: messages,
		Kind:     "answer",
	})
	if err != nil {
		return nil, nil, err
	}
	return reader, retrieved, nil
}

// retrieve 校验论文并在论文范围内做向量检索
func (s *Service) retrieve(ctx context.Context, arxivID, question string) (*entity.Paper, []*entity.PaperChunk, error) {
	if strings.TrimSpace(question) == "" {
		return nil, nil, apperrors.ErrValidationFailed.WithDetail("question is required")
	}

	paper, err := s.papers.GetByArxivID(ctx, arxivID)
	if err != nil {
		return nil, nil, err
	}

	vector, err := s.embedder.EmbedQuery(ctx, question)
	if err != nil {
		return nil, nil, err
	}

	retrieved, err := s.chunks.SearchByVector(ctx, arxivID, vector, s.topK())
	if err != nil {
		return nil, nil, err
	}
	if len(retrieved) == 0 {
		return nil, nil, apperrors.ErrNoContentIndexed.WithDetail(arxivID)
	}
	return paper, retrieved, nil
}

func (s *Service) buildMessages(ctx context.Context, paper *entity.Paper, retrieved []*entity.PaperChunk, question string) ([]*schema.Message, error) {
	tpl, err := s.registry.ChatTemplate(prompt.PromptRAGAnswerV1)
	if err != nil {
		return nil, apperrors.ErrGenerationFailed.WithError(err)
	}
	messages, err := tpl.Format(ctx, map[string]any{
		"title":    paper.Title,
		"passages": renderPassages(retrieved),
		"question": question,
	})
	if err != nil {
		return nil, apperrors.ErrGenerationFailed.WithError(err)
	}
	return messages, nil
}

func (s *Service) topK() int {
	if s.cfg != nil && s.cfg.TopK > 0 {
		return s.cfg.TopK
	}
	return defaultTopK
}

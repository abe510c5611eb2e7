// Package flashcard 实现分类级闪卡批量生成流水线
package flashcard

import (
	"context"

	"golang.org/x/sync/errgroup"

	"arxiv-digest-api/internal/config"
	"arxiv-digest-api/internal/domain/entity"
	"arxiv-digest-api/internal/domain/repository"
	"arxiv-digest-api/internal/infrastructure/llm"
	"arxiv-digest-api/internal/workflow/prompt"
	"arxiv-digest-api/pkg/logger"
	"arxiv-digest-api/pkg/metrics"
	"arxiv-digest-api/pkg/tracer"
)

const (
	defaultLimit = 5
	maxLimit     = 20
)

// inference 推理依赖，由 llm.Gateway 实现
type inference interface {
	Generate(ctx context.Context, req *llm.Request) (*llm.Result, error)
}

// Service 闪卡应用服务
type Service struct {
	papers   repository.PaperRepository
	cards    repository.FlashcardRepository
	tx       repository.Transactor
	gateway  inference
	registry *prompt.Registry
	cfg      *config.FlashcardsConfig
}

// NewService 创建闪卡应用服务
func NewService(
	papers repository.PaperRepository,
	cards repository.FlashcardRepository,
	tx repository.Transactor,
	gateway *llm.Gateway,
	registry *prompt.Registry,
	cfg *config.FlashcardsConfig,
) *Service {
	return &Service{
		papers:   papers,
		cards:    cards,
		tx:       tx,
		gateway:  gateway,
		registry: registry,
		cfg:      cfg,
	}
}

// GetCards 获取分类下的闪卡
// 新鲜闪卡足量且未强制刷新时直接返回；否则触发批量再生成。
// 返回值第二项表示本次调用是否执行了再生成。
func (s *Service) GetCards(ctx context.Context, category string, limit int, refresh bool) ([]*entity.Flashcard, bool, error) {
	ctx, span := tracer.Start(ctx, "flashcard.GetCards")
	defer span.End()
	ctx = logger.WithContext(ctx, logger.CategoryKey, category)

	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	if !refresh {
		fresh, err := s.cards.GetFresh(ctx, category, limit)
		if err != nil {
			return nil, false, err
		}
		if len(fresh) >= limit {
			return fresh[:limit], false, nil
		}
	}

	cards, err := s.regenerate(ctx, category, limit)
	if err != nil {
		return nil, true, err
	}
	return cards, true, nil
}

// regenerate 批量再生成分类闪卡
// 取 2×limit 个最新候选论文，按并发上限扇出，单条失败丢弃不中断整批
func (s *Service) regenerate(ctx context.Context, category string, limit int) ([]*entity.Flashcard, error) {
	ctx, span := tracer.Start(ctx, "flashcard.regenerate")
	defer span.End()

	metrics.FlashcardBatchTotal.WithLabelValues(category).Inc()

	multiplier := s.cfg.CandidateMultiplier
	if multiplier <= 0 {
		multiplier = 2
	}
	candidates, err := s.papers.RecentByCategory(ctx, category, limit*multiplier)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		// 无候选论文：不发起任何推理调用
		logger.Info(ctx, "no candidate papers for flashcard regeneration")
		return []*entity.Flashcard{}, nil
	}

	concurrency := s.cfg.MaxConcurrency
	if concurrency <= 0 {
		concurrency = 3
	}

	// 按候选位置存放结果，整批跑完后保序收集
	payloads := make([]*entity.FlashcardPayload, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, paper := range candidates {
		g.Go(func() error {
			payload, genErr := s.generateOne(gctx, category, paper)
			if genErr != nil {
				// 单条失败只记录，不触发整批取消
				logger.Warn(gctx, "flashcard generation failed for candidate",
					"arxiv_id", paper.ArxivID, "error", genErr.Error())
				metrics.FlashcardCandidateResults.WithLabelValues(category, "failed").Inc()
				return nil
			}
			payloads[i] = payload
			metrics.FlashcardCandidateResults.WithLabelValues(category, "ok").Inc()
			return nil
		})
	}
	// worker 永不返回错误，Wait 仅用于同步
	_ = g.Wait()

	selected := make([]*entity.Flashcard, 0, limit)
	for i, payload := range payloads {
		if payload == nil {
			continue
		}
		selected = append(selected, entity.NewFlashcard(category, candidates[i], payload, s.cfg.TTL))
		if len(selected) == limit {
			break
		}
	}

	if len(selected) > 0 {
		err = s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
			return s.cards.UpsertBatch(txCtx, selected)
		})
		if err != nil {
			return nil, err
		}
	}

	logger.Info(ctx, "flashcard batch regenerated",
		"candidates", len(candidates), "produced", len(selected), "limit", limit)
	return selected, nil
}

// generateOne 为单篇论文生成闪卡内容
func (s *Service) generateOne(ctx context.Context, category string, paper *entity.Paper) (*entity.FlashcardPayload, error) {
	messages, err := buildCardMessages(ctx, s.registry, category, paper, s.cfg.SnippetMaxRunes)
	if err != nil {
		return nil, err
	}

	req := &llm.Request{
		Messages:     messages,
		Kind:         "flashcard",
		OutputSchema: cardJSONSchema(),
		SchemaName:   "paper_flashcard",
	}
	if s.cfg.MaxTokens > 0 {
		maxTokens := s.cfg.MaxTokens
		req.MaxTokens = &maxTokens
	}

	result, err := s.gateway.Generate(ctx, req)
	if err != nil {
		return nil, err
	}

	// 降级结果可接受，仅空输出按失败处理
	return ParseCard(result.Text, result.Structured, paper.Title)
}

// CleanupExpired 删除已过期闪卡，返回删除数量
func (s *Service) CleanupExpired(ctx context.Context, limit int) (int64, error) {
	ctx, span := tracer.Start(ctx, "flashcard.CleanupExpired")
	defer span.End()

	if limit <= 0 {
		limit = 500
	}
	deleted, err := s.cards.DeleteExpired(ctx, limit)
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		logger.Info(ctx, "expired flashcards deleted", "count", deleted)
	}
	return deleted, nil
}

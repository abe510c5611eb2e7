// Package mindmap 实现论文脑图的单键生成与缓存编排
package mindmap

import (
	"context"
	"encoding/json"
	"time"

	"arxiv-digest-api/internal/domain/entity"
	"arxiv-digest-api/internal/domain/repository"
	redisinfra "arxiv-digest-api/internal/infrastructure/persistence/redis"
	"arxiv-digest-api/pkg/logger"
	"arxiv-digest-api/pkg/tracer"
)

const paperMetaTTL = 10 * time.Minute

// generating 生成依赖，由 *Generator 实现
type generating interface {
	Generate(ctx context.Context, paper *entity.Paper, chunks []*entity.PaperChunk) (*entity.MindMap, error)
}

// metaCache 论文元数据读透缓存，由 *redis.Cache 实现；可为 nil
type metaCache interface {
	GetOrLoadSafe(ctx context.Context, key string, ttl time.Duration, loader func() (interface{}, error)) ([]byte, error)
}

// Service 脑图应用服务：缓存优先的 get-or-generate 编排
// 并发未命中各自生成，后写覆盖先写（已知限制，不做在途去重）
type Service struct {
	papers    repository.PaperRepository
	chunks    repository.ChunkRepository
	cache     repository.MindMapCache
	generator generating
	meta      metaCache
}

// NewService 创建脑图应用服务
func NewService(
	papers repository.PaperRepository,
	chunks repository.ChunkRepository,
	cache repository.MindMapCache,
	generator *Generator,
	meta *redisinfra.Cache,
) *Service {
	s := &Service{
		papers:    papers,
		chunks:    chunks,
		cache:     cache,
		generator: generator,
	}
	if meta != nil {
		s.meta = meta
	}
	return s
}

// GetOrGenerate 获取论文脑图
// 缓存命中直接返回；未命中则生成并写入缓存。
// 生成或校验失败不写缓存，错误原样上抛。
// 返回值第二项表示是否来自缓存。
func (s *Service) GetOrGenerate(ctx context.Context, arxivID string) (*entity.MindMap, bool, error) {
	ctx, span := tracer.Start(ctx, "mindmap.GetOrGenerate")
	defer span.End()
	ctx = logger.WithContext(ctx, logger.ArxivIDKey, arxivID)

	paper, err := s.lookupPaper(ctx, arxivID)
	if err != nil {
		return nil, false, err
	}

	if entry, err := s.cache.Get(ctx, arxivID); err != nil {
		// 缓存读失败退化为未命中
		logger.Warn(ctx, "mindmap cache read failed, regenerating", "error", err.Error())
	} else if entry != nil {
		return entry.MindMap, true, nil
	}

	chunks, err := s.chunks.GetByPaper(ctx, arxivID)
	if err != nil {
		return nil, false, err
	}

	m, err := s.generator.Generate(ctx, paper, chunks)
	if err != nil {
		return nil, false, err
	}

	if err := s.cache.Set(ctx, arxivID, m); err != nil {
		// 缓存写失败不影响返回结果
		logger.Warn(ctx, "mindmap cache write failed", "error", err.Error())
	}

	logger.Info(ctx, "mindmap generated", "nodes", m.NodeCount())
	return m, false, nil
}

// Invalidate 删除论文脑图缓存，返回是否存在
func (s *Service) Invalidate(ctx context.Context, arxivID string) (bool, error) {
	ctx, span := tracer.Start(ctx, "mindmap.Invalidate")
	defer span.End()

	if _, err := s.lookupPaper(ctx, arxivID); err != nil {
		return false, err
	}
	return s.cache.Invalidate(ctx, arxivID)
}

// CacheStatus 只读查询论文脑图缓存状态
func (s *Service) CacheStatus(ctx context.Context, arxivID string) (*entity.MindMapCacheStatus, error) {
	ctx, span := tracer.Start(ctx, "mindmap.CacheStatus")
	defer span.End()

	if _, err := s.lookupPaper(ctx, arxivID); err != nil {
		return nil, err
	}
	return s.cache.Status(ctx, arxivID)
}

// lookupPaper 论文元数据查询，命中读透缓存时不落库
func (s *Service) lookupPaper(ctx context.Context, arxivID string) (*entity.Paper, error) {
	if s.meta == nil {
		return s.papers.GetByArxivID(ctx, arxivID)
	}

	raw, err := s.meta.GetOrLoadSafe(ctx, redisinfra.BuildPaperKey(arxivID), paperMetaTTL, func() (interface{}, error) {
		return s.papers.GetByArxivID(ctx, arxivID)
	})
	if err != nil {
		return nil, err
	}
	var paper entity.Paper
	if jsonErr := json.Unmarshal(raw, &paper); jsonErr != nil {
		// 缓存内容异常时直接回源
		return s.papers.GetByArxivID(ctx, arxivID)
	}
	return &paper, nil
}

//go:build wireinject
// +build wireinject

// Package wire 提供依赖注入配置
package wire

import (
	"context"

	"github.com/google/wire"

	"arxiv-digest-api/internal/application/answer"
	"arxiv-digest-api/internal/application/flashcard"
	"arxiv-digest-api/internal/application/mindmap"
	"arxiv-digest-api/internal/config"
	"arxiv-digest-api/internal/domain/repository"
	"arxiv-digest-api/internal/infrastructure/llm"
	"arxiv-digest-api/internal/infrastructure/persistence/milvus"
	"arxiv-digest-api/internal/infrastructure/persistence/postgres"
	"arxiv-digest-api/internal/infrastructure/persistence/redis"
	"arxiv-digest-api/internal/interfaces/http/handler"
	"arxiv-digest-api/internal/interfaces/http/middleware"
	"arxiv-digest-api/internal/interfaces/http/router"
	"arxiv-digest-api/internal/workflow/prompt"
)

// InitializeApp 初始化整个应用（带路由器）
func InitializeApp(ctx context.Context, cfg *config.Config) (*router.Router, func(), error) {
	wire.Build(
		PostgresSet,
		RedisSet,
		MilvusSet,
		LLMSet,
		ApplicationSet,
		RouterSet,
	)
	return nil, nil, nil
}

// InitializeBootstrap 初始化引导所需的存储层
func InitializeBootstrap(ctx context.Context, cfg *config.Config) (*BootstrapLayer, func(), error) {
	wire.Build(
		ProvidePostgresClient,
		ProvideMilvusClient,
		milvus.NewChunkRepository,
		wire.Struct(new(BootstrapLayer), "*"),
	)
	return nil, nil, nil
}

// PostgresSet PostgreSQL 提供者集合
var PostgresSet = wire.NewSet(
	ProvidePostgresClient,
	postgres.NewTxManager,
	postgres.NewPaperRepository,
	postgres.NewFlashcardRepository,
	wire.Bind(new(repository.Transactor), new(*postgres.TxManager)),
	wire.Bind(new(repository.PaperRepository), new(*postgres.PaperRepository)),
	wire.Bind(new(repository.FlashcardRepository), new(*postgres.FlashcardRepository)),
)

// RedisSet Redis 提供者集合
var RedisSet = wire.NewSet(
	ProvideRedisClient,
	redis.NewCache,
	redis.NewRateLimiter,
	ProvideMindMapCache,
	wire.Bind(new(repository.MindMapCache), new(*redis.MindMapCache)),
	wire.Bind(new(middleware.RateLimiter), new(*redis.RateLimiter)),
)

// MilvusSet Milvus 提供者集合
var MilvusSet = wire.NewSet(
	ProvideMilvusClient,
	milvus.NewChunkRepository,
	wire.Bind(new(repository.ChunkRepository), new(*milvus.ChunkRepository)),
)

// LLMSet 推理与向量化提供者集合
var LLMSet = wire.NewSet(
	llm.NewEinoFactory,
	llm.NewGateway,
	ProvideEmbeddingClient,
	prompt.NewRegistry,
)

// ApplicationSet 应用服务提供者集合
var ApplicationSet = wire.NewSet(
	ProvideFlashcardsConfig,
	ProvideMindMapConfig,
	ProvideAnswerConfig,
	flashcard.NewService,
	mindmap.NewGenerator,
	mindmap.NewService,
	answer.NewService,
)

// RouterSet 路由器提供者集合
var RouterSet = wire.NewSet(
	handler.NewHealthHandler,
	handler.NewFlashcardHandler,
	handler.NewMindMapHandler,
	handler.NewAskHandler,
	wire.Struct(new(router.Handlers), "*"),
	router.New,
)

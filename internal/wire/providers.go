// Package wire 提供依赖注入配置
package wire

import (
	"context"

	"arxiv-digest-api/internal/config"
	"arxiv-digest-api/internal/infrastructure/embedding"
	"arxiv-digest-api/internal/infrastructure/persistence/milvus"
	"arxiv-digest-api/internal/infrastructure/persistence/postgres"
	"arxiv-digest-api/internal/infrastructure/persistence/redis"
)

// BootstrapLayer 引导所需的存储层依赖容器
type BootstrapLayer struct {
	PgClient     *postgres.Client
	MilvusClient *milvus.Client
	ChunkRepo    *milvus.ChunkRepository
}

// ProvidePostgresClient 提供 PostgreSQL 客户端
func ProvidePostgresClient(cfg *config.Config) (*postgres.Client, func(), error) {
	client, err := postgres.NewClient(&cfg.Database.Postgres)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		client.Close()
	}
	return client, cleanup, nil
}

// ProvideRedisClient 提供 Redis 客户端
func ProvideRedisClient(cfg *config.Config) (*redis.Client, func(), error) {
	client, err := redis.NewClient(&cfg.Cache.Redis)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		client.Close()
	}
	return client, cleanup, nil
}

// ProvideMilvusClient 提供 Milvus 客户端
func ProvideMilvusClient(ctx context.Context, cfg *config.Config) (*milvus.Client, func(), error) {
	client, err := milvus.NewClient(ctx, &cfg.Vector.Milvus)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		client.Close()
	}
	return client, cleanup, nil
}

// ProvideMindMapCache 提供脑图缓存
func ProvideMindMapCache(client *redis.Client, cfg *config.Config) *redis.MindMapCache {
	return redis.NewMindMapCache(client, &cfg.MindMap)
}

// ProvideEmbeddingClient 提供向量化客户端
func ProvideEmbeddingClient(ctx context.Context, cfg *config.Config) (*embedding.Client, error) {
	embedder, err := embedding.NewEinoEmbedder(ctx, &cfg.Embedding)
	if err != nil {
		return nil, err
	}
	return embedding.NewClient(embedder), nil
}

// ProvideFlashcardsConfig 提供闪卡流水线配置
func ProvideFlashcardsConfig(cfg *config.Config) *config.FlashcardsConfig {
	return &cfg.Flashcards
}

// ProvideMindMapConfig 提供脑图流水线配置
func ProvideMindMapConfig(cfg *config.Config) *config.MindMapConfig {
	return &cfg.MindMap
}

// ProvideAnswerConfig 提供问答流水线配置
func ProvideAnswerConfig(cfg *config.Config) *config.AnswerConfig {
	return &cfg.Answer
}

// Package embedding 提供查询向量化客户端
package embedding

import (
	"context"
	"fmt"

	"arxiv-digest-api/internal/config"
	apperrors "arxiv-digest-api/pkg/errors"
	"arxiv-digest-api/pkg/tracer"

	"github.com/cloudwego/eino-ext/components/embedding/openai"
	"github.com/cloudwego/eino/components/embedding"
)

// NewEinoEmbedder 创建基于 Eino 的 Embedder
func NewEinoEmbedder(ctx context.Context, cfg *config.EmbeddingConfig) (embedding.Embedder, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("embedding endpoint is required")
	}

	// 使用 Eino 的 OpenAI 适配器
	embedder, err := openai.NewEmbedder(ctx, &openai.EmbeddingConfig{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.Endpoint,
		Model:   cfg.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create eino embedder: %w", err)
	}

	return embedder, nil
}

// Client 查询向量化客户端，封装 Eino Embedder
type Client struct {
	embedder embedding.Embedder
}

// NewClient 创建向量化客户端
func NewClient(embedder embedding.Embedder) *Client {
	return &Client{embedder: embedder}
}

// EmbedQuery 将单条查询文本向量化
func (c *Client) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	ctx, span := tracer.Start(ctx, "embedding.embed_query")
	defer span.End()

	vectors, err := c.embedder.EmbedStrings(ctx, []string{text})
	if err != nil {
		return nil, apperrors.New(apperrors.CodeEmbeddingFailed, "embedding request failed").WithError(err)
	}
	if len(vectors) == 0 || len(vectors[0]) == 0 {
		return nil, apperrors.New(apperrors.CodeEmbeddingFailed, "embedding service returned empty vector")
	}

	// eino 返回 float64，Milvus 需要 float32
	out := make([]float32, len(vectors[0]))
	for i, v := range vectors[0] {
		out[i] = float32(v)
	}
	return out, nil
}

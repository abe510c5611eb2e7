// Package milvus 提供 Milvus 向量数据库访问层实现
package milvus

import (
	"context"
	"fmt"
	"sort"

	milvusentity "github.com/milvus-io/milvus-sdk-go/v2/entity"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"arxiv-digest-api/internal/domain/entity"
	apperrors "arxiv-digest-api/pkg/errors"
)

// ChunkRepository 论文分块仓储
type ChunkRepository struct {
	client *Client
}

// NewChunkRepository 创建论文分块仓储
func NewChunkRepository(client *Client) *ChunkRepository {
	return &ChunkRepository{client: client}
}

// CreateCollection 创建分块集合
func (r *ChunkRepository) CreateCollection(ctx context.Context) error {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return fmt.Errorf("milvus client not configured")
	}
	ctx, span := tracer.Start(ctx, "milvus.ChunkRepository.CreateCollection")
	defer span.End()

	schema := PaperChunksSchema()
	schema.CollectionName = r.client.CollectionName(CollectionPaperChunks)

	if err := r.client.milvus.CreateCollection(ctx, schema, milvusentity.DefaultShardNumber); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create collection: %w", err)
	}
	return nil
}

// CreateIndex 创建 HNSW 索引
func (r *ChunkRepository) CreateIndex(ctx context.Context) error {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return fmt.Errorf("milvus client not configured")
	}
	ctx, span := tracer.Start(ctx, "milvus.ChunkRepository.CreateIndex")
	defer span.End()

	idx, err := milvusentity.NewIndexHNSW(
		milvusentity.COSINE,
		r.client.config.HNSWM,
		r.client.config.HNSWEfConstruction,
	)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create index: %w", err)
	}

	collName := r.client.CollectionName(CollectionPaperChunks)
	if err := r.client.milvus.CreateIndex(ctx, collName, "vector", idx, false); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create index: %w", err)
	}
	return nil
}

// GetByPaper 获取论文的全部分块，按 chunk_index 升序
func (r *ChunkRepository) GetByPaper(ctx context.Context, arxivID string) ([]*entity.PaperChunk, error) {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return nil, fmt.Errorf("milvus client not configured")
	}
	ctx, span := tracer.Start(ctx, "milvus.ChunkRepository.GetByPaper",
		trace.WithAttributes(attribute.String("arxiv_id", arxivID)))
	defer span.End()

	collName := r.client.CollectionName(CollectionPaperChunks)
	expr := fmt.Sprintf(`arxiv_id == "%s"`, arxivID)

	rs, err := r.client.milvus.Query(ctx, collName, nil, expr,
		[]string{"id", "arxiv_id", "chunk_index", "section_title", "text"})
	if err != nil {
		span.RecordError(err)
		return nil, apperrors.Wrap(err, apperrors.CodeVectorDBError, "failed to query paper chunks")
	}

	chunks := parseChunkColumns(rs)
	sort.Slice(chunks, func(i, j int) bool {
		return chunks[i].ChunkIndex < chunks[j].ChunkIndex
	})

	span.SetAttributes(attribute.Int("chunk_count", len(chunks)))
	return chunks, nil
}

// SearchByVector 在指定论文范围内按向量检索 topK 个分块
func (r *ChunkRepository) SearchByVector(ctx context.Context, arxivID string, vector []float32, topK int) ([]*entity.PaperChunk, error) {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return nil, fmt.Errorf("milvus client not configured")
	}
	ctx, span := tracer.Start(ctx, "milvus.ChunkRepository.SearchByVector",
		trace.WithAttributes(
			attribute.String("arxiv_id", arxivID),
			attribute.Int("top_k", topK),
		))
	defer span.End()

	collName := r.client.CollectionName(CollectionPaperChunks)
	filter := fmt.Sprintf(`arxiv_id == "%s"`, arxivID)

	sp, err := milvusentity.NewIndexHNSWSearchParam(128)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to create search param: %w", err)
	}

	results, err := r.client.milvus.Search(ctx,
		collName,
		nil,
		filter,
		[]string{"id", "arxiv_id", "chunk_index", "section_title", "text"},
		[]milvusentity.Vector{milvusentity.FloatVector(vector)},
		"vector",
		milvusentity.COSINE,
		topK,
		sp,
	)
	if err != nil {
		span.RecordError(err)
		return nil, apperrors.Wrap(err, apperrors.CodeVectorDBError, "failed to search paper chunks")
	}

	var chunks []*entity.PaperChunk
	for _, result := range results {
		parsed := parseChunkColumns(result.Fields)
		for i := 0; i < result.ResultCount && i < len(parsed); i++ {
			parsed[i].Score = result.Scores[i]
			chunks = append(chunks, parsed[i])
		}
	}

	span.SetAttributes(attribute.Int("result_count", len(chunks)))
	return chunks, nil
}

// parseChunkColumns 从列式结果集还原分块
func parseChunkColumns(columns []milvusentity.Column) []*entity.PaperChunk {
	var (
		ids, arxivIDs, sections, texts *milvusentity.ColumnVarChar
		indexes                        *milvusentity.ColumnInt64
	)
	for _, col := range columns {
		switch col.Name() {
		case "id":
			ids, _ = col.(*milvusentity.ColumnVarChar)
		case "arxiv_id":
			arxivIDs, _ = col.(*milvusentity.ColumnVarChar)
		case "chunk_index":
			indexes, _ = col.(*milvusentity.ColumnInt64)
		case "section_title":
			sections, _ = col.(*milvusentity.ColumnVarChar)
		case "text":
			texts, _ = col.(*milvusentity.ColumnVarChar)
		}
	}
	if texts == nil {
		return nil
	}

	n := texts.Len()
	chunks := make([]*entity.PaperChunk, 0, n)
	for i := 0; i < n; i++ {
		chunk := &entity.PaperChunk{}
		if ids != nil && i < ids.Len() {
			chunk.ID = ids.Data()[i]
		}
		if arxivIDs != nil && i < arxivIDs.Len() {
			chunk.ArxivID = arxivIDs.Data()[i]
		}
		if indexes != nil && i < indexes.Len() {
			chunk.ChunkIndex = int(indexes.Data()[i])
		}
		if sections != nil && i < sections.Len() {
			chunk.SectionTitle = sections.Data()[i]
		}
		chunk.Text = texts.Data()[i]
		chunks = append(chunks, chunk)
	}
	return chunks
}

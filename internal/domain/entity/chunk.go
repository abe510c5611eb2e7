// Package entity 定义领域实体
package entity

// PaperChunk 论文文本分块，存储在向量库中
type PaperChunk struct {
	ID           string  `json:"id"`
	ArxivID      string  `json:"arxiv_id"`
	ChunkIndex   int     `json:"chunk_index"`
	SectionTitle string  `json:"section_title,omitempty"`
	Text         string  `json:"text"`
	// Score 向量检索相似度，仅检索结果携带
	Score float32 `json:"score,omitempty"`
}

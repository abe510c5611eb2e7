// Package entity 定义领域实体
package entity

import (
	"time"
)

// NodeKind 概念节点类型
type NodeKind string

const (
	NodeKindRoot         NodeKind = "root"
	NodeKindProblem      NodeKind = "problem"
	NodeKindApproach     NodeKind = "approach"
	NodeKindConcept      NodeKind = "concept"
	NodeKindFinding      NodeKind = "finding"
	NodeKindLimitation   NodeKind = "limitation"
	NodeKindContribution NodeKind = "contribution"
)

// IsValid 检查节点类型是否合法
func (k NodeKind) IsValid() bool {
	switch k {
	case NodeKindRoot, NodeKindProblem, NodeKindApproach, NodeKindConcept,
		NodeKindFinding, NodeKindLimitation, NodeKindContribution:
		return true
	}
	return false
}

// Importance 节点重要性
type Importance string

const (
	ImportancePrimary   Importance = "primary"
	ImportanceSecondary Importance = "secondary"
	ImportanceTertiary  Importance = "tertiary"
)

// IsValid 检查重要性取值是否合法
func (i Importance) IsValid() bool {
	switch i {
	case ImportancePrimary, ImportanceSecondary, ImportanceTertiary:
		return true
	}
	return false
}

// MindMapNode 脑图概念节点，children 有序
type MindMapNode struct {
	ID            string         `json:"id"`
	Label         string         `json:"label"`
	Description   string         `json:"description,omitempty"`
	Kind          NodeKind       `json:"node_kind"`
	Importance    Importance     `json:"importance"`
	SourceSection string         `json:"source_section,omitempty"`
	Children      []*MindMapNode `json:"children,omitempty"`
}

// MindMap 论文脑图实体
type MindMap struct {
	ArxivID         string       `json:"arxiv_id"`
	Title           string       `json:"title"`
	Root            *MindMapNode `json:"root"`
	SectionsCovered []string     `json:"sections_covered,omitempty"`
	GeneratedAt     time.Time    `json:"generated_at"`
	ModelUsed       string       `json:"model_used,omitempty"`
}

// NodeCount 统计脑图节点总数
func (m *MindMap) NodeCount() int {
	if m == nil || m.Root == nil {
		return 0
	}
	return countNodes(m.Root)
}

func countNodes(n *MindMapNode) int {
	total := 1
	for _, child := range n.Children {
		total += countNodes(child)
	}
	return total
}

// MindMapCacheEntry 脑图缓存条目，由缓存层独占管理
type MindMapCacheEntry struct {
	MindMap      *MindMap  `json:"mindmap"`
	CacheVersion int       `json:"cache_version"`
	HitCount     int       `json:"hit_count"`
	CachedAt     time.Time `json:"cached_at"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// MindMapCacheStatus 脑图缓存状态，只读视图
type MindMapCacheStatus struct {
	Cached       bool          `json:"cached"`
	CacheVersion int           `json:"cache_version,omitempty"`
	HitCount     int           `json:"hit_count,omitempty"`
	CachedAt     *time.Time    `json:"cached_at,omitempty"`
	ExpiresAt    *time.Time    `json:"expires_at,omitempty"`
	TTLRemaining int64         `json:"ttl_remaining_seconds,omitempty"`
}

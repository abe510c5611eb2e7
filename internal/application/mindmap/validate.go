// Package mindmap 实现论文脑图的单键生成与缓存编排
package mindmap

import (
	"fmt"
	"strings"

	"arxiv-digest-api/internal/domain/entity"
)

// ValidateTree 校验脑图树形结构不变量：
//   - 根节点存在且 node_kind 为 root，且是唯一的 root 节点；
//   - 节点 id 全树唯一（同一 id 出现在自身后代中视为环）；
//   - node_kind / importance 取值合法，label 非空。
func ValidateTree(m *entity.MindMap) error {
	if m == nil || m.Root == nil {
		return fmt.Errorf("mindmap has no root node")
	}
	if m.Root.Kind != entity.NodeKindRoot {
		return fmt.Errorf("root node has kind %q, want %q", m.Root.Kind, entity.NodeKindRoot)
	}

	seen := make(map[string]struct{})
	return walkNode(m.Root, true, seen)
}

func walkNode(n *entity.MindMapNode, isRoot bool, seen map[string]struct{}) error {
	if n == nil {
		return fmt.Errorf("nil node in tree")
	}
	if strings.TrimSpace(n.Label) == "" {
		return fmt.Errorf("node %q has empty label", n.ID)
	}
	if !n.Kind.IsValid() {
		return fmt.Errorf("node %q has invalid kind %q", n.ID, n.Kind)
	}
	if !isRoot && n.Kind == entity.NodeKindRoot {
		return fmt.Errorf("non-root node %q has kind root", n.ID)
	}
	if !n.Importance.IsValid() {
		return fmt.Errorf("node %q has invalid importance %q", n.ID, n.Importance)
	}

	id := strings.TrimSpace(n.ID)
	if id == "" {
		return fmt.Errorf("node %q has empty id", n.Label)
	}
	if _, dup := seen[id]; dup {
		return fmt.Errorf("node id %q appears more than once (cycle or duplicate)", id)
	}
	seen[id] = struct{}{}

	for _, child := range n.Children {
		if err := walkNode(child, false, seen); err != nil {
			return err
		}
	}
	return nil
}

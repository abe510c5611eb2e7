package mindmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arxiv-digest-api/internal/domain/entity"
)

func validTree() *entity.MindMap {
	return &entity.MindMap{
		ArxivID: "2401.00001",
		Title:   "T",
		Root: &entity.MindMapNode{
			ID: "n0", Label: "T", Kind: entity.NodeKindRoot, Importance: entity.ImportancePrimary,
			Children: []*entity.MindMapNode{
				{ID: "n1", Label: "Problem", Kind: entity.NodeKindProblem, Importance: entity.ImportanceSecondary},
				{ID: "n2", Label: "Approach", Kind: entity.NodeKindApproach, Importance: entity.ImportanceSecondary,
					Children: []*entity.MindMapNode{
						{ID: "n3", Label: "Detail", Kind: entity.NodeKindConcept, Importance: entity.ImportanceTertiary},
					}},
			},
		},
	}
}

func TestValidateTreeAccepts(t *testing.T) {
	require.NoError(t, ValidateTree(validTree()))
}

func TestValidateTreeRejectsNonRootKindAtRoot(t *testing.T) {
	m := validTree()
	m.Root.Kind = entity.NodeKindConcept

	err := ValidateTree(m)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "root node has kind")
}

func TestValidateTreeRejectsSecondRootKind(t *testing.T) {
	m := validTree()
	m.Root.Children[0].Kind = entity.NodeKindRoot

	assert.Error(t, ValidateTree(m))
}

func TestValidateTreeRejectsSelfDescendant(t *testing.T) {
	m := validTree()
	// n1 的后代中再次出现 n1：环
	m.Root.Children[0].Children = []*entity.MindMapNode{
		{ID: "n1", Label: "Problem again", Kind: entity.NodeKindConcept, Importance: entity.ImportanceTertiary},
	}

	err := ValidateTree(m)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "more than once")
}

func TestValidateTreeRejectsMissingRoot(t *testing.T) {
	assert.Error(t, ValidateTree(nil))
	assert.Error(t, ValidateTree(&entity.MindMap{}))
}

func TestValidateTreeRejectsInvalidEnum(t *testing.T) {
	m := validTree()
	m.Root.Children[0].Importance = "critical"

	assert.Error(t, ValidateTree(m))
}

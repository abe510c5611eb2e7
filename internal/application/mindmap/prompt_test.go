package mindmap

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arxiv-digest-api/internal/domain/entity"
)

func chunk(section, text string, index int) *entity.PaperChunk {
	return &entity.PaperChunk{
		ArxivID:      "2401.00001",
		ChunkIndex:   index,
		SectionTitle: section,
		Text:         text,
	}
}

func TestBuildContentGroupsBySectionInOrder(t *testing.T) {
	chunks := []*entity.PaperChunk{
		chunk("Introduction", "intro-a", 0),
		chunk("Method", "method-a", 1),
		chunk("Introduction", "intro-b", 2),
		chunk("Method", "method-b", 3),
	}

	content, covered := buildContent(chunks, 0)

	assert.Equal(t, []string{"Introduction", "Method"}, covered)
	// 同章节段落聚合且保持段落顺序
	assert.Less(t, strings.Index(content, "intro-a"), strings.Index(content, "intro-b"))
	assert.Less(t, strings.Index(content, "intro-b"), strings.Index(content, "method-a"))
}

func TestBuildContentSkipsBoilerplate(t *testing.T) {
	chunks := []*entity.PaperChunk{
		chunk("Introduction", "intro", 0),
		chunk("References", "[1] someone 2020", 1),
		chunk("Acknowledgements", "thanks", 2),
		chunk("Appendix A", "extra proofs", 3),
	}

	content, covered := buildContent(chunks, 0)

	assert.Equal(t, []string{"Introduction"}, covered)
	assert.NotContains(t, content, "someone 2020")
	assert.NotContains(t, content, "thanks")
	assert.NotContains(t, content, "extra proofs")
}

func TestBuildContentTruncatesAtSectionBoundary(t *testing.T) {
	intro := strings.Repeat("a", 100)
	method := strings.Repeat("b", 100)
	results := strings.Repeat("c", 100)
	chunks := []*entity.PaperChunk{
		chunk("Introduction", intro, 0),
		chunk("Method", method, 1),
		chunk("Results", results, 2),
	}

	// 预算放得下前两个章节，第三个整体放不下
	budget := utf8.RuneCountInString(renderSection(&section{Title: "Introduction", Text: intro})) +
		utf8.RuneCountInString(renderSection(&section{Title: "Method", Text: method})) + 10
	content, covered := buildContent(chunks, budget)

	assert.Equal(t, []string{"Introduction", "Method"}, covered)
	assert.Contains(t, content, intro)
	assert.Contains(t, content, method)
	// 章节不被切开
	assert.NotContains(t, content, "ccc")
}

func TestBuildContentSplitsOnlyOversizedFirstSection(t *testing.T) {
	huge := strings.Repeat("x", 500)
	chunks := []*entity.PaperChunk{
		chunk("Introduction", huge, 0),
		chunk("Method", "method", 1),
	}

	content, covered := buildContent(chunks, 100)

	// 单章节独自超预算时才在章节内部截断
	assert.Equal(t, []string{"Introduction"}, covered)
	assert.LessOrEqual(t, utf8.RuneCountInString(content), 100)
	assert.NotContains(t, content, "method")
}

func TestBuildContentEmptyChunks(t *testing.T) {
	content, covered := buildContent(nil, 1000)

	require.Empty(t, content)
	assert.Empty(t, covered)
}

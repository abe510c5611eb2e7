// Package mindmap 实现论文脑图的单键生成与缓存编排
package mindmap

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"arxiv-digest-api/internal/domain/entity"
	"arxiv-digest-api/internal/workflow/node"
)

// 样板章节不进入提示词
var boilerplateSections = []string{
	"references",
	"acknowledgements",
	"acknowledgments",
	"appendix",
	"funding",
	"bibliography",
	"about the authors",
}

// section 按章节聚合后的内容块
type section struct {
	Title string
	Text  string
}

// buildContent 把分块按章节聚合成提示词内容
// 规则：保持段落原有顺序聚合到所属章节；跳过样板章节；超出字符预算时
// 在最后一个放得下的章节边界截断，仅当单个章节独自超出预算时才截断章节内部。
// 返回内容与实际覆盖到的章节标题。
func buildContent(chunks []*entity.PaperChunk, maxRunes int) (string, []string) {
	sections := groupBySection(chunks)
	if len(sections) == 0 {
		return "", nil
	}

	var (
		sb      strings.Builder
		covered []string
		used    int
	)
	for _, sec := range sections {
		block := renderSection(sec)
		blockRunes := utf8.RuneCountInString(block)

		if maxRunes > 0 && used+blockRunes > maxRunes {
			// 只有首个章节独自超出预算时才切开章节
			if len(covered) == 0 {
				sb.WriteString(node.TruncateByRunes(block, maxRunes))
				covered = append(covered, sec.Title)
			}
			break
		}

		sb.WriteString(block)
		used += blockRunes
		covered = append(covered, sec.Title)
	}

	return strings.TrimRight(sb.String(), "\n"), covered
}

// groupBySection 按章节标签聚合分块，保持段落顺序，跳过样板章节
func groupBySection(chunks []*entity.PaperChunk) []*section {
	var (
		order  []string
		bodies = make(map[string][]string)
	)
	for _, chunk := range chunks {
		title := strings.TrimSpace(chunk.SectionTitle)
		if title == "" {
			title = "Body"
		}
		if isBoilerplate(title) {
			continue
		}
		text := strings.TrimSpace(chunk.Text)
		if text == "" {
			continue
		}
		if _, ok := bodies[title]; !ok {
			order = append(order, title)
		}
		bodies[title] = append(bodies[title], text)
	}

	sections := make([]*section, 0, len(order))
	for _, title := range order {
		sections = append(sections, &section{
			Title: title,
			Text:  strings.Join(bodies[title], "\n\n"),
		})
	}
	return sections
}

func renderSection(sec *section) string {
	return fmt.Sprintf("## %s\n\n%s\n\n", sec.Title, sec.Text)
}

func isBoilerplate(title string) bool {
	lower := strings.ToLower(title)
	for _, b := range boilerplateSections {
		if strings.Contains(lower, b) {
			return true
		}
	}
	return false
}

// mindMapJSONSchema 脑图输出的 JSON Schema，用于 response_format 强约束
func mindMapJSONSchema() map[string]any {
	nodeSchema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"id":          map[string]any{"type": "string"},
			"label":       map[string]any{"type": "string"},
			"description": map[string]any{"type": "string"},
			"node_kind": map[string]any{
				"type": "string",
				"enum": []string{"root", "problem", "approach", "concept", "finding", "limitation", "contribution"},
			},
			"importance": map[string]any{
				"type": "string",
				"enum": []string{"primary", "secondary", "tertiary"},
			},
			"source_section": map[string]any{"type": "string"},
			"children": map[string]any{
				"type":  "array",
				"items": map[string]any{"$ref": "#/$defs/node"},
			},
		},
		"required": []string{"id", "label", "node_kind", "importance"},
	}

	return map[string]any{
		"type": "object",
		"$defs": map[string]any{
			"node": nodeSchema,
		},
		"properties": map[string]any{
			"title": map[string]any{"type": "string"},
			"root":  map[string]any{"$ref": "#/$defs/node"},
			"sections_covered": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
		"required": []string{"title", "root"},
	}
}

// Package handler 提供 HTTP 请求处理器
package handler

import (
	"errors"
	"io"
	"strings"

	"github.com/gin-gonic/gin"

	"arxiv-digest-api/internal/application/answer"
	"arxiv-digest-api/internal/interfaces/http/dto"
)

// AskHandler 论文问答处理器
type AskHandler struct {
	svc *answer.Service
}

// NewAskHandler 创建论文问答处理器
func NewAskHandler(svc *answer.Service) *AskHandler {
	return &AskHandler{svc: svc}
}

// Ask 针对论文提问
// @Summary 针对论文提问
// @Description 在论文范围内做向量检索并生成结构化回答
// @Tags Ask
// @Accept json
// @Produce json
// @Param arxiv_id path string true "arXiv ID"
// @Param body body dto.AskRequest true "问答请求"
// @Success 200 {object} dto.Response[dto.AskResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /v1/papers/{arxiv_id}/ask [post]
func (h *AskHandler) Ask(c *gin.Context) {
	arxivID := strings.TrimSpace(c.Param("arxiv_id"))
	if arxivID == "" {
		dto.BadRequest(c, "arxiv_id is required")
		return
	}

	var req dto.AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "question is required")
		return
	}

	result, err := h.svc.Ask(c.Request.Context(), arxivID, req.Question)
	if err != nil {
		dto.FromAppError(c, err)
		return
	}

	dto.Success(c, dto.AskResponse{ArxivID: arxivID, Result: result})
}

// AskStream 流式针对论文提问
// @Summary 流式针对论文提问
// @Description 通过 SSE 增量返回回答文本，末尾附检索来源
// @Tags Ask
// @Accept json
// @Produce text/event-stream
// @Param arxiv_id path string true "arXiv ID"
// @Param body body dto.AskRequest true "问答请求"
// @Success 200 "SSE stream"
// @Failure 404 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /v1/papers/{arxiv_id}/ask/stream [post]
func (h *AskHandler) AskStream(c *gin.Context) {
	arxivID := strings.TrimSpace(c.Param("arxiv_id"))
	if arxivID == "" {
		dto.BadRequest(c, "arxiv_id is required")
		return
	}

	var req dto.AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "question is required")
		return
	}

	reader, retrieved, err := h.svc.AskStream(c.Request.Context(), arxivID, req.Question)
	if err != nil {
		dto.FromAppError(c, err)
		return
	}
	defer reader.Close()

	// SSE 响应头
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	index := 0
	done := false

	c.Stream(func(w io.Writer) bool {
		if done {
			return false
		}
		select {
		case <-c.Request.Context().Done():
			// 客户端断开
			return false
		default:
		}

		msg, recvErr := reader.Recv()
		if recvErr != nil {
			if !errors.Is(recvErr, io.EOF) {
				c.SSEvent("error", gin.H{"message": recvErr.Error()})
				return false
			}
			// 流结束后补发检索来源
			sources := make([]gin.H, 0, len(retrieved))
			for i, chunk := range retrieved {
				sources = append(sources, gin.H{
					"index":   i + 1,
					"section": chunk.SectionTitle,
				})
			}
			c.SSEvent("sources", gin.H{"items": sources})
			c.SSEvent("done", gin.H{"chunks": index})
			done = true
			return true
		}

		if msg != nil && msg.Content != "" {
			c.SSEvent("content", gin.H{
				"chunk": msg.Content,
				"index": index,
			})
			index++
		}
		return true
	})
}

// Package handler 提供 HTTP 请求处理器
package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"arxiv-digest-api/internal/application/mindmap"
	"arxiv-digest-api/internal/interfaces/http/dto"
)

// MindMapHandler 脑图处理器
type MindMapHandler struct {
	svc *mindmap.Service
}

// NewMindMapHandler 创建脑图处理器
func NewMindMapHandler(svc *mindmap.Service) *MindMapHandler {
	return &MindMapHandler{svc: svc}
}

// Get 获取论文脑图
// @Summary 获取论文脑图
// @Description 缓存命中直接返回，未命中时生成并缓存
// @Tags MindMaps
// @Produce json
// @Param arxiv_id path string true "arXiv ID"
// @Success 200 {object} dto.Response[dto.MindMapResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /v1/papers/{arxiv_id}/mindmap [get]
func (h *MindMapHandler) Get(c *gin.Context) {
	arxivID := strings.TrimSpace(c.Param("arxiv_id"))
	if arxivID == "" {
		dto.BadRequest(c, "arxiv_id is required")
		return
	}

	m, cached, err := h.svc.GetOrGenerate(c.Request.Context(), arxivID)
	if err != nil {
		dto.FromAppError(c, err)
		return
	}

	dto.Success(c, dto.MindMapResponse{MindMap: m, Cached: cached})
}

// Invalidate 删除论文脑图缓存
// @Summary 删除论文脑图缓存
// @Tags MindMaps
// @Produce json
// @Param arxiv_id path string true "arXiv ID"
// @Success 200 {object} dto.Response[dto.MindMapInvalidateResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/papers/{arxiv_id}/mindmap [delete]
func (h *MindMapHandler) Invalidate(c *gin.Context) {
	arxivID := strings.TrimSpace(c.Param("arxiv_id"))
	if arxivID == "" {
		dto.BadRequest(c, "arxiv_id is required")
		return
	}

	existed, err := h.svc.Invalidate(c.Request.Context(), arxivID)
	if err != nil {
		dto.FromAppError(c, err)
		return
	}

	dto.Success(c, dto.MindMapInvalidateResponse{Invalidated: existed})
}

// Status 查询论文脑图缓存状态
// @Summary 查询论文脑图缓存状态
// @Description 只读查询，不触发生成也不累计命中
// @Tags MindMaps
// @Produce json
// @Param arxiv_id path string true "arXiv ID"
// @Success 200 {object} dto.Response[entity.MindMapCacheStatus]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/papers/{arxiv_id}/mindmap/status [get]
func (h *MindMapHandler) Status(c *gin.Context) {
	arxivID := strings.TrimSpace(c.Param("arxiv_id"))
	if arxivID == "" {
		dto.BadRequest(c, "arxiv_id is required")
		return
	}

	status, err := h.svc.CacheStatus(c.Request.Context(), arxivID)
	if err != nil {
		dto.FromAppError(c, err)
		return
	}

	dto.Success(c, status)
}

// Package handler 提供 HTTP 请求处理器
package handler

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"arxiv-digest-api/internal/application/flashcard"
	"arxiv-digest-api/internal/interfaces/http/dto"
)

// FlashcardHandler 闪卡处理器
type FlashcardHandler struct {
	svc *flashcard.Service
}

// NewFlashcardHandler 创建闪卡处理器
func NewFlashcardHandler(svc *flashcard.Service) *FlashcardHandler {
	return &FlashcardHandler{svc: svc}
}

// List 获取分类闪卡
// @Summary 获取分类闪卡
// @Description 返回分类下的新鲜闪卡，不足时批量再生成
// @Tags Flashcards
// @Produce json
// @Param category query string true "arXiv 分类，如 cs.CL"
// @Param limit query int false "返回数量，默认 5，最大 20"
// @Param refresh query bool false "强制再生成"
// @Success 200 {object} dto.Response[dto.FlashcardListResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /v1/flashcards [get]
func (h *FlashcardHandler) List(c *gin.Context) {
	category := strings.TrimSpace(c.Query("category"))
	if category == "" {
		dto.BadRequest(c, "category is required")
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			dto.BadRequest(c, "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	refresh := c.Query("refresh") == "true"

	cards, regenerated, err := h.svc.GetCards(c.Request.Context(), category, limit, refresh)
	if err != nil {
		dto.FromAppError(c, err)
		return
	}

	dto.Success(c, dto.NewFlashcardList(category, cards, regenerated))
}

// CleanupExpired 清理过期闪卡
// @Summary 清理过期闪卡
// @Description 批量删除超出新鲜度窗口的闪卡
// @Tags Flashcards
// @Produce json
// @Param limit query int false "单次删除上限"
// @Success 200 {object} dto.Response[dto.CleanupResponse]
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/flashcards/expired [delete]
func (h *FlashcardHandler) CleanupExpired(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			dto.BadRequest(c, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	deleted, err := h.svc.CleanupExpired(c.Request.Context(), limit)
	if err != nil {
		dto.FromAppError(c, err)
		return
	}

	dto.Success(c, dto.CleanupResponse{Deleted: deleted})
}

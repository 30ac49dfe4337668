package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hwinners/AgenticAIAdvisor/internal/dto"
	"github.com/hwinners/AgenticAIAdvisor/internal/service"
	"github.com/hwinners/AgenticAIAdvisor/pkg/response"
)

// AdvisorHandler 会话顾问模块 HTTP 处理器
type AdvisorHandler struct {
	advisorSvc service.AdvisorService
}

// NewAdvisorHandler 创建 AdvisorHandler
func NewAdvisorHandler(advisorSvc service.AdvisorService) *AdvisorHandler {
	return &AdvisorHandler{advisorSvc: advisorSvc}
}

// Chat 与会话顾问对话，响应可能携带全量状态替换
// POST /api/v1/sessions/:id/chat
func (h *AdvisorHandler) Chat(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 40001, "会话ID不能为空")
		return
	}

	var req dto.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 40002, "参数校验失败")
		return
	}

	reply, err := h.advisorSvc.Chat(c.Request.Context(), id, &req)
	if err != nil {
		h.handleAdvisorError(c, err)
		return
	}

	response.OK(c, reply)
}

// Explain 解释某门课为何排在某学期
// POST /api/v1/sessions/:id/explain
func (h *AdvisorHandler) Explain(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 40001, "会话ID不能为空")
		return
	}

	var req dto.ExplainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 40002, "参数校验失败")
		return
	}

	result, err := h.advisorSvc.Explain(c.Request.Context(), id, &req)
	if err != nil {
		h.handleAdvisorError(c, err)
		return
	}

	response.OK(c, result)
}

// DraftOverride 草拟选课 override 申请邮件
// POST /api/v1/sessions/:id/override-draft
func (h *AdvisorHandler) DraftOverride(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 40001, "会话ID不能为空")
		return
	}

	var req dto.OverrideDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 40002, "参数校验失败")
		return
	}

	result, err := h.advisorSvc.DraftOverride(c.Request.Context(), id, &req)
	if err != nil {
		h.handleAdvisorError(c, err)
		return
	}

	response.OK(c, result)
}

// handleAdvisorError 统一处理顾问模块业务错误
func (h *AdvisorHandler) handleAdvisorError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAdvisorSessionNotFound):
		response.NotFound(c, 41001, "咨询会话不存在")
	case errors.Is(err, service.ErrAdvisorDisabled):
		response.Error(c, http.StatusServiceUnavailable, 41002, "会话顾问未启用")
	case errors.Is(err, service.ErrAdvisorUpstream):
		response.BadGateway(c, 41003, "模型服务调用失败")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/advisor_handler.go

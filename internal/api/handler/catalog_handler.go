package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/hwinners/AgenticAIAdvisor/internal/service"
	"github.com/hwinners/AgenticAIAdvisor/pkg/response"
)

// CatalogHandler 课程目录模块 HTTP 处理器
type CatalogHandler struct {
	catalogSvc service.CatalogService
}

// NewCatalogHandler 创建 CatalogHandler
func NewCatalogHandler(catalogSvc service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogSvc: catalogSvc}
}

// GetCatalog 获取指定专业的分类分组目录
// GET /api/v1/catalog/:majorId
func (h *CatalogHandler) GetCatalog(c *gin.Context) {
	majorID := c.Param("majorId")
	if majorID == "" {
		response.BadRequest(c, 20001, "专业标识不能为空")
		return
	}

	catalog, err := h.catalogSvc.GetCatalog(c.Request.Context(), majorID)
	if err != nil {
		h.handleCatalogError(c, err)
		return
	}

	response.OK(c, catalog)
}

// ImportCatalog 上传 .xlsx 文件整体替换某专业目录
// POST /api/v1/catalog/:majorId/import
func (h *CatalogHandler) ImportCatalog(c *gin.Context) {
	majorID := c.Param("majorId")
	if majorID == "" {
		response.BadRequest(c, 20001, "专业标识不能为空")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, 20002, "缺少上传文件")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		response.BadRequest(c, 20002, "上传文件无法读取")
		return
	}
	defer file.Close()

	result, err := h.catalogSvc.ImportXLSX(c.Request.Context(), majorID, file)
	if err != nil {
		h.handleCatalogError(c, err)
		return
	}

	response.OK(c, result)
}

// handleCatalogError 统一处理目录模块业务错误
func (h *CatalogHandler) handleCatalogError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrMajorUnknown):
		response.NotFound(c, 21001, "未知的目录专业")
	case errors.Is(err, service.ErrCatalogEmptyFile):
		response.BadRequest(c, 21002, "目录文件为空或无有效课程行")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/catalog_handler.go

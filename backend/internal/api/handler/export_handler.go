package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"course-portal/backend/internal/editor"
	"course-portal/backend/internal/service"
	"course-portal/backend/pkg/response"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportSyllabus 导出课程大纲
// GET /api/v1/courses/:id/syllabus/export
func (h *ExportHandler) ExportSyllabus(c *gin.Context) {
	buf, filename, err := h.exportSvc.ExportSyllabus(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	// 设置下载响应头
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, editor.ErrCourseNotFound):
		response.NotFound(c, 17101, "课程不存在")
	case errors.Is(err, service.ErrExportGenerateFail):
		response.Error(c, http.StatusInternalServerError, 17301, "生成 Excel 文件失败")
	default:
		response.BadGateway(c, 17102, "加载课程失败，请重试", "")
	}
}

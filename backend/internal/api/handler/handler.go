package handler

import "course-portal/backend/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Syllabus *SyllabusHandler
	Export   *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Syllabus: NewSyllabusHandler(svc.Syllabus, svc.Editor),
		Export:   NewExportHandler(svc.Export),
	}
}

package service

import (
	"go.uber.org/zap"

	"course-portal/backend/config"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Syllabus SyllabusService
	Editor   EditorService
	Export   ExportService
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	stores StoreFactory,
	logger *zap.Logger,
) *Service {
	syllabusSvc := NewSyllabusService(stores, logger)
	return &Service{
		Syllabus: syllabusSvc,
		Editor:   NewEditorService(stores, cfg.Editor.MaxSlots, cfg.Editor.SessionTTL, logger),
		Export:   NewExportService(syllabusSvc, logger),
	}
}

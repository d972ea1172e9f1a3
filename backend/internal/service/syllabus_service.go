package service

import (
	"context"

	"go.uber.org/zap"

	"course-portal/backend/internal/dto"
	"course-portal/backend/internal/syllabus"
)

// SyllabusService 已保存大纲的只读查询
type SyllabusService interface {
	// GetSaved 读取并规范化课程当前保存的大纲，不创建编辑会话
	GetSaved(ctx context.Context, courseID string) (*dto.SavedSyllabusResponse, error)
}

type syllabusService struct {
	stores StoreFactory
	logger *zap.Logger
}

// NewSyllabusService 创建 SyllabusService 实例
func NewSyllabusService(stores StoreFactory, logger *zap.Logger) SyllabusService {
	return &syllabusService{stores: stores, logger: logger}
}

// ────────────────────── GetSaved ──────────────────────

func (s *syllabusService) GetSaved(ctx context.Context, courseID string) (*dto.SavedSyllabusResponse, error) {
	rec, err := s.stores("").LoadCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	return &dto.SavedSyllabusResponse{
		CourseID:   rec.ID,
		CourseCode: rec.Code,
		CourseName: rec.Name,
		Entries:    syllabus.NormalizeJSON(rec.Syllabus),
	}, nil
}

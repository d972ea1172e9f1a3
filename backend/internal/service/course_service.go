package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"course-portal/backend/internal/dto"
	"course-portal/backend/internal/model"
	"course-portal/backend/internal/repository"
	"course-portal/backend/internal/syllabus"
)

// 课程模块业务错误
var (
	ErrCourseCodeRequired = errors.New("课程代码不能为空")
	ErrCourseNameRequired = errors.New("课程名称不能为空")
	ErrInvalidCredits     = errors.New("学分不能为负数")
)

// CourseService 课程管理（仅数据库存储模式可用）
type CourseService interface {
	List(ctx context.Context) ([]dto.CourseSummary, error)
	Create(ctx context.Context, req *dto.CreateCourseRequest, callerID string) (*dto.CourseSummary, error)
}

type courseService struct {
	courses repository.CourseRepository
	logger  *zap.Logger
}

// NewCourseService 创建 CourseService 实例
func NewCourseService(repo *repository.Repository, logger *zap.Logger) CourseService {
	return &courseService{courses: repo.Course, logger: logger}
}

// ────── List ──────

func (s *courseService) List(ctx context.Context) ([]dto.CourseSummary, error) {
	courses, err := s.courses.List(ctx)
	if err != nil {
		s.logger.Error("查询课程列表失败", zap.Error(err))
		return nil, err
	}

	out := make([]dto.CourseSummary, 0, len(courses))
	for i := range courses {
		out = append(out, toCourseSummary(&courses[i]))
	}
	return out, nil
}

// ────── Create ──────

func (s *courseService) Create(ctx context.Context, req *dto.CreateCourseRequest, callerID string) (*dto.CourseSummary, error) {
	code := strings.TrimSpace(req.Code)
	name := strings.TrimSpace(req.Name)
	switch {
	case code == "":
		return nil, ErrCourseCodeRequired
	case name == "":
		return nil, ErrCourseNameRequired
	case req.Credits < 0:
		return nil, ErrInvalidCredits
	}

	entries := syllabus.NormalizeJSON(req.Syllabus)
	raw, err := json.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("序列化大纲失败: %w", err)
	}

	course := &model.Course{
		Code:     code,
		Name:     name,
		Credits:  req.Credits,
		Syllabus: datatypes.JSON(raw),
	}
	course.CreatedBy = model.Actor(callerID)
	course.UpdatedBy = course.CreatedBy

	if err := s.courses.Create(ctx, course); err != nil {
		s.logger.Error("创建课程失败", zap.String("code", code), zap.Error(err))
		return nil, err
	}

	s.logger.Info("课程已创建",
		zap.String("course_id", course.CourseID),
		zap.String("code", code),
		zap.Int("entries", len(entries)),
	)
	summary := toCourseSummary(course)
	return &summary, nil
}

func toCourseSummary(c *model.Course) dto.CourseSummary {
	return dto.CourseSummary{
		CourseID: c.CourseID,
		Code:     c.Code,
		Name:     c.Name,
		Credits:  c.Credits,
		Entries:  len(syllabus.NormalizeJSON(c.Syllabus)),
		Version:  c.Version,
	}
}

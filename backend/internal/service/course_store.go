package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"course-portal/backend/internal/client"
	"course-portal/backend/internal/editor"
	"course-portal/backend/internal/repository"
	"course-portal/backend/internal/syllabus"
)

// StoreFactory 按操作者创建 editor.Store（数据库实现需要记录 updated_by）
type StoreFactory func(userID string) editor.Store

// DatabaseStores 基于 CourseRepository 的 StoreFactory
func DatabaseStores(repo *repository.Repository, logger *zap.Logger) StoreFactory {
	return func(userID string) editor.Store {
		return &courseStore{courses: repo.Course, userID: userID, logger: logger}
	}
}

// RemoteStores 所有用户共享同一个远程课程 API 客户端
func RemoteStores(api *client.CourseAPI) StoreFactory {
	return func(string) editor.Store { return api }
}

// courseStore 将 courses 表适配为 editor.Store
type courseStore struct {
	courses repository.CourseRepository
	userID  string
	logger  *zap.Logger
}

func (s *courseStore) LoadCourse(ctx context.Context, courseID string) (*editor.CourseRecord, error) {
	// 非法 UUID 直接视为不存在，避免数据库报类型错误
	if _, err := uuid.Parse(courseID); err != nil {
		return nil, editor.ErrCourseNotFound
	}

	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, editor.ErrCourseNotFound
		}
		s.logger.Error("查询课程失败", zap.String("course_id", courseID), zap.Error(err))
		return nil, err
	}

	return &editor.CourseRecord{
		ID:       course.CourseID,
		Code:     course.Code,
		Name:     course.Name,
		Syllabus: json.RawMessage(course.Syllabus),
	}, nil
}

func (s *courseStore) SaveCourse(ctx context.Context, courseID string, entries syllabus.Collection) (*editor.CourseRecord, error) {
	if _, err := uuid.Parse(courseID); err != nil {
		return nil, editor.ErrCourseNotFound
	}
	if entries == nil {
		entries = syllabus.Collection{}
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("序列化大纲失败: %w", err)
	}

	if err := s.courses.UpdateSyllabus(ctx, courseID, datatypes.JSON(raw), s.userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, editor.ErrCourseNotFound
		}
		s.logger.Error("更新课程大纲失败", zap.String("course_id", courseID), zap.Error(err))
		return nil, err
	}

	// 以写入后的记录为准；回读失败时写入已生效，按提交内容返回
	rec, err := s.LoadCourse(ctx, courseID)
	if err != nil {
		s.logger.Warn("大纲已保存，回读课程失败", zap.String("course_id", courseID), zap.Error(err))
		return &editor.CourseRecord{ID: courseID, Syllabus: json.RawMessage(raw)}, nil
	}
	return rec, nil
}

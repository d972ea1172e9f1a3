package editor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"course-portal/backend/internal/syllabus"
)

// ErrCourseNotFound 持久化层找不到课程时返回（由各 Store 实现包装）
var ErrCourseNotFound = errors.New("课程不存在")

// CourseRecord 课程记录，编辑器只读取其中的 syllabus 字段
type CourseRecord struct {
	ID       string
	Code     string
	Name     string
	Syllabus json.RawMessage // 原始 JSON，可能缺失或格式错误，由 Controller 规范化
}

// Store 编辑器依赖的持久化接口：整条读取课程、整体替换大纲
type Store interface {
	LoadCourse(ctx context.Context, courseID string) (*CourseRecord, error)
	SaveCourse(ctx context.Context, courseID string, entries syllabus.Collection) (*CourseRecord, error)
}

// LoadError 加载课程失败
type LoadError struct {
	CourseID string
	Err      error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("加载课程 %s 失败: %v", e.CourseID, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// SaveError 保存大纲失败，本地 draft 保持不变
type SaveError struct {
	CourseID string
	Err      error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("保存课程 %s 大纲失败: %v", e.CourseID, e.Err)
}

func (e *SaveError) Unwrap() error { return e.Err }

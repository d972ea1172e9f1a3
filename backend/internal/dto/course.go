package dto

import "encoding/json"

// CreateCourseRequest 新建课程（运维初始化数据）
type CreateCourseRequest struct {
	Code     string          `json:"code"`
	Name     string          `json:"name"`
	Credits  float64         `json:"credits"`
	Syllabus json.RawMessage `json:"syllabus,omitempty"` // 可选，写入前规范化
}

// CourseSummary 课程概要
type CourseSummary struct {
	CourseID string  `json:"course_id"`
	Code     string  `json:"code"`
	Name     string  `json:"name"`
	Credits  float64 `json:"credits"`
	Entries  int     `json:"entries"` // 规范化后的大纲条目数
	Version  int     `json:"version"`
}

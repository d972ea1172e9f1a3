package model

import "gorm.io/datatypes"

// Course 课程表，对应 courses
// Syllabus 以 JSONB 存储 [{week, topic}]，历史数据可能格式不规范，读取方需自行规范化
type Course struct {
	CourseID string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"course_id"`
	Code     string         `gorm:"type:varchar(32);not null"                      json:"code"`
	Name     string         `gorm:"type:varchar(200);not null"                     json:"name"`
	Credits  float64        `gorm:"type:numeric(4,1);not null;default:0"           json:"credits"`
	Syllabus datatypes.JSON `gorm:"type:jsonb;not null;default:'[]'"               json:"syllabus"`
	AuditModel
}

// TableName 指定表名
func (Course) TableName() string { return "courses" }

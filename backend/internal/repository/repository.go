package repository

import (
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	Course CourseRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		Course: NewCourseRepo(db),
	}
}

// WithCache 为课程读取启用缓存；cache 为 nil 或 ttl<=0 时保持原样
func (r *Repository) WithCache(cache Cache, ttl time.Duration, logger *zap.Logger) *Repository {
	if cache == nil || ttl <= 0 {
		return r
	}
	return &Repository{
		Course: NewCachedCourseRepo(r.Course, cache, ttl, logger),
	}
}

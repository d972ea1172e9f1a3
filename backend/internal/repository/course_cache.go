package repository

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"course-portal/backend/internal/model"
)

const courseCachePrefix = "course:"

// Cache 课程缓存依赖的最小接口（*redis.Client 实现）
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// cachedCourseRepo 旁路缓存：读优先走缓存，写库成功后删除缓存，删除失败时覆盖为最新记录。
// 缓存故障只记录日志，不影响主流程。
type cachedCourseRepo struct {
	CourseRepository
	cache  Cache
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedCourseRepo 为 CourseRepository 增加缓存
func NewCachedCourseRepo(inner CourseRepository, cache Cache, ttl time.Duration, logger *zap.Logger) CourseRepository {
	return &cachedCourseRepo{CourseRepository: inner, cache: cache, ttl: ttl, logger: logger}
}

func (r *cachedCourseRepo) GetByID(ctx context.Context, id string) (*model.Course, error) {
	key := courseCachePrefix + id

	if b, ok, err := r.cache.Get(ctx, key); err != nil {
		r.logger.Warn("读取课程缓存失败", zap.String("course_id", id), zap.Error(err))
	} else if ok {
		var course model.Course
		if err := json.Unmarshal(b, &course); err == nil {
			return &course, nil
		}
		r.logger.Warn("课程缓存数据损坏，已忽略", zap.String("course_id", id))
	}

	course, err := r.CourseRepository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if b, err := json.Marshal(course); err == nil {
		if err := r.cache.Set(ctx, key, b, r.ttl); err != nil {
			r.logger.Warn("写入课程缓存失败", zap.String("course_id", id), zap.Error(err))
		}
	}
	return course, nil
}

func (r *cachedCourseRepo) UpdateSyllabus(ctx context.Context, id string, syllabus datatypes.JSON, updatedBy string) error {
	if err := r.CourseRepository.UpdateSyllabus(ctx, id, syllabus, updatedBy); err != nil {
		return err
	}
	if err := r.cache.Delete(ctx, courseCachePrefix+id); err != nil {
		r.logger.Warn("删除课程缓存失败，改为覆盖写入", zap.String("course_id", id), zap.Error(err))
		r.refresh(ctx, id)
	}
	return nil
}

// refresh 用数据库中的最新记录覆盖缓存；仍失败时旧数据最多保留 ttl
func (r *cachedCourseRepo) refresh(ctx context.Context, id string) {
	course, err := r.CourseRepository.GetByID(ctx, id)
	if err != nil {
		r.logger.Error("回读课程失败，缓存可能过期", zap.String("course_id", id), zap.Duration("ttl", r.ttl), zap.Error(err))
		return
	}
	b, err := json.Marshal(course)
	if err != nil {
		return
	}
	if err := r.cache.Set(ctx, courseCachePrefix+id, b, r.ttl); err != nil {
		r.logger.Error("覆盖课程缓存失败，缓存可能过期", zap.String("course_id", id), zap.Duration("ttl", r.ttl), zap.Error(err))
	}
}

package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"course-portal/backend/internal/model"
)

// ── Mock CourseRepository ──

type mockCourseRepo struct {
	courses map[string]*model.Course
	gets    int
}

func (m *mockCourseRepo) Create(_ context.Context, c *model.Course) error {
	m.courses[c.CourseID] = c
	return nil
}

func (m *mockCourseRepo) GetByID(_ context.Context, id string) (*model.Course, error) {
	m.gets++
	if c, ok := m.courses[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCourseRepo) List(_ context.Context) ([]model.Course, error) {
	var out []model.Course
	for _, c := range m.courses {
		out = append(out, *c)
	}
	return out, nil
}

func (m *mockCourseRepo) UpdateSyllabus(_ context.Context, id string, s datatypes.JSON, _ string) error {
	c, ok := m.courses[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c.Syllabus = s
	return nil
}

// ── Mock Cache ──

type mockCache struct {
	data   map[string][]byte
	getErr error
	delErr error
}

func (m *mockCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	b, ok := m.data[key]
	return b, ok, nil
}

func (m *mockCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.data[key] = value
	return nil
}

func (m *mockCache) Delete(_ context.Context, keys ...string) error {
	if m.delErr != nil {
		return m.delErr
	}
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func setupCached() (CourseRepository, *mockCourseRepo, *mockCache) {
	inner := &mockCourseRepo{courses: map[string]*model.Course{
		"c1": {CourseID: "c1", Code: "CS101", Name: "程序设计", Syllabus: datatypes.JSON(`[{"week":1,"topic":"A"}]`)},
	}}
	cache := &mockCache{data: make(map[string][]byte)}
	return NewCachedCourseRepo(inner, cache, time.Minute, zap.NewNop()), inner, cache
}

func TestCachedCourseRepo_GetByID_CachesResult(t *testing.T) {
	repo, inner, cache := setupCached()

	for i := 0; i < 3; i++ {
		c, err := repo.GetByID(context.Background(), "c1")
		if err != nil {
			t.Fatalf("GetByID 应成功: %v", err)
		}
		if c.Code != "CS101" {
			t.Errorf("期望 Code=CS101，实际=%s", c.Code)
		}
	}
	if inner.gets != 1 {
		t.Errorf("期望只查询数据库 1 次，实际=%d", inner.gets)
	}
	if _, ok := cache.data["course:c1"]; !ok {
		t.Error("期望写入缓存 course:c1")
	}
}

func TestCachedCourseRepo_UpdateInvalidates(t *testing.T) {
	repo, inner, cache := setupCached()
	ctx := context.Background()
	repo.GetByID(ctx, "c1")

	if err := repo.UpdateSyllabus(ctx, "c1", datatypes.JSON(`[]`), "u1"); err != nil {
		t.Fatalf("UpdateSyllabus 应成功: %v", err)
	}
	if _, ok := cache.data["course:c1"]; ok {
		t.Error("更新后应删除缓存")
	}

	c, _ := repo.GetByID(ctx, "c1")
	if string(c.Syllabus) != `[]` {
		t.Errorf("更新后应读到新大纲，实际=%s", c.Syllabus)
	}
	if inner.gets != 2 {
		t.Errorf("缓存失效后应重新查询数据库，实际查询次数=%d", inner.gets)
	}
}

func TestCachedCourseRepo_UpdateOverwritesWhenDeleteFails(t *testing.T) {
	repo, _, cache := setupCached()
	ctx := context.Background()
	repo.GetByID(ctx, "c1")
	cache.delErr = errors.New("redis timeout")

	if err := repo.UpdateSyllabus(ctx, "c1", datatypes.JSON(`[{"week":2,"topic":"B"}]`), "u1"); err != nil {
		t.Fatalf("缓存故障不应影响更新: %v", err)
	}

	c, err := repo.GetByID(ctx, "c1")
	if err != nil {
		t.Fatalf("GetByID 应成功: %v", err)
	}
	if string(c.Syllabus) != `[{"week":2,"topic":"B"}]` {
		t.Errorf("删除缓存失败时应覆盖为新大纲，实际=%s", c.Syllabus)
	}
}

func TestCachedCourseRepo_CacheFailureFallsBack(t *testing.T) {
	repo, _, cache := setupCached()
	cache.getErr = errors.New("redis down")

	if _, err := repo.GetByID(context.Background(), "c1"); err != nil {
		t.Errorf("缓存故障时应回退数据库: %v", err)
	}
}

func TestCachedCourseRepo_NotFoundNotCached(t *testing.T) {
	repo, _, cache := setupCached()

	_, err := repo.GetByID(context.Background(), "missing")
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("期望 ErrRecordNotFound，实际=%v", err)
	}
	if len(cache.data) != 0 {
		t.Error("不存在的课程不应写入缓存")
	}
}

func TestCachedCourseRepo_CreateAndListPassThrough(t *testing.T) {
	repo, inner, cache := setupCached()
	ctx := context.Background()

	if err := repo.Create(ctx, &model.Course{CourseID: "c2", Code: "MA201", Name: "线性代数"}); err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if _, ok := inner.courses["c2"]; !ok {
		t.Error("Create 应写入底层仓储")
	}

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if len(list) != 2 {
		t.Errorf("期望 2 门课程，实际=%d", len(list))
	}
	if len(cache.data) != 0 {
		t.Error("Create/List 不应写入缓存")
	}
}

func TestRepository_WithCache(t *testing.T) {
	inner := &mockCourseRepo{courses: map[string]*model.Course{}}
	base := &Repository{Course: inner}

	if got := base.WithCache(nil, time.Minute, zap.NewNop()); got != base {
		t.Error("cache 为 nil 时应返回原聚合")
	}
	if got := base.WithCache(&mockCache{}, 0, zap.NewNop()); got != base {
		t.Error("ttl 为 0 时应返回原聚合")
	}
	if got := base.WithCache(&mockCache{data: map[string][]byte{}}, time.Minute, zap.NewNop()); got.Course == inner {
		t.Error("启用缓存后应包装课程仓储")
	}
}

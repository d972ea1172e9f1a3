package service

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"course-portal/backend/internal/editor"
	"course-portal/backend/internal/model"
	"course-portal/backend/internal/syllabus"
)

const (
	testCourseID = "6f1c2f0e-2b1a-4d9e-9a57-0d6a4c3b2e10"
	testUserID   = "1b4e28ba-2fa1-11d2-883f-0016d3cca427"
)

// ── Mock CourseRepository ──

type mockCourseRepo struct {
	mu        sync.Mutex
	courses   map[string]*model.Course
	updatedBy string
	updateErr error
	getErr    error
	createErr error
}

func newMockCourseRepo() *mockCourseRepo {
	return &mockCourseRepo{courses: make(map[string]*model.Course)}
}

func (m *mockCourseRepo) Create(_ context.Context, c *model.Course) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	// 模拟数据库默认值
	if c.CourseID == "" {
		c.CourseID = uuid.New().String()
	}
	if c.Version == 0 {
		c.Version = 1
	}
	cp := *c
	m.courses[c.CourseID] = &cp
	return nil
}

func (m *mockCourseRepo) GetByID(_ context.Context, id string) (*model.Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	if c, ok := m.courses[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCourseRepo) List(_ context.Context) ([]model.Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	out := make([]model.Course, 0, len(m.courses))
	for _, c := range m.courses {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (m *mockCourseRepo) UpdateSyllabus(_ context.Context, id string, s datatypes.JSON, updatedBy string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	c, ok := m.courses[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c.Syllabus = s
	c.Version++
	m.updatedBy = updatedBy
	return nil
}

// ── Mock editor.Store ──

type mockStore struct {
	mu        sync.Mutex
	records   map[string]*editor.CourseRecord
	loadErr   error
	saveErr   error
	loads     int
	saved     []syllabus.Collection
	saveGate  chan struct{}
	saveEnter chan struct{}
}

func newMockStore() *mockStore {
	return &mockStore{records: make(map[string]*editor.CourseRecord)}
}

func (m *mockStore) put(id, code, name, raw string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[id] = &editor.CourseRecord{ID: id, Code: code, Name: name, Syllabus: []byte(raw)}
}

func (m *mockStore) LoadCourse(_ context.Context, courseID string) (*editor.CourseRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loads++
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	rec, ok := m.records[courseID]
	if !ok {
		return nil, editor.ErrCourseNotFound
	}
	cp := *rec
	return &cp, nil
}

func (m *mockStore) SaveCourse(_ context.Context, courseID string, entries syllabus.Collection) (*editor.CourseRecord, error) {
	if m.saveEnter != nil {
		m.saveEnter <- struct{}{}
	}
	if m.saveGate != nil {
		<-m.saveGate
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return nil, m.saveErr
	}
	m.saved = append(m.saved, entries.Clone())
	rec, ok := m.records[courseID]
	if !ok {
		return nil, errors.New("course missing")
	}
	return rec, nil
}

func (m *mockStore) factory() StoreFactory {
	return func(string) editor.Store { return m }
}

package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"course-portal/backend/internal/editor"
	"course-portal/backend/internal/model"
	"course-portal/backend/internal/repository"
	"course-portal/backend/internal/syllabus"
)

func setupCourseStore() (editor.Store, *mockCourseRepo) {
	courses := newMockCourseRepo()
	courses.courses[testCourseID] = &model.Course{
		CourseID: testCourseID,
		Code:     "CS101",
		Name:     "程序设计",
		Syllabus: datatypes.JSON(`[{"week":2,"topic":"B"},{"week":1,"topic":"A"}]`),
	}
	stores := DatabaseStores(&repository.Repository{Course: courses}, zap.NewNop())
	return stores(testUserID), courses
}

func TestCourseStore_LoadCourse(t *testing.T) {
	store, _ := setupCourseStore()

	rec, err := store.LoadCourse(context.Background(), testCourseID)
	if err != nil {
		t.Fatalf("LoadCourse 应成功: %v", err)
	}
	if rec.Code != "CS101" || rec.Name != "程序设计" {
		t.Errorf("课程信息错误: %+v", rec)
	}
	if got := syllabus.NormalizeJSON(rec.Syllabus); len(got) != 2 || got[0].Week != 1 {
		t.Errorf("syllabus 应原样返回供规范化，实际=%s", rec.Syllabus)
	}
}

func TestCourseStore_LoadCourse_NotFound(t *testing.T) {
	store, _ := setupCourseStore()

	tests := []string{"not-a-uuid", "00000000-0000-0000-0000-000000000000"}
	for _, id := range tests {
		if _, err := store.LoadCourse(context.Background(), id); !errors.Is(err, editor.ErrCourseNotFound) {
			t.Errorf("id=%s 期望 ErrCourseNotFound，实际=%v", id, err)
		}
	}
}

func TestCourseStore_SaveCourse(t *testing.T) {
	store, courses := setupCourseStore()

	entries := syllabus.Collection{{Week: 4, Topic: "D"}}
	rec, err := store.SaveCourse(context.Background(), testCourseID, entries)
	if err != nil {
		t.Fatalf("SaveCourse 应成功: %v", err)
	}
	if !syllabus.Equal(syllabus.NormalizeJSON(rec.Syllabus), entries) {
		t.Errorf("保存后应返回新大纲，实际=%s", rec.Syllabus)
	}
	if courses.updatedBy != testUserID {
		t.Errorf("期望记录操作者 %s，实际=%s", testUserID, courses.updatedBy)
	}
}

func TestCourseStore_SaveCourse_EmptyWritesArray(t *testing.T) {
	store, courses := setupCourseStore()

	if _, err := store.SaveCourse(context.Background(), testCourseID, nil); err != nil {
		t.Fatalf("SaveCourse 应成功: %v", err)
	}
	if got := string(courses.courses[testCourseID].Syllabus); got != "[]" {
		t.Errorf("空大纲应写入 []，实际=%s", got)
	}
}

func TestCourseStore_SaveCourse_Failure(t *testing.T) {
	store, courses := setupCourseStore()
	courses.updateErr = errors.New("connection reset")

	if _, err := store.SaveCourse(context.Background(), testCourseID, syllabus.Collection{}); err == nil {
		t.Error("数据库失败时应返回错误")
	}
}

func TestCourseStore_SaveCourse_RereadFailureStillSucceeds(t *testing.T) {
	store, courses := setupCourseStore()
	courses.getErr = errors.New("read timeout")

	entries := syllabus.Collection{{Week: 1, Topic: "A"}, {Week: 3, Topic: "C"}}
	rec, err := store.SaveCourse(context.Background(), testCourseID, entries)
	if err != nil {
		t.Fatalf("写入已生效时不应返回错误: %v", err)
	}
	if rec.ID != testCourseID || !syllabus.Equal(syllabus.NormalizeJSON(rec.Syllabus), entries) {
		t.Errorf("回读失败时应返回提交的大纲，实际=%+v", rec)
	}
	if got := syllabus.NormalizeJSON(courses.courses[testCourseID].Syllabus); !syllabus.Equal(got, entries) {
		t.Errorf("数据库应已写入新大纲，实际=%v", got)
	}
}

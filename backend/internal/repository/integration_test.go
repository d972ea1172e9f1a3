//go:build integration

package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"course-portal/backend/internal/model"
	"course-portal/backend/internal/repository"
)

// ═══════════════════════════════════════════════════════════
// Test Setup
// ═══════════════════════════════════════════════════════════

var testDB *gorm.DB

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = "host=localhost port=5433 user=course_portal password=course_portal_password dbname=course_portal_test sslmode=disable TimeZone=UTC"
	}

	var err error
	testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "无法连接测试数据库: %v\n", err)
		os.Exit(1)
	}

	if err := testDB.AutoMigrate(&model.Course{}); err != nil {
		fmt.Fprintf(os.Stderr, "AutoMigrate 失败: %v\n", err)
		os.Exit(1)
	}

	os.Exit(m.Run())
}

func createTestCourse(t *testing.T, syllabus string) *model.Course {
	t.Helper()
	course := &model.Course{
		Code:     fmt.Sprintf("T%d", time.Now().UnixNano()%1_000_000_000),
		Name:     "集成测试课程",
		Syllabus: datatypes.JSON(syllabus),
	}
	if err := repository.NewCourseRepo(testDB).Create(context.Background(), course); err != nil {
		t.Fatalf("创建课程失败: %v", err)
	}
	t.Cleanup(func() {
		testDB.Unscoped().Delete(&model.Course{}, "course_id = ?", course.CourseID)
	})
	return course
}

// ═══════════════════════════════════════════════════════════
// CourseRepository
// ═══════════════════════════════════════════════════════════

func TestCourseRepo_UpdateSyllabus_FullReplace(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewCourseRepo(testDB)
	course := createTestCourse(t, `[{"week":1,"topic":"A"},{"week":2,"topic":"B"}]`)

	if err := repo.UpdateSyllabus(ctx, course.CourseID, datatypes.JSON(`[{"week":3,"topic":"C"}]`), ""); err != nil {
		t.Fatalf("UpdateSyllabus 应成功: %v", err)
	}

	got, err := repo.GetByID(ctx, course.CourseID)
	if err != nil {
		t.Fatalf("GetByID 应成功: %v", err)
	}
	if string(got.Syllabus) != `[{"week": 3, "topic": "C"}]` && string(got.Syllabus) != `[{"week":3,"topic":"C"}]` {
		t.Errorf("期望大纲被整体替换，实际=%s", got.Syllabus)
	}
	if got.Version != course.Version+1 {
		t.Errorf("期望版本号 +1，实际=%d", got.Version)
	}
}

func TestCourseRepo_UpdateSyllabus_NotFound(t *testing.T) {
	repo := repository.NewCourseRepo(testDB)

	err := repo.UpdateSyllabus(context.Background(), "00000000-0000-0000-0000-000000000000", datatypes.JSON(`[]`), "")
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("期望 ErrRecordNotFound，实际=%v", err)
	}
}

func TestCourseRepo_Create_FillsDefaults(t *testing.T) {
	course := createTestCourse(t, `[]`)

	if course.CourseID == "" {
		t.Error("Create 后应回填数据库生成的 course_id")
	}
	got, err := repository.NewCourseRepo(testDB).GetByID(context.Background(), course.CourseID)
	if err != nil {
		t.Fatalf("GetByID 应成功: %v", err)
	}
	if got.Version != 1 {
		t.Errorf("新课程版本期望 1，实际=%d", got.Version)
	}
}

func TestCourseRepo_List_OrderedByCode(t *testing.T) {
	createTestCourse(t, `[]`)
	createTestCourse(t, `[]`)

	list, err := repository.NewCourseRepo(testDB).List(context.Background())
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if len(list) < 2 {
		t.Fatalf("期望至少 2 门课程，实际=%d", len(list))
	}
	for i := 1; i < len(list); i++ {
		if list[i-1].Code > list[i].Code {
			t.Errorf("结果应按代码升序: %s > %s", list[i-1].Code, list[i].Code)
		}
	}
}

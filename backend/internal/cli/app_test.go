package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"

	"course-portal/backend/config"
	"course-portal/backend/internal/dto"
	"course-portal/backend/internal/syllabus"
	"course-portal/backend/pkg/jwt"
)

func init() {
	color.NoColor = true
}

func runApp(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	app := NewApp()
	app.SetOutput(&out, &errOut)
	app.SetArgs(args)
	err := app.Execute()
	return out.String(), errOut.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("写入测试文件失败: %v", err)
	}
	return path
}

// ── normalize ──

func TestNormalize_ReportsDropped(t *testing.T) {
	path := writeFile(t, "s.json", `[{"week":3,"topic":"C"},{"week":1,"topic":" A "},{"week":1,"topic":"dup"},{"week":0,"topic":"X"}]`)

	out, errOut, err := runApp(t, "normalize", path)
	if err != nil {
		t.Fatalf("normalize 应成功: %v", err)
	}

	var got syllabus.Collection
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("输出应为 JSON: %v\n%s", err, out)
	}
	want := syllabus.Collection{{Week: 1, Topic: "A"}, {Week: 3, Topic: "C"}}
	if !syllabus.Equal(got, want) {
		t.Errorf("期望 %+v，实际=%+v", want, got)
	}
	if !strings.Contains(errOut, "丢弃 2 条") {
		t.Errorf("应报告丢弃条目数，实际=%q", errOut)
	}
}

func TestNormalize_Check(t *testing.T) {
	valid := writeFile(t, "ok.json", `[{"week":1,"topic":"A"}]`)
	if _, _, err := runApp(t, "normalize", valid, "--check"); err != nil {
		t.Errorf("全部有效时 --check 应通过: %v", err)
	}

	invalid := writeFile(t, "bad.json", `[{"week":"x","topic":"A"}]`)
	if _, _, err := runApp(t, "normalize", invalid, "--check"); !errors.Is(err, ErrEntriesDropped) {
		t.Errorf("期望 ErrEntriesDropped，实际=%v", err)
	}

	notArray := writeFile(t, "obj.json", `{"week":1}`)
	out, _, err := runApp(t, "normalize", notArray, "--check")
	if !errors.Is(err, ErrEntriesDropped) {
		t.Errorf("非数组输入 --check 期望失败，实际=%v", err)
	}
	if strings.TrimSpace(out) != "[]" {
		t.Errorf("非数组输入应输出 []，实际=%q", out)
	}
}

func TestNormalize_MissingFile(t *testing.T) {
	if _, _, err := runApp(t, "normalize", filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("文件不存在时应返回错误")
	}
}

// ── token ──

func TestToken_RoundTrip(t *testing.T) {
	cfgPath := writeFile(t, "config.yaml", `
auth:
  jwt_secret: "cli-test-secret-0123456789"
  issuer: "course-portal"
log:
  level: "error"
`)
	userID := "1b4e28ba-2fa1-11d2-883f-0016d3cca427"

	out, _, err := runApp(t, "token", "--config", cfgPath, "--user", userID, "--role", "student", "--ttl", "5m")
	if err != nil {
		t.Fatalf("token 应成功: %v", err)
	}

	mgr := jwt.NewManager(&config.AuthConfig{JWTSecret: "cli-test-secret-0123456789", Issuer: "course-portal"})
	claims, err := mgr.ParseToken(strings.TrimSpace(out))
	if err != nil {
		t.Fatalf("签发的令牌应可解析: %v", err)
	}
	if claims.UserID != userID || claims.Role != jwt.RoleStudent {
		t.Errorf("Claims 错误: %+v", claims)
	}
}

func TestToken_InvalidArgs(t *testing.T) {
	tests := [][]string{
		{"token", "--role", "teacher"},
		{"token", "--user", "not-a-uuid"},
	}
	for _, args := range tests {
		if _, _, err := runApp(t, args...); err == nil {
			t.Errorf("%v 应返回错误", args)
		}
	}
}

// ── course ──

func TestCourse_RemoteStoreRejected(t *testing.T) {
	cfgPath := writeFile(t, "config.yaml", `
auth:
  jwt_secret: "cli-test-secret-0123456789"
log:
  level: "error"
editor:
  store: "remote"
  remote:
    base_url: "http://portal.invalid/api"
`)

	for _, args := range [][]string{
		{"course", "list", "--config", cfgPath},
		{"course", "add", "--config", cfgPath, "--code", "CS101", "--name", "程序设计"},
	} {
		if _, _, err := runApp(t, args...); !errors.Is(err, ErrRemoteStore) {
			t.Errorf("%v 期望 ErrRemoteStore，实际=%v", args, err)
		}
	}
}

func TestCourseAdd_InvalidArgs(t *testing.T) {
	tests := [][]string{
		{"course", "add", "--name", "程序设计"},
		{"course", "add", "--code", "CS101", "--name", "程序设计", "--created-by", "not-a-uuid"},
		{"course", "add", "--code", "CS101", "--name", "程序设计", "--syllabus", filepath.Join(t.TempDir(), "missing.json")},
	}
	for _, args := range tests {
		if _, _, err := runApp(t, args...); err == nil {
			t.Errorf("%v 应返回错误", args)
		}
	}
}

func TestPrintCourses(t *testing.T) {
	var out bytes.Buffer
	app := NewApp()
	app.SetOutput(&out, &out)

	app.printCourses(nil)
	if !strings.Contains(out.String(), "暂无课程") {
		t.Errorf("无课程时应提示，实际=%q", out.String())
	}

	out.Reset()
	app.printCourses([]dto.CourseSummary{
		{CourseID: "6f1c2f0e-2b1a-4d9e-9a57-0d6a4c3b2e10", Code: "CS101", Name: "程序设计", Credits: 3, Entries: 12, Version: 4},
	})
	for _, want := range []string{"CS101", "程序设计", "3.0", "12", "6f1c2f0e-2b1a-4d9e-9a57-0d6a4c3b2e10"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("输出应包含 %q，实际=%q", want, out.String())
		}
	}
}

// ── version ──

func TestVersion(t *testing.T) {
	out, _, err := runApp(t, "version")
	if err != nil {
		t.Fatalf("version 应成功: %v", err)
	}
	if !strings.HasPrefix(out, "syllabusctl dev") {
		t.Errorf("版本输出错误: %q", out)
	}
}

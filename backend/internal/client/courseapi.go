package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"go.uber.org/zap"

	"course-portal/backend/internal/editor"
	"course-portal/backend/internal/syllabus"
)

// maxResponseBytes 单次响应体读取上限
const maxResponseBytes = 4 << 20

// APIError 远程课程 API 返回非 2xx
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("课程 API 返回 HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("课程 API 返回 HTTP %d: %s", e.StatusCode, e.Message)
}

// CourseAPI 通过 HTTP 读写远程课程服务，实现 editor.Store
//
//	GET   {base}/courses/{id}
//	PATCH {base}/courses/{id}   body: {"syllabus":[...]}
//
// 响应体既可以是课程对象本身，也可以是 {"data": 课程对象} 信封。
type CourseAPI struct {
	baseURL string
	token   string
	http    *http.Client
	logger  *zap.Logger
}

// NewCourseAPI 创建远程课程 API 客户端
func NewCourseAPI(baseURL, token string, timeout time.Duration, logger *zap.Logger) *CourseAPI {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseAPI{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

var _ editor.Store = (*CourseAPI)(nil)

// ────────────────────── LoadCourse ──────────────────────

func (a *CourseAPI) LoadCourse(ctx context.Context, courseID string) (*editor.CourseRecord, error) {
	body, err := a.do(ctx, http.MethodGet, courseID, nil)
	if err != nil {
		return nil, err
	}
	return parseCourse(courseID, body)
}

// ────────────────────── SaveCourse ──────────────────────

func (a *CourseAPI) SaveCourse(ctx context.Context, courseID string, entries syllabus.Collection) (*editor.CourseRecord, error) {
	if entries == nil {
		entries = syllabus.Collection{}
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("序列化大纲失败: %w", err)
	}
	payload, err := sjson.SetRawBytes([]byte(`{}`), "syllabus", raw)
	if err != nil {
		return nil, fmt.Errorf("构造请求体失败: %w", err)
	}

	body, err := a.do(ctx, http.MethodPatch, courseID, payload)
	if err != nil {
		return nil, err
	}

	// 部分服务 PATCH 返回 204 或空对象，此时以提交的内容为准
	rec, err := parseCourse(courseID, body)
	if err != nil || len(rec.Syllabus) == 0 {
		return &editor.CourseRecord{ID: courseID, Syllabus: raw}, nil
	}
	return rec, nil
}

// ── 内部方法 ──

func (a *CourseAPI) do(ctx context.Context, method, courseID string, payload []byte) ([]byte, error) {
	endpoint := a.baseURL + "/courses/" + url.PathEscape(courseID)

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("创建请求失败: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}

	start := time.Now()
	resp, err := a.http.Do(req)
	if err != nil {
		a.logger.Warn("请求课程 API 失败",
			zap.String("method", method),
			zap.String("course_id", courseID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("请求课程 API 失败: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("读取课程 API 响应失败: %w", err)
	}

	a.logger.Debug("课程 API 请求完成",
		zap.String("method", method),
		zap.String("course_id", courseID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, editor.ErrCourseNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    gjson.GetBytes(body, "message").String(),
		}
	}
	return body, nil
}

func parseCourse(courseID string, body []byte) (*editor.CourseRecord, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("课程 API 响应不是合法 JSON")
	}
	doc := gjson.ParseBytes(body)
	if data := doc.Get("data"); data.IsObject() {
		doc = data
	}
	if !doc.IsObject() {
		return nil, fmt.Errorf("课程 API 响应缺少课程对象")
	}

	rec := &editor.CourseRecord{
		ID:   courseID,
		Code: doc.Get("code").String(),
		Name: doc.Get("name").String(),
	}
	if id := doc.Get("course_id"); id.Exists() {
		rec.ID = id.String()
	} else if id := doc.Get("id"); id.Exists() {
		rec.ID = id.String()
	}
	// syllabus 原样交给编辑器规范化，缺失时保持 nil
	if s := doc.Get("syllabus"); s.Exists() {
		rec.Syllabus = json.RawMessage(s.Raw)
	}
	return rec, nil
}

package dto

import (
	"encoding/json"

	"github.com/tidwall/gjson"

	"course-portal/backend/internal/editor"
	"course-portal/backend/internal/syllabus"
)

// ── 课程大纲模块 DTO ──

// ModalInputRequest 新增/编辑表单输入
// week 接受数字或数字字符串；无法解析时按 0 处理，由编辑器给出 InvalidWeek 提示
type ModalInputRequest struct {
	Week  json.RawMessage `json:"week"`
	Topic string          `json:"topic"`
}

// ParsedWeek 解析表单周次，非法输入返回 0
func (r *ModalInputRequest) ParsedWeek() int {
	v := gjson.ParseBytes(r.Week)
	var s string
	switch v.Type {
	case gjson.Number:
		s = v.Raw
	case gjson.String:
		s = v.Str
	default:
		return 0
	}
	week, err := syllabus.ParseWeek(s)
	if err != nil {
		return 0
	}
	return week
}

// MoveEntryRequest 移动条目请求参数
type MoveEntryRequest struct {
	Direction string `form:"direction" binding:"required"`
}

// ConfirmRequest 破坏性操作的确认参数
type ConfirmRequest struct {
	Confirm bool `form:"confirm"`
}

// ── 响应 ──

// SavedSyllabusResponse 已保存的课程大纲
type SavedSyllabusResponse struct {
	CourseID   string              `json:"course_id"`
	CourseCode string              `json:"course_code"`
	CourseName string              `json:"course_name"`
	Entries    syllabus.Collection `json:"entries"`
}

// ModalResponse 当前打开的表单
type ModalResponse struct {
	Mode       string `json:"mode"`
	TargetWeek int    `json:"target_week,omitempty"`
	Week       int    `json:"week"`
	Topic      string `json:"topic"`
}

// EditorSnapshot 编辑会话快照
type EditorSnapshot struct {
	CourseID      string              `json:"course_id"`
	CourseCode    string              `json:"course_code"`
	CourseName    string              `json:"course_name"`
	State         string              `json:"state"`
	Baseline      syllabus.Collection `json:"baseline"`
	Draft         syllabus.Collection `json:"draft"`
	Dirty         bool                `json:"dirty"`
	Modal         *ModalResponse      `json:"modal"`
	MaxSlots      int                 `json:"max_slots"`
	NextAvailable int                 `json:"next_available"`
	WeekOptions   []int               `json:"week_options"`
}

// MoveResponse 移动结果，越界时 moved=false 且 draft 不变
type MoveResponse struct {
	Moved    bool            `json:"moved"`
	Snapshot *EditorSnapshot `json:"snapshot"`
}

// NewEditorSnapshot 由编辑器视图构建快照
func NewEditorSnapshot(v editor.View) *EditorSnapshot {
	snap := &EditorSnapshot{
		CourseID:      v.CourseID,
		CourseCode:    v.CourseCode,
		CourseName:    v.CourseName,
		State:         v.State.String(),
		Baseline:      nonNil(v.Baseline),
		Draft:         nonNil(v.Draft),
		Dirty:         v.Dirty,
		MaxSlots:      v.MaxSlots,
		NextAvailable: v.NextAvailable,
		WeekOptions:   v.WeekOptions,
	}
	if snap.WeekOptions == nil {
		snap.WeekOptions = []int{}
	}
	if v.Modal != nil {
		snap.Modal = &ModalResponse{
			Mode:       string(v.Modal.Mode),
			TargetWeek: v.Modal.TargetWeek,
			Week:       v.Modal.Week,
			Topic:      v.Modal.Topic,
		}
	}
	return snap
}

func nonNil(c syllabus.Collection) syllabus.Collection {
	if c == nil {
		return syllabus.Collection{}
	}
	return c
}

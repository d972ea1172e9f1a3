package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"course-portal/backend/internal/dto"
	"course-portal/backend/internal/editor"
	"course-portal/backend/internal/service"
	"course-portal/backend/internal/syllabus"
	"course-portal/backend/pkg/response"
)

// SyllabusHandler 课程大纲模块 HTTP 处理器
type SyllabusHandler struct {
	syllabusSvc service.SyllabusService
	editorSvc   service.EditorService
}

// NewSyllabusHandler 创建 SyllabusHandler
func NewSyllabusHandler(syllabusSvc service.SyllabusService, editorSvc service.EditorService) *SyllabusHandler {
	return &SyllabusHandler{syllabusSvc: syllabusSvc, editorSvc: editorSvc}
}

// GetSaved 获取已保存的课程大纲
// GET /api/v1/courses/:id/syllabus
func (h *SyllabusHandler) GetSaved(c *gin.Context) {
	result, err := h.syllabusSvc.GetSaved(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleSyllabusError(c, err, nil)
		return
	}
	response.OK(c, result)
}

// ── 编辑会话 ──

// OpenEditor 打开编辑器（加载课程）
// POST /api/v1/courses/:id/syllabus/editor
func (h *SyllabusHandler) OpenEditor(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	snap, err := h.editorSvc.Open(c.Request.Context(), userID, c.Param("id"))
	h.respond(c, snap, err)
}

// GetEditor 获取编辑会话快照
// GET /api/v1/courses/:id/syllabus/editor
func (h *SyllabusHandler) GetEditor(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	snap, err := h.editorSvc.Snapshot(c.Request.Context(), userID, c.Param("id"))
	h.respond(c, snap, err)
}

// CloseEditor 关闭编辑器，未保存的修改被丢弃
// DELETE /api/v1/courses/:id/syllabus/editor
func (h *SyllabusHandler) CloseEditor(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	if err := h.editorSvc.Close(c.Request.Context(), userID, c.Param("id")); err != nil {
		h.handleSyllabusError(c, err, nil)
		return
	}
	response.OK(c, nil)
}

// ── 表单 ──

// OpenAdd 打开新增表单
// POST /api/v1/courses/:id/syllabus/editor/modal/add
func (h *SyllabusHandler) OpenAdd(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	snap, err := h.editorSvc.OpenAdd(c.Request.Context(), userID, c.Param("id"))
	h.respond(c, snap, err)
}

// OpenEdit 打开编辑表单
// POST /api/v1/courses/:id/syllabus/editor/modal/edit/:week
func (h *SyllabusHandler) OpenEdit(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	week, ok := parseWeekParam(c)
	if !ok {
		return
	}
	snap, err := h.editorSvc.OpenEdit(c.Request.Context(), userID, c.Param("id"), week)
	h.respond(c, snap, err)
}

// UpdateModal 更新表单输入并即时校验
// PUT /api/v1/courses/:id/syllabus/editor/modal
func (h *SyllabusHandler) UpdateModal(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.ModalInputRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 17001, "参数校验失败")
		return
	}
	snap, err := h.editorSvc.UpdateModal(c.Request.Context(), userID, c.Param("id"), &req)
	h.respond(c, snap, err)
}

// CommitModal 提交表单
// POST /api/v1/courses/:id/syllabus/editor/modal/commit
func (h *SyllabusHandler) CommitModal(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.ModalInputRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 17001, "参数校验失败")
		return
	}
	snap, err := h.editorSvc.CommitModal(c.Request.Context(), userID, c.Param("id"), &req)
	h.respond(c, snap, err)
}

// CancelModal 取消表单
// DELETE /api/v1/courses/:id/syllabus/editor/modal
func (h *SyllabusHandler) CancelModal(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	snap, err := h.editorSvc.CancelModal(c.Request.Context(), userID, c.Param("id"))
	h.respond(c, snap, err)
}

// ── 条目操作 ──

// MoveEntry 上移/下移条目
// POST /api/v1/courses/:id/syllabus/editor/entries/:week/move?direction=up|down
func (h *SyllabusHandler) MoveEntry(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	week, ok := parseWeekParam(c)
	if !ok {
		return
	}
	var req dto.MoveEntryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 17006, "direction 只能是 up 或 down")
		return
	}
	dir, err := editor.ParseDirection(req.Direction)
	if err != nil {
		response.BadRequest(c, 17006, "direction 只能是 up 或 down")
		return
	}

	result, err := h.editorSvc.Move(c.Request.Context(), userID, c.Param("id"), week, dir)
	if err != nil {
		var snap *dto.EditorSnapshot
		if result != nil {
			snap = result.Snapshot
		}
		h.handleSyllabusError(c, err, snap)
		return
	}
	response.OK(c, result)
}

// DeleteEntry 删除条目，需 confirm=true
// DELETE /api/v1/courses/:id/syllabus/editor/entries/:week?confirm=true
func (h *SyllabusHandler) DeleteEntry(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	week, ok := parseWeekParam(c)
	if !ok {
		return
	}
	if !h.requireConfirm(c) {
		return
	}
	snap, err := h.editorSvc.Delete(c.Request.Context(), userID, c.Param("id"), week)
	h.respond(c, snap, err)
}

// Discard 放弃全部未保存修改，需 confirm=true
// POST /api/v1/courses/:id/syllabus/editor/discard?confirm=true
func (h *SyllabusHandler) Discard(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	if !h.requireConfirm(c) {
		return
	}
	snap, err := h.editorSvc.Discard(c.Request.Context(), userID, c.Param("id"))
	h.respond(c, snap, err)
}

// Save 保存大纲（整体替换）
// POST /api/v1/courses/:id/syllabus/editor/save
func (h *SyllabusHandler) Save(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	snap, err := h.editorSvc.Save(c.Request.Context(), userID, c.Param("id"))
	h.respond(c, snap, err)
}

// ── 内部方法 ──

func (h *SyllabusHandler) respond(c *gin.Context, snap *dto.EditorSnapshot, err error) {
	if err != nil {
		h.handleSyllabusError(c, err, snap)
		return
	}
	response.OK(c, snap)
}

func parseWeekParam(c *gin.Context) (int, bool) {
	week, err := syllabus.ParseWeek(c.Param("week"))
	if err != nil {
		response.BadRequest(c, 17002, "周次必须是正整数")
		return 0, false
	}
	return week, true
}

func (h *SyllabusHandler) requireConfirm(c *gin.Context) bool {
	var req dto.ConfirmRequest
	if err := c.ShouldBindQuery(&req); err != nil || !req.Confirm {
		h.handleSyllabusError(c, editor.ErrConfirmationNeeded, nil)
		return false
	}
	return true
}

// handleSyllabusError 将业务错误映射为 HTTP 响应；snap 非空时随错误一并返回，便于前端就地提示
func (h *SyllabusHandler) handleSyllabusError(c *gin.Context, err error, snap *dto.EditorSnapshot) {
	var (
		loadErr *editor.LoadError
		saveErr *editor.SaveError
		data    interface{}
	)
	if snap != nil {
		data = snap
	}

	switch {
	// 表单校验
	case errors.Is(err, syllabus.ErrEmptyTopic):
		response.ErrorWithData(c, http.StatusBadRequest, 17003, "主题不能为空", data)
	case errors.Is(err, syllabus.ErrInvalidWeek):
		response.ErrorWithData(c, http.StatusBadRequest, 17002, "周次必须是正整数", data)
	case errors.Is(err, syllabus.ErrWeekTaken):
		response.ErrorWithData(c, http.StatusConflict, 17004, "该周次已被占用", data)
	case errors.Is(err, syllabus.ErrEntryNotFound):
		response.ErrorWithData(c, http.StatusNotFound, 17005, "大纲条目不存在", data)

	// 持久化
	case errors.Is(err, editor.ErrCourseNotFound):
		response.NotFound(c, 17101, "课程不存在")
	case errors.As(err, &loadErr):
		response.BadGateway(c, 17102, "加载课程失败，请重试", "")
	case errors.As(err, &saveErr):
		response.ErrorWithData(c, http.StatusBadGateway, 17103, "保存失败，修改已保留，请重试", data)
	case errors.Is(err, editor.ErrStaleResponse):
		response.Conflict(c, 17104, "课程加载已被取消")

	// 会话状态
	case errors.Is(err, service.ErrSessionNotFound):
		response.NotFound(c, 17201, "编辑会话不存在或已过期，请重新打开编辑器")
	case errors.Is(err, editor.ErrNotReady):
		response.ErrorWithData(c, http.StatusConflict, 17202, "编辑器当前状态不允许该操作", data)
	case errors.Is(err, editor.ErrNoModal):
		response.ErrorWithData(c, http.StatusConflict, 17203, "没有打开的新增/编辑表单", data)
	case errors.Is(err, editor.ErrClosed):
		response.Conflict(c, 17204, "编辑器已关闭")
	case errors.Is(err, editor.ErrUnsavedChanges):
		response.ErrorWithData(c, http.StatusConflict, 17205, "存在未保存的修改，请先保存或放弃", data)
	case errors.Is(err, editor.ErrInvalidDirection):
		response.BadRequest(c, 17006, "direction 只能是 up 或 down")
	case errors.Is(err, editor.ErrConfirmationNeeded):
		response.PreconditionRequired(c, 17206, "该操作需要确认，请携带 confirm=true")

	default:
		response.InternalError(c)
	}
}

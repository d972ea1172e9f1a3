package editor

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"course-portal/backend/internal/syllabus"
)

// ── 编辑器状态机错误 ──

var (
	ErrNotReady           = errors.New("编辑器当前状态不允许该操作")
	ErrNoModal            = errors.New("没有打开的新增/编辑表单")
	ErrClosed             = errors.New("编辑器已关闭")
	ErrUnsavedChanges     = errors.New("存在未保存的修改，请先保存或放弃")
	ErrInvalidDirection   = errors.New("移动方向只能是 up 或 down")
	ErrStaleResponse      = errors.New("课程加载结果已过期，已丢弃")
	ErrConfirmationNeeded = errors.New("该操作需要用户确认")
)

// State 编辑器状态
type State int

const (
	StateIdle State = iota // 已创建或加载失败，无可编辑的 draft
	StateLoading
	StateReady
	StateAdding
	StateEditing
	StateSaving
	StateClosed
)

var stateNames = map[State]string{
	StateIdle:    "idle",
	StateLoading: "loading",
	StateReady:   "ready",
	StateAdding:  "adding",
	StateEditing: "editing",
	StateSaving:  "saving",
	StateClosed:  "closed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Direction 条目移动方向
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// ParseDirection 解析移动方向
func ParseDirection(s string) (Direction, error) {
	switch Direction(strings.ToLower(strings.TrimSpace(s))) {
	case DirectionUp:
		return DirectionUp, nil
	case DirectionDown:
		return DirectionDown, nil
	}
	return "", ErrInvalidDirection
}

// ModalMode 表单模式
type ModalMode string

const (
	ModeAdd  ModalMode = "add"
	ModeEdit ModalMode = "edit"
)

// Modal 新增/编辑表单的临时状态
type Modal struct {
	Mode       ModalMode
	TargetWeek int // 编辑模式下被编辑条目的原周次
	Week       int
	Topic      string
}

// View 编辑器只读快照
type View struct {
	CourseID      string
	CourseCode    string
	CourseName    string
	State         State
	Baseline      syllabus.Collection
	Draft         syllabus.Collection
	Dirty         bool
	Modal         *Modal
	MaxSlots      int
	NextAvailable int
	WeekOptions   []int
}

// Option Controller 可选配置
type Option func(*Controller)

// WithMaxSlots 设置周次上限（<=0 时使用默认值）
func WithMaxSlots(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.maxSlots = n
		}
	}
}

// WithLogger 设置日志器
func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Controller 单门课程的大纲编辑器状态机。
//
// 状态流转：Idle → Loading → Ready → {Adding, Editing, Saving} → Ready → Closed。
// 只有 Ready 状态允许 Move/Delete/打开表单/Save/Discard。
// 互斥锁只保护状态字段，不跨越持久化调用；重入由状态本身阻止。
type Controller struct {
	mu sync.Mutex

	store    Store
	maxSlots int
	logger   *zap.Logger

	courseID   string
	courseCode string
	courseName string
	state      State
	buf        *DraftBuffer
	modal      *Modal

	// generation 每次 Load/Close 递增，用于丢弃过期的加载结果
	generation uint64
}

// NewController 创建 Controller，初始状态为 Idle
func NewController(store Store, opts ...Option) *Controller {
	c := &Controller{
		store:    store,
		maxSlots: syllabus.DefaultMaxSlots,
		logger:   zap.NewNop(),
		state:    StateIdle,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ────────────────────── Load ──────────────────────

// Load 加载课程并以规范化后的大纲初始化 baseline 与 draft。
// 加载期间若编辑器被关闭或切换到其他课程，本次结果被丢弃并返回 ErrStaleResponse。
func (c *Controller) Load(ctx context.Context, courseID string) error {
	c.mu.Lock()
	switch c.state {
	case StateClosed:
		c.mu.Unlock()
		return ErrClosed
	case StateAdding, StateEditing, StateSaving:
		c.mu.Unlock()
		return ErrNotReady
	case StateReady:
		if c.buf.Dirty() {
			c.mu.Unlock()
			return ErrUnsavedChanges
		}
	}
	c.generation++
	gen := c.generation
	c.courseID = courseID
	c.courseCode, c.courseName = "", ""
	c.state = StateLoading
	c.buf = nil
	c.modal = nil
	c.mu.Unlock()

	rec, err := c.store.LoadCourse(ctx, courseID)

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation || c.state != StateLoading {
		c.logger.Debug("丢弃过期的课程加载结果",
			zap.String("course_id", courseID),
			zap.Uint64("generation", gen),
		)
		return ErrStaleResponse
	}

	if err != nil {
		c.state = StateIdle
		return &LoadError{CourseID: courseID, Err: err}
	}

	c.courseCode = rec.Code
	c.courseName = rec.Name
	c.buf = NewDraftBuffer(syllabus.NormalizeJSON(rec.Syllabus))
	c.state = StateReady
	return nil
}

// ────────────────────── 表单（新增/编辑）──────────────────────

// OpenAdd 打开新增表单，周次预填为下一个可用周次
func (c *Controller) OpenAdd() (Modal, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateReady {
		return Modal{}, ErrNotReady
	}

	c.modal = &Modal{
		Mode: ModeAdd,
		Week: syllabus.NextAvailable(c.buf.draft, c.maxSlots),
	}
	c.state = StateAdding
	return *c.modal, nil
}

// OpenEdit 打开编辑表单，以现有条目预填
func (c *Controller) OpenEdit(week int) (Modal, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateReady {
		return Modal{}, ErrNotReady
	}

	idx := c.buf.draft.IndexOf(week)
	if idx < 0 {
		return Modal{}, syllabus.ErrEntryNotFound
	}

	entry := c.buf.draft[idx]
	c.modal = &Modal{
		Mode:       ModeEdit,
		TargetWeek: entry.Week,
		Week:       entry.Week,
		Topic:      entry.Topic,
	}
	c.state = StateEditing
	return *c.modal, nil
}

// SetModalInput 更新表单中待提交的周次与主题
func (c *Controller) SetModalInput(week int, topic string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.modal == nil {
		return ErrNoModal
	}
	c.modal.Week = week
	c.modal.Topic = topic
	return nil
}

// ValidateModal 返回第一条不满足的校验规则，全部通过返回 nil
func (c *Controller) ValidateModal() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.modal == nil {
		return ErrNoModal
	}
	return validateModal(c.modal, c.buf.draft)
}

func validateModal(m *Modal, draft syllabus.Collection) error {
	if strings.TrimSpace(m.Topic) == "" {
		return syllabus.ErrEmptyTopic
	}
	if m.Week < 1 {
		return syllabus.ErrInvalidWeek
	}

	_, taken := syllabus.UsedWeeks(draft)[m.Week]
	switch m.Mode {
	case ModeAdd:
		if taken {
			return syllabus.ErrWeekTaken
		}
	case ModeEdit:
		// 保持原周次不算冲突
		if m.Week != m.TargetWeek && taken {
			return syllabus.ErrWeekTaken
		}
	}
	return nil
}

// CommitModal 校验通过后写入 draft 并回到 Ready；校验失败时状态与 draft 均不变
func (c *Controller) CommitModal() (syllabus.Collection, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.modal == nil {
		return nil, ErrNoModal
	}
	if err := validateModal(c.modal, c.buf.draft); err != nil {
		return nil, err
	}

	entry := syllabus.Entry{Week: c.modal.Week, Topic: c.modal.Topic}
	next := c.buf.draft.Clone()

	switch c.modal.Mode {
	case ModeAdd:
		next = append(next, entry)
	case ModeEdit:
		idx := next.IndexOf(c.modal.TargetWeek)
		if idx < 0 {
			return nil, syllabus.ErrEntryNotFound
		}
		next[idx] = entry
	}

	c.buf.replace(syllabus.Normalize(next))
	c.modal = nil
	c.state = StateReady
	return c.buf.Draft(), nil
}

// CancelModal 关闭表单，不修改 draft
func (c *Controller) CancelModal() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.modal == nil {
		return ErrNoModal
	}
	c.modal = nil
	c.state = StateReady
	return nil
}

// ────────────────────── Move / Delete / Discard ──────────────────────

// Move 与相邻条目交换周次（主题随原条目保留）。
// 首条上移或末条下移为正常的空操作，返回 false。
func (c *Controller) Move(week int, dir Direction) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateReady {
		return false, ErrNotReady
	}

	draft := c.buf.draft
	i := draft.IndexOf(week)
	if i < 0 {
		return false, syllabus.ErrEntryNotFound
	}

	var j int
	switch dir {
	case DirectionUp:
		j = i - 1
	case DirectionDown:
		j = i + 1
	default:
		return false, ErrInvalidDirection
	}
	if j < 0 || j >= len(draft) {
		return false, nil
	}

	c.buf.replace(syllabus.SwapWeeks(draft, i, j))
	return true, nil
}

// Delete 删除指定周次的条目。调用方必须已取得用户的明确确认。
func (c *Controller) Delete(week int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateReady {
		return ErrNotReady
	}

	idx := c.buf.draft.IndexOf(week)
	if idx < 0 {
		return syllabus.ErrEntryNotFound
	}

	next := make(syllabus.Collection, 0, len(c.buf.draft)-1)
	next = append(next, c.buf.draft[:idx]...)
	next = append(next, c.buf.draft[idx+1:]...)
	c.buf.replace(next)
	return nil
}

// Discard 将 draft 恢复为 baseline。调用方必须已取得用户的明确确认。
func (c *Controller) Discard() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateReady {
		return ErrNotReady
	}
	c.buf.Reset()
	return nil
}

// ────────────────────── Save ──────────────────────

// Save 将规范化后的 draft 整体替换到服务端。
// 保存期间处于 Saving 状态，拒绝其他修改与重复保存；请求发出后不可取消。
// 失败时回到 Ready 且 draft 保持不变，可重试或放弃。
func (c *Controller) Save(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateReady {
		c.mu.Unlock()
		return ErrNotReady
	}
	payload := syllabus.Normalize(c.buf.draft)
	courseID := c.courseID
	c.state = StateSaving
	c.mu.Unlock()

	_, err := c.store.SaveCourse(context.WithoutCancel(ctx), courseID, payload)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateClosed {
		// 编辑器已关闭：保存结果仍已写入服务端，本地状态无需更新
		if err != nil {
			return &SaveError{CourseID: courseID, Err: err}
		}
		return nil
	}

	c.state = StateReady
	if err != nil {
		return &SaveError{CourseID: courseID, Err: err}
	}

	c.buf.Commit(payload)
	c.logger.Info("课程大纲已保存",
		zap.String("course_id", courseID),
		zap.Int("entries", len(payload)),
	)
	return nil
}

// ────────────────────── Close / 查询 ──────────────────────

// Close 关闭编辑器，进行中的加载结果将被丢弃
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	c.state = StateClosed
	c.modal = nil
}

// State 当前状态
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Dirty 是否存在未保存修改
func (c *Controller) Dirty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf != nil && c.buf.Dirty()
}

// Snapshot 返回当前编辑器的只读快照
func (c *Controller) Snapshot() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := View{
		CourseID:   c.courseID,
		CourseCode: c.courseCode,
		CourseName: c.courseName,
		State:      c.state,
		MaxSlots:   c.maxSlots,
	}
	if c.modal != nil {
		m := *c.modal
		v.Modal = &m
	}
	if c.buf == nil {
		return v
	}

	v.Baseline = c.buf.Baseline()
	v.Draft = c.buf.Draft()
	v.Dirty = c.buf.Dirty()
	v.NextAvailable = syllabus.NextAvailable(v.Draft, c.maxSlots)

	keep := 0
	if c.modal != nil && c.modal.Mode == ModeEdit {
		keep = c.modal.TargetWeek
	}
	v.WeekOptions = syllabus.WeekOptions(v.Draft, c.maxSlots, keep)
	return v
}

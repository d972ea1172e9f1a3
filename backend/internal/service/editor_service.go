package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"course-portal/backend/internal/dto"
	"course-portal/backend/internal/editor"
)

// ── 编辑会话模块业务错误 ──

var (
	ErrSessionNotFound = errors.New("编辑会话不存在或已过期，请重新打开编辑器")
)

// EditorService 课程大纲编辑会话业务接口
//
// 设计说明：
//   - 每个 (用户, 课程) 对应一个 editor.Controller，会话在 Open 时创建、Close 时移除
//   - 会话存活期间再次 Open 直接返回原会话，未保存的 draft 得以保留
//   - 上次加载失败（Idle）的会话再次 Open 时重新加载
//   - 空闲超过 session_ttl 的会话由 janitor 回收，Saving 中的会话不回收
type EditorService interface {
	Open(ctx context.Context, userID, courseID string) (*dto.EditorSnapshot, error)
	Snapshot(ctx context.Context, userID, courseID string) (*dto.EditorSnapshot, error)
	Close(ctx context.Context, userID, courseID string) error

	OpenAdd(ctx context.Context, userID, courseID string) (*dto.EditorSnapshot, error)
	OpenEdit(ctx context.Context, userID, courseID string, week int) (*dto.EditorSnapshot, error)
	// UpdateModal 写入表单输入并校验；校验失败时同时返回快照与校验错误
	UpdateModal(ctx context.Context, userID, courseID string, req *dto.ModalInputRequest) (*dto.EditorSnapshot, error)
	// CommitModal 写入表单输入并提交；校验失败时表单保持打开
	CommitModal(ctx context.Context, userID, courseID string, req *dto.ModalInputRequest) (*dto.EditorSnapshot, error)
	CancelModal(ctx context.Context, userID, courseID string) (*dto.EditorSnapshot, error)

	Move(ctx context.Context, userID, courseID string, week int, dir editor.Direction) (*dto.MoveResponse, error)
	// Delete 与 Discard 由调用方确保已获得用户确认
	Delete(ctx context.Context, userID, courseID string, week int) (*dto.EditorSnapshot, error)
	Discard(ctx context.Context, userID, courseID string) (*dto.EditorSnapshot, error)
	Save(ctx context.Context, userID, courseID string) (*dto.EditorSnapshot, error)

	// Sweep 回收空闲过期的会话，返回回收数量
	Sweep(now time.Time) int
	// StartJanitor 周期性执行 Sweep，ctx 取消时退出
	StartJanitor(ctx context.Context, interval time.Duration)
}

type sessionKey struct {
	userID   string
	courseID string
}

type session struct {
	ctrl       *editor.Controller
	lastAccess time.Time
}

type editorService struct {
	stores   StoreFactory
	maxSlots int
	ttl      time.Duration
	logger   *zap.Logger
	now      func() time.Time

	mu       sync.Mutex
	sessions map[sessionKey]*session
}

// NewEditorService 创建 EditorService 实例
func NewEditorService(stores StoreFactory, maxSlots int, ttl time.Duration, logger *zap.Logger) EditorService {
	return &editorService{
		stores:   stores,
		maxSlots: maxSlots,
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
		sessions: make(map[sessionKey]*session),
	}
}

// ────────────────────── Open ──────────────────────

func (s *editorService) Open(ctx context.Context, userID, courseID string) (*dto.EditorSnapshot, error) {
	key := sessionKey{userID: userID, courseID: courseID}

	s.mu.Lock()
	sess, ok := s.sessions[key]
	if ok {
		sess.lastAccess = s.now()
		if sess.ctrl.State() != editor.StateIdle {
			s.mu.Unlock()
			return dto.NewEditorSnapshot(sess.ctrl.Snapshot()), nil
		}
	} else {
		sess = &session{
			ctrl: editor.NewController(s.stores(userID),
				editor.WithMaxSlots(s.maxSlots),
				editor.WithLogger(s.logger),
			),
			lastAccess: s.now(),
		}
		s.sessions[key] = sess
	}
	s.mu.Unlock()

	if err := sess.ctrl.Load(ctx, courseID); err != nil {
		if !errors.Is(err, editor.ErrStaleResponse) {
			s.logger.Warn("打开课程大纲编辑器失败",
				zap.String("user_id", userID),
				zap.String("course_id", courseID),
				zap.Error(err),
			)
		}
		return nil, err
	}

	s.logger.Info("打开课程大纲编辑器",
		zap.String("user_id", userID),
		zap.String("course_id", courseID),
	)
	return dto.NewEditorSnapshot(sess.ctrl.Snapshot()), nil
}

// ────────────────────── Snapshot / Close ──────────────────────

func (s *editorService) Snapshot(_ context.Context, userID, courseID string) (*dto.EditorSnapshot, error) {
	ctrl, err := s.controller(userID, courseID)
	if err != nil {
		return nil, err
	}
	return dto.NewEditorSnapshot(ctrl.Snapshot()), nil
}

func (s *editorService) Close(_ context.Context, userID, courseID string) error {
	key := sessionKey{userID: userID, courseID: courseID}

	s.mu.Lock()
	sess, ok := s.sessions[key]
	delete(s.sessions, key)
	s.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	sess.ctrl.Close()
	return nil
}

// ────────────────────── 表单 ──────────────────────

func (s *editorService) OpenAdd(_ context.Context, userID, courseID string) (*dto.EditorSnapshot, error) {
	return s.apply(userID, courseID, func(c *editor.Controller) error {
		_, err := c.OpenAdd()
		return err
	})
}

func (s *editorService) OpenEdit(_ context.Context, userID, courseID string, week int) (*dto.EditorSnapshot, error) {
	return s.apply(userID, courseID, func(c *editor.Controller) error {
		_, err := c.OpenEdit(week)
		return err
	})
}

func (s *editorService) UpdateModal(_ context.Context, userID, courseID string, req *dto.ModalInputRequest) (*dto.EditorSnapshot, error) {
	return s.apply(userID, courseID, func(c *editor.Controller) error {
		if err := c.SetModalInput(req.ParsedWeek(), req.Topic); err != nil {
			return err
		}
		return c.ValidateModal()
	})
}

func (s *editorService) CommitModal(_ context.Context, userID, courseID string, req *dto.ModalInputRequest) (*dto.EditorSnapshot, error) {
	return s.apply(userID, courseID, func(c *editor.Controller) error {
		if err := c.SetModalInput(req.ParsedWeek(), req.Topic); err != nil {
			return err
		}
		_, err := c.CommitModal()
		return err
	})
}

func (s *editorService) CancelModal(_ context.Context, userID, courseID string) (*dto.EditorSnapshot, error) {
	return s.apply(userID, courseID, func(c *editor.Controller) error {
		return c.CancelModal()
	})
}

// ────────────────────── 条目操作 ──────────────────────

func (s *editorService) Move(_ context.Context, userID, courseID string, week int, dir editor.Direction) (*dto.MoveResponse, error) {
	var moved bool
	snap, err := s.apply(userID, courseID, func(c *editor.Controller) error {
		var err error
		moved, err = c.Move(week, dir)
		return err
	})
	if snap == nil {
		return nil, err
	}
	return &dto.MoveResponse{Moved: moved, Snapshot: snap}, err
}

func (s *editorService) Delete(_ context.Context, userID, courseID string, week int) (*dto.EditorSnapshot, error) {
	return s.apply(userID, courseID, func(c *editor.Controller) error {
		return c.Delete(week)
	})
}

func (s *editorService) Discard(_ context.Context, userID, courseID string) (*dto.EditorSnapshot, error) {
	return s.apply(userID, courseID, func(c *editor.Controller) error {
		return c.Discard()
	})
}

// ────────────────────── Save ──────────────────────

func (s *editorService) Save(ctx context.Context, userID, courseID string) (*dto.EditorSnapshot, error) {
	ctrl, err := s.controller(userID, courseID)
	if err != nil {
		return nil, err
	}

	if err := ctrl.Save(ctx); err != nil {
		var saveErr *editor.SaveError
		if errors.As(err, &saveErr) {
			s.logger.Error("保存课程大纲失败",
				zap.String("user_id", userID),
				zap.String("course_id", courseID),
				zap.Error(saveErr.Err),
			)
		}
		return dto.NewEditorSnapshot(ctrl.Snapshot()), err
	}
	return dto.NewEditorSnapshot(ctrl.Snapshot()), nil
}

// ────────────────────── 会话回收 ──────────────────────

func (s *editorService) Sweep(now time.Time) int {
	var expired []*session

	s.mu.Lock()
	for key, sess := range s.sessions {
		if now.Sub(sess.lastAccess) < s.ttl {
			continue
		}
		if sess.ctrl.State() == editor.StateSaving {
			continue
		}
		expired = append(expired, sess)
		delete(s.sessions, key)
	}
	s.mu.Unlock()

	for _, sess := range expired {
		sess.ctrl.Close()
	}
	if len(expired) > 0 {
		s.logger.Info("回收过期编辑会话", zap.Int("count", len(expired)))
	}
	return len(expired)
}

func (s *editorService) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Sweep(s.now())
			}
		}
	}()
}

// ── 内部方法 ──

func (s *editorService) controller(userID, courseID string) (*editor.Controller, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionKey{userID: userID, courseID: courseID}]
	if !ok {
		return nil, ErrSessionNotFound
	}
	sess.lastAccess = s.now()
	return sess.ctrl, nil
}

// apply 在会话上执行一次操作；会话存在时总是返回最新快照，以便前端就地展示错误
func (s *editorService) apply(userID, courseID string, op func(*editor.Controller) error) (*dto.EditorSnapshot, error) {
	ctrl, err := s.controller(userID, courseID)
	if err != nil {
		return nil, err
	}
	err = op(ctrl)
	return dto.NewEditorSnapshot(ctrl.Snapshot()), err
}

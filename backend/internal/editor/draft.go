package editor

import "course-portal/backend/internal/syllabus"

// DraftBuffer 持有两份互不共享底层数组的快照：
// baseline 为服务端最后确认的大纲，draft 为正在编辑的副本。
type DraftBuffer struct {
	baseline syllabus.Collection
	draft    syllabus.Collection
}

// NewDraftBuffer 以同一份初始大纲创建缓冲区
func NewDraftBuffer(initial syllabus.Collection) *DraftBuffer {
	return &DraftBuffer{
		baseline: initial.Clone(),
		draft:    initial.Clone(),
	}
}

// Baseline 返回 baseline 的拷贝
func (b *DraftBuffer) Baseline() syllabus.Collection { return b.baseline.Clone() }

// Draft 返回 draft 的拷贝
func (b *DraftBuffer) Draft() syllabus.Collection { return b.draft.Clone() }

// Dirty draft 与 baseline 不一致时为 true
func (b *DraftBuffer) Dirty() bool {
	return !syllabus.Equal(b.baseline, b.draft)
}

// Reset 丢弃所有未保存修改（调用方须事先取得用户确认）
func (b *DraftBuffer) Reset() {
	b.draft = b.baseline.Clone()
}

// Commit 保存成功后调用，baseline 与 draft 同时置为新基线
func (b *DraftBuffer) Commit(newBaseline syllabus.Collection) {
	b.baseline = newBaseline.Clone()
	b.draft = newBaseline.Clone()
}

// replace 用新集合替换 draft，缓冲区持有其所有权
func (b *DraftBuffer) replace(next syllabus.Collection) {
	b.draft = next
}

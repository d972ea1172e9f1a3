package syllabus

import (
	"math/rand"
	"reflect"
	"testing"
)

func TestNextAvailable(t *testing.T) {
	tests := []struct {
		name string
		c    Collection
		max  int
		want int
	}{
		{"空大纲", Collection{}, 20, 1},
		{"首个空位", Collection{{1, "A"}, {5, "B"}}, 20, 2},
		{"连续占用", Collection{{1, "A"}, {2, "B"}}, 20, 3},
		{"全部占满返回溢出值", Collection{{1, "A"}, {2, "B"}, {3, "C"}}, 3, 4},
		{"超出上限的周次不影响", Collection{{25, "X"}}, 20, 1},
		{"上限为零", Collection{}, 0, 1},
		{"上限为零且周次 1 已占用", Collection{{1, "A"}}, 0, 2},
		{"溢出值已占用时继续向后查找", weeksUpTo(21), 20, 22},
		{"溢出区间存在空洞", Collection{{1, "A"}, {2, "B"}, {3, "C"}, {5, "E"}}, 2, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NextAvailable(tt.c, tt.max); got != tt.want {
				t.Errorf("期望 %d，实际=%d", tt.want, got)
			}
		})
	}
}

func TestNextAvailable_NeverUsed(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		c := Normalize(randomEntries(r))
		limit := r.Intn(8)
		next := NextAvailable(c, limit)
		if _, taken := UsedWeeks(c)[next]; taken {
			t.Fatalf("NextAvailable 返回了已占用周次 %d: %v (max=%d)", next, c, limit)
		}
		for _, w := range WeekOptions(c, limit, 0) {
			if _, taken := UsedWeeks(c)[w]; taken {
				t.Fatalf("WeekOptions 包含已占用周次 %d: %v (max=%d)", w, c, limit)
			}
		}
	}
}

// weeksUpTo 构造占满 1..n 周的大纲
func weeksUpTo(n int) Collection {
	c := make(Collection, 0, n)
	for w := 1; w <= n; w++ {
		c = append(c, Entry{Week: w, Topic: "T"})
	}
	return c
}

func TestWeekOptions(t *testing.T) {
	tests := []struct {
		name string
		c    Collection
		max  int
		keep int
		want []int
	}{
		{"新增", Collection{{1, "A"}, {3, "B"}}, 4, 0, []int{2, 4}},
		{"编辑保留本周", Collection{{1, "A"}, {3, "B"}}, 4, 3, []int{2, 3, 4}},
		{"占满追加溢出值", Collection{{1, "A"}, {2, "B"}}, 2, 0, []int{3}},
		{"编辑超上限周次", Collection{{1, "A"}, {2, "B"}, {9, "C"}}, 2, 9, []int{3, 9}},
		{"溢出值已占用", weeksUpTo(21), 20, 0, []int{22}},
		{"编辑已占用的溢出周次", weeksUpTo(21), 20, 21, []int{21, 22}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WeekOptions(tt.c, tt.max, tt.keep)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("期望 %v，实际=%v", tt.want, got)
			}
		})
	}
}

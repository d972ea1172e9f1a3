package syllabus

// DefaultMaxSlots 默认周次上限（常见课程的最大教学周数，不是平台硬限制）
const DefaultMaxSlots = 20

// NextAvailable 在 1..maxSlots 中查找最小的未占用周次。
// 全部占满时返回超出上限的最小空闲周次（通常为 maxSlots+1），调用方需将其作为可选项提供。
// 返回值永远不在 UsedWeeks(c) 中。
func NextAvailable(c Collection, maxSlots int) int {
	used := UsedWeeks(c)
	w := 1
	for ; w <= maxSlots; w++ {
		if _, ok := used[w]; !ok {
			return w
		}
	}
	// 历史数据可能已占用上限之外的周次
	for {
		if _, ok := used[w]; !ok {
			return w
		}
		w++
	}
}

// WeekOptions 新增/编辑表单的周次下拉选项（升序）：
//   - 1..maxSlots 中未被占用的周次
//   - keep > 0 时包含正在编辑的周次本身
//   - 范围全部占满时追加溢出值（超出上限的最小空闲周次）
func WeekOptions(c Collection, maxSlots, keep int) []int {
	used := UsedWeeks(c)
	options := make([]int, 0, maxSlots+1)
	for w := 1; w <= maxSlots; w++ {
		if _, ok := used[w]; !ok || w == keep {
			options = append(options, w)
		}
	}

	next := NextAvailable(c, maxSlots)
	if next > maxSlots {
		options = append(options, next)
	}
	if keep > maxSlots && keep != next {
		options = insertSorted(options, keep)
	}
	return options
}

func insertSorted(s []int, v int) []int {
	i := 0
	for i < len(s) && s[i] < v {
		i++
	}
	s = append(s, 0)
	copy(s[i+1:], s[i:])
	s[i] = v
	return s
}

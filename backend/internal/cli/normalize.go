package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"course-portal/backend/internal/syllabus"
)

// ErrEntriesDropped --check 模式下存在被丢弃的条目
var ErrEntriesDropped = errors.New("大纲中存在不合法或重复的条目")

func (a *App) normalizeCmd() *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "normalize [file]",
		Short: "规范化大纲 JSON 并报告被丢弃的条目",
		Long: `读取大纲 JSON（文件路径或 - 表示标准输入），输出规范化后的结果：
按周次排序、同一周次只保留首个条目、丢弃周次非正整数或主题为空的条目。

示例:
  syllabusctl normalize syllabus.json
  cat syllabus.json | syllabusctl normalize - --check`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			raw, err := a.readInput(args[0])
			if err != nil {
				return err
			}

			normalized := syllabus.NormalizeJSON(raw)
			out, err := json.MarshalIndent(normalized, "", "  ")
			if err != nil {
				return fmt.Errorf("序列化结果失败: %w", err)
			}
			fmt.Fprintln(a.out, string(out))

			doc := gjson.ParseBytes(raw)
			if !doc.IsArray() {
				colorWarn.Fprintln(a.errOut, "输入不是 JSON 数组，按空大纲处理")
				if check {
					return ErrEntriesDropped
				}
				return nil
			}

			total := len(doc.Array())
			dropped := total - len(normalized)
			if dropped == 0 {
				colorOK.Fprintf(a.errOut, "共 %d 条，全部有效\n", total)
				return nil
			}
			colorWarn.Fprintf(a.errOut, "共 %d 条，丢弃 %d 条\n", total, dropped)
			if check {
				return ErrEntriesDropped
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "存在被丢弃的条目时以非零状态退出")

	return cmd
}

func (a *App) readInput(path string) ([]byte, error) {
	if path == "-" {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("读取标准输入失败: %w", err)
		}
		return b, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取文件失败: %w", err)
	}
	return b, nil
}

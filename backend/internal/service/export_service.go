package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"course-portal/backend/internal/syllabus"
)

// ── 导出模块业务错误 ──

var (
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

// ExportService 导出业务接口
//
// 设计说明：
//   - 导出的是课程已保存的大纲，不包含编辑会话中未保存的修改
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
//   - Excel 格式：单 Sheet，标题行为课程代码与名称，数据行为 周次 × 主题
type ExportService interface {
	// ExportSyllabus 导出课程大纲为 Excel，返回内容与建议文件名
	ExportSyllabus(ctx context.Context, courseID string) (*bytes.Buffer, string, error)
}

type exportService struct {
	saved  SyllabusService
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(saved SyllabusService, logger *zap.Logger) ExportService {
	return &exportService{saved: saved, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportSyllabus 导出课程大纲为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - Sheet "课程大纲"
//   - 第 1 行：课程代码 课程名称（合并单元格）
//   - 第 2 行表头：周次 | 主题
//   - 数据行按周次升序；大纲为空时输出一行 "暂无大纲"

func (s *exportService) ExportSyllabus(ctx context.Context, courseID string) (*bytes.Buffer, string, error) {
	saved, err := s.saved.GetSaved(ctx, courseID)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "课程大纲"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheetName, "A", "A", 10)
	f.SetColWidth(sheetName, "B", "B", 60)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// 标题行
	title := strings.TrimSpace(saved.CourseCode + " " + saved.CourseName)
	if title == "" {
		title = saved.CourseID
	}
	f.SetCellValue(sheetName, "A1", title)
	f.MergeCell(sheetName, "A1", "B1")
	f.SetCellStyle(sheetName, "A1", "B1", headerStyle)

	// 表头
	f.SetCellValue(sheetName, cell("A", 2), "周次")
	f.SetCellValue(sheetName, cell("B", 2), "主题")
	f.SetCellStyle(sheetName, "A2", "B2", headerStyle)

	// 数据行
	writeSyllabusRows(f, sheetName, 3, saved.Entries)

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.String("course_id", courseID), zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	name := saved.CourseCode
	if name == "" {
		name = saved.CourseID
	}
	return buf, fmt.Sprintf("课程大纲_%s.xlsx", name), nil
}

// ── 辅助函数 ──

func writeSyllabusRows(f *excelize.File, sheetName string, row int, entries syllabus.Collection) {
	if len(entries) == 0 {
		f.SetCellValue(sheetName, cell("A", row), "-")
		f.SetCellValue(sheetName, cell("B", row), "暂无大纲")
		return
	}
	for _, e := range entries {
		f.SetCellValue(sheetName, cell("A", row), fmt.Sprintf("第%d周", e.Week))
		f.SetCellValue(sheetName, cell("B", row), e.Topic)
		row++
	}
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

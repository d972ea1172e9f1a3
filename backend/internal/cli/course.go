package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"course-portal/backend/config"
	"course-portal/backend/internal/dto"
	"course-portal/backend/internal/repository"
	"course-portal/backend/internal/service"
)

// ErrRemoteStore 课程管理命令只能直连数据库
var ErrRemoteStore = errors.New("editor.store=remote 时课程由门户管理，course 命令不可用")

func (a *App) courseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "course",
		Short: "管理课程（仅 database 存储）",
	}
	cmd.AddCommand(a.courseListCmd())
	cmd.AddCommand(a.courseAddCmd())
	return cmd
}

func (a *App) courseListCmd() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "list",
		Short: "列出课程及大纲条目数",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return a.withCourseService(timeout, func(ctx context.Context, svc service.CourseService) error {
				courses, err := svc.List(ctx)
				if err != nil {
					return err
				}
				a.printCourses(courses)
				return nil
			})
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "查询超时时间")
	return cmd
}

func (a *App) courseAddCmd() *cobra.Command {
	var (
		req          dto.CreateCourseRequest
		syllabusFile string
		createdBy    string
		timeout      time.Duration
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "新建课程，可附带初始大纲",
		Long: `新建课程。--syllabus 指定的 JSON 文件会先规范化再写入，无效条目被丢弃。

示例:
  syllabusctl course add --code CS101 --name 程序设计 --credits 3 --syllabus cs101.json`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if createdBy != "" {
				if _, err := uuid.Parse(createdBy); err != nil {
					return fmt.Errorf("--created-by 必须是 UUID: %w", err)
				}
			}
			if syllabusFile != "" {
				raw, err := os.ReadFile(syllabusFile)
				if err != nil {
					return fmt.Errorf("读取大纲文件失败: %w", err)
				}
				req.Syllabus = raw
			}

			return a.withCourseService(timeout, func(ctx context.Context, svc service.CourseService) error {
				course, err := svc.Create(ctx, &req, createdBy)
				if err != nil {
					return err
				}
				colorOK.Fprintf(a.out, "已创建课程 %s %s ", course.Code, course.Name)
				colorMuted.Fprintf(a.out, "(%s, %d 条大纲)\n", course.CourseID, course.Entries)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&req.Code, "code", "", "课程代码")
	cmd.Flags().StringVar(&req.Name, "name", "", "课程名称")
	cmd.Flags().Float64Var(&req.Credits, "credits", 0, "学分")
	cmd.Flags().StringVar(&syllabusFile, "syllabus", "", "初始大纲 JSON 文件")
	cmd.Flags().StringVar(&createdBy, "created-by", "", "记录为创建人的用户 ID（UUID）")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "写入超时时间")
	_ = cmd.MarkFlagRequired("code")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

// withCourseService 打开数据库并在超时上下文中执行 fn
func (a *App) withCourseService(timeout time.Duration, fn func(ctx context.Context, svc service.CourseService) error) error {
	cfg, logger, err := a.loadConfig()
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.Editor.Store == config.StoreRemote {
		return ErrRemoteStore
	}

	db, closeDB, err := openDatabase(cfg, logger)
	if err != nil {
		return err
	}
	defer closeDB()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	return fn(ctx, service.NewCourseService(repository.NewRepository(db), logger))
}

func (a *App) printCourses(courses []dto.CourseSummary) {
	if len(courses) == 0 {
		colorWarn.Fprintln(a.out, "暂无课程")
		return
	}

	rows := make([][]string, 0, len(courses))
	for _, c := range courses {
		rows = append(rows, []string{
			c.Code,
			c.Name,
			strconv.FormatFloat(c.Credits, 'f', 1, 64),
			strconv.Itoa(c.Entries),
			strconv.Itoa(c.Version),
			c.CourseID,
		})
	}

	t := table.New().
		Headers("代码", "名称", "学分", "大纲条目", "版本", "ID").
		Border(lipgloss.NormalBorder()).
		BorderRow(false).
		Rows(rows...)
	fmt.Fprintln(a.out, t.Render())
}

package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"course-portal/backend/config"
	"course-portal/backend/pkg/database"
	applogger "course-portal/backend/pkg/logger"
)

var (
	// Version 构建时注入
	Version = "dev"
	// Commit 构建时注入
	Commit = "none"
)

// 输出配色
var (
	colorOK    = color.New(color.FgGreen)
	colorWarn  = color.New(color.FgYellow)
	colorMuted = color.New(color.FgWhite, color.Faint)
)

// App syllabusctl 运维命令行
type App struct {
	root       *cobra.Command
	configPath string
	noColor    bool
	out        io.Writer
	errOut     io.Writer
}

// NewApp 创建命令行应用
func NewApp() *App {
	a := &App{out: os.Stdout, errOut: os.Stderr}

	a.root = &cobra.Command{
		Use:   "syllabusctl",
		Short: "课程大纲运维工具",
		Long: `syllabusctl 是课程门户大纲编辑服务的运维工具。

可用于检查与规范化大纲 JSON、执行数据库迁移、管理课程、导出课程大纲以及签发测试令牌。`,
		SilenceUsage: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if a.noColor {
				color.NoColor = true
			}
		},
	}

	a.root.PersistentFlags().StringVar(&a.configPath, "config", "", "配置文件路径（默认查找 ./config/config.yaml）")
	a.root.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "禁用彩色输出")

	a.root.AddCommand(a.versionCmd())
	a.root.AddCommand(a.normalizeCmd())
	a.root.AddCommand(a.migrateCmd())
	a.root.AddCommand(a.exportCmd())
	a.root.AddCommand(a.courseCmd())
	a.root.AddCommand(a.tokenCmd())

	return a
}

// SetOutput 重定向标准输出与错误输出（测试使用）
func (a *App) SetOutput(out, errOut io.Writer) {
	a.out, a.errOut = out, errOut
	a.root.SetOut(out)
	a.root.SetErr(errOut)
}

// SetArgs 设置命令行参数（测试使用）
func (a *App) SetArgs(args []string) {
	a.root.SetArgs(args)
}

// Execute 执行命令
func (a *App) Execute() error {
	return a.root.Execute()
}

func (a *App) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "打印版本号",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(a.out, "syllabusctl %s (commit: %s)\n", Version, Commit)
		},
	}
}

// loadConfig 加载配置并初始化日志
func (a *App) loadConfig() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return nil, nil, err
	}
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("初始化日志失败: %w", err)
	}
	return cfg, logger, nil
}

// openDatabase 连接数据库，返回的 closeFn 用于释放连接
func openDatabase(cfg *config.Config, logger *zap.Logger) (*gorm.DB, func(), error) {
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("数据库连接失败: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("获取底层 sql.DB 失败: %w", err)
	}
	return db, func() { sqlDB.Close() }, nil
}

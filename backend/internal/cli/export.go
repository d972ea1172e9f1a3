package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"course-portal/backend/config"
	"course-portal/backend/internal/client"
	"course-portal/backend/internal/repository"
	"course-portal/backend/internal/service"
)

func (a *App) exportCmd() *cobra.Command {
	var (
		output  string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "export [courseID]",
		Short: "导出课程已保存的大纲为 Excel",
		Long: `按 editor.store 配置读取课程（数据库或远程课程 API），导出为 .xlsx。

示例:
  syllabusctl export 6f1c2f0e-2b1a-4d9e-9a57-0d6a4c3b2e10 -o cs101.xlsx`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			cfg, logger, err := a.loadConfig()
			if err != nil {
				return err
			}
			defer logger.Sync()

			var stores service.StoreFactory
			switch cfg.Editor.Store {
			case config.StoreRemote:
				r := cfg.Editor.Remote
				stores = service.RemoteStores(client.NewCourseAPI(r.BaseURL, r.Token, r.Timeout, logger))
			default:
				db, closeDB, err := openDatabase(cfg, logger)
				if err != nil {
					return err
				}
				defer closeDB()
				stores = service.DatabaseStores(repository.NewRepository(db), logger)
			}

			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			exporter := service.NewExportService(service.NewSyllabusService(stores, logger), logger)
			buf, filename, err := exporter.ExportSyllabus(ctx, args[0])
			if err != nil {
				return err
			}

			if output == "" {
				output = filename
			}
			if err := os.WriteFile(output, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("写入文件失败: %w", err)
			}
			colorOK.Fprintf(a.out, "已导出 %s ", output)
			colorMuted.Fprintf(a.out, "(%d bytes)\n", buf.Len())
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "输出文件路径（默认使用建议文件名）")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "读取课程超时时间")

	return cmd
}

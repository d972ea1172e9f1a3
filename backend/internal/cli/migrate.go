package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"course-portal/backend/pkg/database"
)

func (a *App) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "执行数据库迁移",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, logger, err := a.loadConfig()
			if err != nil {
				return err
			}
			defer logger.Sync()

			db, closeDB, err := openDatabase(cfg, logger)
			if err != nil {
				return err
			}
			defer closeDB()
			sqlDB, err := db.DB()
			if err != nil {
				return fmt.Errorf("获取底层 sql.DB 失败: %w", err)
			}

			version, err := database.RunMigrations(sqlDB, logger)
			if err != nil {
				return err
			}
			colorOK.Fprintf(a.out, "数据库迁移完成，当前版本 %d\n", version)
			return nil
		},
	}
}

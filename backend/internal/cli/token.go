package cli

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"course-portal/backend/pkg/jwt"
)

func (a *App) tokenCmd() *cobra.Command {
	var (
		userID string
		role   string
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "签发访问令牌（联调与测试使用）",
		Long: `使用配置中的 auth.jwt_secret 签发 Access Token。
正式环境的令牌由门户统一签发，本命令仅用于联调。

示例:
  syllabusctl token --role admin --ttl 1h`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if role != jwt.RoleAdmin && role != jwt.RoleStudent {
				return fmt.Errorf("role 只能是 %s 或 %s", jwt.RoleAdmin, jwt.RoleStudent)
			}
			if userID == "" {
				userID = uuid.New().String()
			} else if _, err := uuid.Parse(userID); err != nil {
				return fmt.Errorf("user 必须是 UUID: %w", err)
			}

			cfg, _, err := a.loadConfig()
			if err != nil {
				return err
			}
			if ttl > 0 {
				cfg.Auth.AccessTokenTTL = ttl
			}

			token, err := jwt.NewManager(&cfg.Auth).GenerateAccessToken(userID, role)
			if err != nil {
				return fmt.Errorf("签发令牌失败: %w", err)
			}
			fmt.Fprintln(a.out, token)
			colorMuted.Fprintf(a.errOut, "user=%s role=%s ttl=%s\n", userID, role, cfg.Auth.AccessTokenTTL)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "用户 ID（UUID，默认随机生成）")
	cmd.Flags().StringVar(&role, "role", jwt.RoleAdmin, "角色: admin 或 student")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "有效期（默认使用 auth.access_token_ttl）")

	return cmd
}

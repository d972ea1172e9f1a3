package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"course-portal/backend/config"
	"course-portal/backend/internal/api/handler"
	"course-portal/backend/internal/api/middleware"
	"course-portal/backend/internal/api/router"
	"course-portal/backend/internal/client"
	"course-portal/backend/internal/repository"
	"course-portal/backend/internal/service"
	"course-portal/backend/pkg/database"
	"course-portal/backend/pkg/jwt"
	applogger "course-portal/backend/pkg/logger"
	"course-portal/backend/pkg/redis"
)

func main() {
	// 1. 加载配置
	cfg, err := config.Load(os.Getenv("COURSE_CONFIG_FILE"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
		zap.String("editor_store", cfg.Editor.Store),
	)

	// 3. 连接 Redis（可选：连接失败时降级运行，不中断启动）
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，课程缓存与保存限流将不可用", zap.Error(err))
		rdb = nil
	}

	// 4. 选择课程持久化方式
	var (
		db     *gorm.DB
		stores service.StoreFactory
	)
	switch cfg.Editor.Store {
	case config.StoreRemote:
		api := client.NewCourseAPI(cfg.Editor.Remote.BaseURL, cfg.Editor.Remote.Token, cfg.Editor.Remote.Timeout, logger)
		stores = service.RemoteStores(api)
		logger.Info("使用远程课程 API", zap.String("base_url", cfg.Editor.Remote.BaseURL))
	default:
		db = mustOpenDatabase(cfg, logger)
		repo := repository.NewRepository(db)
		if rdb != nil {
			repo = repo.WithCache(rdb, cfg.Editor.CacheTTL, logger)
		}
		stores = service.DatabaseStores(repo, logger)
	}

	// 5. 初始化 JWT 管理器
	jwtMgr := jwt.NewManager(&cfg.Auth)

	// 6. 依赖注入: Store → Service → Handler
	svc := service.NewService(cfg, stores, logger)
	h := handler.NewHandler(svc)

	janitorCtx, stopJanitor := context.WithCancel(context.Background())
	defer stopJanitor()
	svc.Editor.StartJanitor(janitorCtx, time.Minute)

	// 7. 初始化路由（rdb 为 nil 时不能以带类型的 nil 传入接口）
	var limiter middleware.RateLimiter
	if rdb != nil {
		limiter = rdb
	}
	engine := router.Setup(cfg, h, jwtMgr, limiter, logger)

	// 8. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 9. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}
	stopJanitor()

	// 关闭数据库连接
	if db != nil {
		if closeDB, _ := db.DB(); closeDB != nil {
			closeDB.Close()
		}
	}

	// 关闭 Redis 连接
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("服务器已关闭")
}

// mustOpenDatabase 连接数据库并执行迁移，失败时退出
func mustOpenDatabase(cfg *config.Config, logger *zap.Logger) *gorm.DB {
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	logger.Info("数据库连接成功")

	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
	}
	if _, err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}
	return db
}

package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"course-portal/backend/config"
	"course-portal/backend/internal/api/handler"
	"course-portal/backend/internal/api/middleware"
	"course-portal/backend/pkg/jwt"
)

// Setup 初始化并返回 Gin 路由引擎
// limiter 为 nil 时保存接口不限流
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, limiter middleware.RateLimiter, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr))
		{
			// 课程大纲（只读，所有登录用户）
			course := authorized.Group("/courses/:id/syllabus")
			{
				course.GET("", h.Syllabus.GetSaved)
				course.GET("/export", middleware.RequireSyllabusEditor(), h.Export.ExportSyllabus)
			}

			// 课程大纲编辑器（仅管理员）
			ed := authorized.Group("/courses/:id/syllabus/editor")
			ed.Use(middleware.RequireSyllabusEditor())
			{
				ed.POST("", h.Syllabus.OpenEditor)
				ed.GET("", h.Syllabus.GetEditor)
				ed.DELETE("", h.Syllabus.CloseEditor)

				ed.POST("/modal/add", h.Syllabus.OpenAdd)
				ed.POST("/modal/edit/:week", h.Syllabus.OpenEdit)
				ed.PUT("/modal", h.Syllabus.UpdateModal)
				ed.POST("/modal/commit", h.Syllabus.CommitModal)
				ed.DELETE("/modal", h.Syllabus.CancelModal)

				ed.POST("/entries/:week/move", h.Syllabus.MoveEntry)
				ed.DELETE("/entries/:week", h.Syllabus.DeleteEntry)
				ed.POST("/discard", h.Syllabus.Discard)
				ed.POST("/save",
					middleware.RateLimit(limiter, cfg.Editor.SaveRateLimit, cfg.Editor.SaveRateWindow, 17207),
					h.Syllabus.Save,
				)
			}
		}
	}

	return r
}

package handler

import (
	"github.com/gin-gonic/gin"

	"course-portal/backend/internal/api/middleware"
	"course-portal/backend/pkg/response"
)

// MustGetUserID 读取 JWTAuth 注入的操作者 ID；缺失时写入 401，调用方应直接 return
func MustGetUserID(c *gin.Context) (string, bool) {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return p.UserID, true
}

package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"course-portal/backend/pkg/jwt"
	"course-portal/backend/pkg/response"
)

const principalKey = "principal"

// Principal 当前请求的操作者，由 JWTAuth 从门户签发的 Access Token 中解析
type Principal struct {
	UserID string
	Role   string
}

// CanEditSyllabus 是否可编辑、导出课程大纲（仅管理员）
func (p Principal) CanEditSyllabus() bool {
	return p.Role == jwt.RoleAdmin
}

// SetPrincipal 将操作者写入上下文
func SetPrincipal(c *gin.Context, p Principal) {
	c.Set(principalKey, p)
}

// GetPrincipal 读取当前操作者；未认证时 ok=false
func GetPrincipal(c *gin.Context) (Principal, bool) {
	v, exists := c.Get(principalKey)
	if !exists {
		return Principal{}, false
	}
	p, ok := v.(Principal)
	if !ok || p.UserID == "" {
		return Principal{}, false
	}
	return p, true
}

// JWTAuth 校验 Authorization: Bearer <token> 并注入 Principal
func JWTAuth(jwtMgr *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, msg := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			abortUnauthorized(c, msg)
			return
		}

		claims, err := jwtMgr.ParseToken(token)
		switch {
		case err != nil:
			abortUnauthorized(c, "Token 无效或已过期")
			return
		case claims.TokenType != jwt.TokenTypeAccess:
			abortUnauthorized(c, "Token 类型无效")
			return
		case claims.UserID == "":
			abortUnauthorized(c, "Token 缺少用户标识")
			return
		}

		SetPrincipal(c, Principal{UserID: claims.UserID, Role: claims.Role})
		c.Next()
	}
}

// RequireSyllabusEditor 限制为可编辑课程大纲的操作者，须在 JWTAuth 之后使用
func RequireSyllabusEditor() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := GetPrincipal(c)
		if !ok {
			abortUnauthorized(c, "未认证")
			return
		}
		if !p.CanEditSyllabus() {
			response.Forbidden(c, 10003, "仅管理员可编辑课程大纲")
			c.Abort()
			return
		}
		c.Next()
	}
}

// bearerToken 提取令牌；失败时返回空串与提示信息
func bearerToken(header string) (string, string) {
	if header == "" {
		return "", "缺少认证头"
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || scheme != "Bearer" || strings.TrimSpace(token) == "" {
		return "", "认证头格式无效"
	}
	return strings.TrimSpace(token), ""
}

func abortUnauthorized(c *gin.Context, msg string) {
	response.Unauthorized(c, 10002, msg)
	c.Abort()
}

package middleware

import (
	"net/http"
	"strings"

	"family_hub_server/pkg/util/jwt"

	"github.com/gin-gonic/gin"
)

// ContextUserID 认证通过后写入 gin.Context 的用户 ID 键
const ContextUserID = "user_id"

// JWTAuth JWT 认证中间件
// 验证 Authorization 头中的 Access Token 并将用户 ID 存入上下文
func JWTAuth() gin.HandlerFunc {
	return authenticate(false)
}

// JWTAuthWithQuery 额外接受 ?token= 参数，浏览器建立 WebSocket 时无法设置请求头
func JWTAuthWithQuery() gin.HandlerFunc {
	return authenticate(true)
}

func authenticate(allowQuery bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ""
		if authHeader := c.GetHeader("Authorization"); authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				abort(c, http.StatusUnauthorized, "Invalid authorization header, use Bearer token")
				return
			}
			token = strings.TrimSpace(parts[1])
		} else if allowQuery {
			token = c.Query("token")
		}
		if token == "" {
			abort(c, http.StatusUnauthorized, "Not authorized, no token")
			return
		}

		claims, err := jwt.ParseToken(token)
		if err != nil {
			abort(c, http.StatusUnauthorized, "Not authorized, token failed")
			return
		}
		if claims.Subject != jwt.SubjectAccessToken {
			abort(c, http.StatusUnauthorized, "Access token required")
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Next()
	}
}

func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"message": message,
	})
}

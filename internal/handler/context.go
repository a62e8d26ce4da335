package handler

import (
	"family_hub_server/internal/infrastructure/middleware"

	"github.com/gin-gonic/gin"
)

// currentUserID 读取 JWT 中间件写入的用户 ID
func currentUserID(c *gin.Context) string {
	return c.GetString(middleware.ContextUserID)
}

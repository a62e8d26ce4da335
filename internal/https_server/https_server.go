// Package https_server 提供 HTTP/HTTPS 服务器的初始化和配置
// 负责创建 Gin 引擎实例并配置中间件、静态资源和路由
package https_server

import (
	"time"

	"family_hub_server/internal/config"
	"family_hub_server/internal/handler"
	"family_hub_server/internal/infrastructure/logger"
	"family_hub_server/internal/infrastructure/middleware"
	"family_hub_server/internal/router"
	"family_hub_server/internal/storage"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Options 构建 Gin 引擎所需的参数
type Options struct {
	Config   *config.Config
	Handlers *handler.Handlers
	// UploadDir 本地存储目录，非空时挂载到 /uploads
	UploadDir string
}

// Init 初始化 HTTP/HTTPS 服务器并返回 Gin 引擎实例
// 配置顺序：
//  1. 创建 Gin 引擎（空白，不含默认中间件）
//  2. 注册日志和恢复中间件
//  3. 配置 CORS 跨域规则和可选的 HTTPS 重定向
//  4. 映射本地上传目录
//  5. 注册业务路由
func Init(opts Options) *gin.Engine {
	cfg := opts.Config
	engine := gin.New()

	engine.Use(logger.GinLogger())
	engine.Use(logger.GinRecovery(true))

	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
		corsConfig.AllowCredentials = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	corsConfig.MaxAge = 12 * time.Hour
	engine.Use(cors.New(corsConfig))

	// 由 Nginx 等反向代理处理 SSL 时保持关闭
	if cfg.SSLRedirect {
		engine.Use(middleware.TlsHandler(cfg.MainConfig.Host, cfg.MainConfig.Port, cfg.Mode != "release"))
	}

	if opts.UploadDir != "" {
		engine.Static(storage.URLPrefix, opts.UploadDir)
	}

	rt := router.NewRouter(opts.Handlers, cfg.MaxUploadMB)
	rt.RegisterRoutes(engine)

	return engine
}

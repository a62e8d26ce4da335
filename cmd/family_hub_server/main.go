package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"family_hub_server/internal/config"
	"family_hub_server/internal/dao/rdb"
	myredis "family_hub_server/internal/dao/redis"
	"family_hub_server/internal/gateway/websocket"
	"family_hub_server/internal/handler"
	"family_hub_server/internal/https_server"
	"family_hub_server/internal/infrastructure/logger"
	"family_hub_server/internal/infrastructure/mailer"
	"family_hub_server/internal/infrastructure/mq"
	"family_hub_server/internal/service"
	"family_hub_server/internal/storage"
	"family_hub_server/pkg/util/jwt"
	"family_hub_server/pkg/util/snowflake"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// 1. 加载配置
	conf := config.GetConfig()
	if conf.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 2. 初始化日志
	if err := logger.Init(&conf.LogConfig, conf.Mode); err != nil {
		log.Fatalf("init logger failed: %v", err)
	}
	defer func() { _ = zap.L().Sync() }()
	zap.L().Info("日志初始化成功")

	if err := handler.InitTrans(); err != nil {
		zap.L().Fatal("init validator translator failed", zap.Error(err))
	}

	// 3. 初始化 JWT 和雪花算法
	jwt.Init(conf.JWTConfig.Secret, conf.AccessTokenExpiry, conf.RefreshTokenExpiry)
	snowflake.Init(conf.MachineID)

	// 4. 初始化数据库和缓存
	repos := rdb.Init(&conf.DatabaseConfig)
	cache := myredis.Init(&conf.RedisConfig)
	defer cache.Close()

	// 5. 初始化对象存储和邮件
	ctx := context.Background()
	store, err := storage.New(ctx, &conf.StorageConfig, conf.MainConfig.PublicBaseURL)
	if err != nil {
		zap.L().Fatal("storage init failed", zap.Error(err))
	}
	mail, err := mailer.Init(ctx, &conf.MailConfig)
	if err != nil {
		zap.L().Fatal("mail init failed", zap.Error(err))
	}

	// 6. 动态推送：消息代理消费后投递给 WebSocket Hub
	hub := websocket.NewHub()
	broker := mq.Init(&conf.KafkaConfig, hub)
	broker.Start()

	// 7. 依赖注入
	services := service.NewServices(service.Dependencies{
		Repos:         repos,
		Cache:         cache,
		Storage:       store,
		Mailer:        mail,
		Publisher:     broker,
		PresignExpiry: time.Duration(conf.PresignExpiry) * time.Minute,
	})
	handlers := handler.NewHandlers(services, hub)

	uploadDir := ""
	if local, ok := store.(*storage.LocalStorage); ok {
		uploadDir = local.Root()
	}
	engine := https_server.Init(https_server.Options{Config: conf, Handlers: handlers, UploadDir: uploadDir})

	// 8. 启动服务
	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", conf.MainConfig.Host, conf.MainConfig.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		zap.L().Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Fatal("server running fault", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zap.L().Info("关闭服务器...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("server shutdown", zap.Error(err))
	}
	broker.Close()
	hub.Close()

	zap.L().Info("服务器已关闭")
}

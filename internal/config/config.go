// Package config 提供应用程序的配置加载和管理功能
// 使用 TOML 格式的配置文件，支持多路径查找，敏感项可由环境变量（含 .env 文件）覆盖
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// MainConfig 主配置，包含应用基本信息
type MainConfig struct {
	AppName       string `toml:"appName"`       // 应用名称
	Host          string `toml:"host"`          // 监听地址，如 "0.0.0.0"
	Port          int    `toml:"port"`          // 监听端口，如 8000
	Mode          string `toml:"mode"`          // 运行模式：dev / release
	PublicBaseURL string `toml:"publicBaseURL"` // 对外访问地址，用于拼接本地存储文件 URL
}

// DatabaseConfig 关系型数据库连接配置
type DatabaseConfig struct {
	Driver       string `toml:"driver"`       // mysql / postgres / sqlite
	Host         string `toml:"host"`         // 数据库地址
	Port         int    `toml:"port"`         // 数据库端口
	User         string `toml:"user"`         // 用户名
	Password     string `toml:"password"`     // 密码
	DatabaseName string `toml:"databaseName"` // 库名
	SSLMode      string `toml:"sslMode"`      // postgres sslmode
	Path         string `toml:"path"`         // sqlite 文件路径
}

// RedisConfig Redis 连接配置，Host 为空时使用进程内缓存
type RedisConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	Password string `toml:"password"`
	Db       int    `toml:"db"`
}

// LogConfig 日志配置，使用 lumberjack 进行日志轮转
type LogConfig struct {
	LogPath    string `toml:"logPath"`    // 日志文件存储目录
	FileName   string `toml:"fileName"`   // 日志文件名
	MaxSize    int    `toml:"maxSize"`    // 单个日志文件最大大小（MB）
	MaxBackups int    `toml:"maxBackups"` // 保留旧日志文件的最大个数
	MaxAge     int    `toml:"maxAge"`     // 保留旧日志文件的最大天数
	Level      string `toml:"level"`      // 日志级别：debug, info, warn, error
}

// KafkaConfig 动态消息总线配置
type KafkaConfig struct {
	ActivityMode  string        `toml:"activityMode"`  // "channel" 或 "kafka"
	HostPort      string        `toml:"hostPort"`      // Kafka 地址，如 "localhost:9092"
	ActivityTopic string        `toml:"activityTopic"` // 家庭动态主题
	GroupID       string        `toml:"groupId"`       // 消费者组
	Timeout       time.Duration `toml:"timeout"`       // 超时时间（秒）
}

// StorageConfig 上传文件存储配置
type StorageConfig struct {
	Driver          string `toml:"driver"`          // local / s3
	LocalPath       string `toml:"localPath"`       // 本地存储目录
	Bucket          string `toml:"bucket"`          // S3 桶名
	Region          string `toml:"region"`          // S3 区域
	Endpoint        string `toml:"endpoint"`        // S3 兼容服务地址（MinIO 等），留空使用 AWS
	AccessKeyID     string `toml:"accessKeyID"`     // 访问密钥 ID
	SecretAccessKey string `toml:"secretAccessKey"` // 访问密钥
	PublicBaseURL   string `toml:"publicBaseURL"`   // 对象公开访问前缀
	UsePathStyle    bool   `toml:"usePathStyle"`    // MinIO 需要 path-style
	PresignExpiry   int    `toml:"presignExpiry"`   // 预签名链接有效期（分钟）
}

// MailConfig SES 邮件通知配置，FromEmail 为空时只记录日志
type MailConfig struct {
	Region     string `toml:"region"`
	FromEmail  string `toml:"fromEmail"`
	FromName   string `toml:"fromName"`
	AppBaseURL string `toml:"appBaseURL"` // 邮件中跳转链接的前缀
}

// JWTConfig JWT 认证配置
type JWTConfig struct {
	Secret             string `toml:"secret"`             // 签名密钥
	AccessTokenExpiry  int    `toml:"accessTokenExpiry"`  // Access Token 有效期（分钟）
	RefreshTokenExpiry int    `toml:"refreshTokenExpiry"` // Refresh Token 有效期（小时）
}

// SnowflakeConfig 雪花算法配置
type SnowflakeConfig struct {
	MachineID int64 `toml:"machineId"` // 节点 ID，范围 0-1023
}

// SecurityConfig HTTP 安全相关配置
type SecurityConfig struct {
	SSLRedirect    bool     `toml:"sslRedirect"`    // 是否将 HTTP 重定向到 HTTPS
	AllowedOrigins []string `toml:"allowedOrigins"` // CORS 白名单，空表示全部
	MaxUploadMB    int      `toml:"maxUploadMB"`    // 上传大小上限
}

// Config 应用程序总配置，聚合所有子配置
type Config struct {
	MainConfig      `toml:"mainConfig"`
	DatabaseConfig  `toml:"databaseConfig"`
	RedisConfig     `toml:"redisConfig"`
	LogConfig       `toml:"logConfig"`
	KafkaConfig     `toml:"kafkaConfig"`
	StorageConfig   `toml:"storageConfig"`
	MailConfig      `toml:"mailConfig"`
	JWTConfig       `toml:"jwtConfig"`
	SnowflakeConfig `toml:"snowflakeConfig"`
	SecurityConfig  `toml:"securityConfig"`
}

var (
	config     *Config
	configOnce sync.Once
)

// searchPaths 候选配置文件路径（优先加载本地配置）
var searchPaths = []string{
	"configs/config_local.toml",
	"configs/config.toml",
	"../../configs/config_local.toml",
	"../../configs/config.toml",
}

// Load 从候选路径加载配置文件，然后应用 .env / 环境变量覆盖和默认值
// 找不到配置文件不是错误，此时完全使用默认值
func Load(paths ...string) (*Config, error) {
	if len(paths) == 0 {
		paths = searchPaths
	}
	cfg := new(Config)
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("decode config %s: %w", path, err)
		}
		break
	}

	// .env 不存在时忽略
	_ = godotenv.Load()
	applyEnv(cfg)
	applyDefaults(cfg)
	return cfg, nil
}

// GetConfig 获取全局配置实例（单例模式），首次调用时加载
func GetConfig() *Config {
	configOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "load config failed, using defaults: %v\n", err)
			cfg = new(Config)
			applyDefaults(cfg)
		}
		config = cfg
	})
	return config
}

// applyEnv 使用 FAMILYHUB_* 环境变量覆盖部署相关配置
func applyEnv(cfg *Config) {
	setString(&cfg.MainConfig.Mode, "FAMILYHUB_MODE")
	setString(&cfg.MainConfig.PublicBaseURL, "FAMILYHUB_PUBLIC_BASE_URL")
	setInt(&cfg.MainConfig.Port, "FAMILYHUB_PORT")

	setString(&cfg.DatabaseConfig.Driver, "FAMILYHUB_DB_DRIVER")
	setString(&cfg.DatabaseConfig.Host, "FAMILYHUB_DB_HOST")
	setInt(&cfg.DatabaseConfig.Port, "FAMILYHUB_DB_PORT")
	setString(&cfg.DatabaseConfig.User, "FAMILYHUB_DB_USER")
	setString(&cfg.DatabaseConfig.Password, "FAMILYHUB_DB_PASSWORD")
	setString(&cfg.DatabaseConfig.DatabaseName, "FAMILYHUB_DB_NAME")
	setString(&cfg.DatabaseConfig.Path, "FAMILYHUB_DB_PATH")

	setString(&cfg.RedisConfig.Host, "FAMILYHUB_REDIS_HOST")
	setString(&cfg.RedisConfig.Password, "FAMILYHUB_REDIS_PASSWORD")

	setString(&cfg.KafkaConfig.ActivityMode, "FAMILYHUB_ACTIVITY_MODE")
	setString(&cfg.KafkaConfig.HostPort, "FAMILYHUB_KAFKA_HOST_PORT")

	setString(&cfg.StorageConfig.Driver, "FAMILYHUB_STORAGE_DRIVER")
	setString(&cfg.StorageConfig.Bucket, "FAMILYHUB_S3_BUCKET")
	setString(&cfg.StorageConfig.Region, "FAMILYHUB_S3_REGION")
	setString(&cfg.StorageConfig.Endpoint, "FAMILYHUB_S3_ENDPOINT")
	setString(&cfg.StorageConfig.AccessKeyID, "FAMILYHUB_S3_ACCESS_KEY")
	setString(&cfg.StorageConfig.SecretAccessKey, "FAMILYHUB_S3_SECRET_KEY")

	setString(&cfg.MailConfig.FromEmail, "FAMILYHUB_MAIL_FROM")
	setString(&cfg.MailConfig.Region, "FAMILYHUB_MAIL_REGION")

	setString(&cfg.JWTConfig.Secret, "FAMILYHUB_JWT_SECRET")
}

func applyDefaults(cfg *Config) {
	if cfg.AppName == "" {
		cfg.AppName = "family_hub_server"
	}
	if cfg.MainConfig.Host == "" {
		cfg.MainConfig.Host = "0.0.0.0"
	}
	if cfg.MainConfig.Port == 0 {
		cfg.MainConfig.Port = 8000
	}
	if cfg.Mode == "" {
		cfg.Mode = "dev"
	}
	if cfg.MainConfig.PublicBaseURL == "" {
		cfg.MainConfig.PublicBaseURL = fmt.Sprintf("http://localhost:%d", cfg.MainConfig.Port)
	}
	cfg.MainConfig.PublicBaseURL = strings.TrimRight(cfg.MainConfig.PublicBaseURL, "/")

	if cfg.DatabaseConfig.Driver == "" {
		cfg.DatabaseConfig.Driver = "sqlite"
	}
	if cfg.DatabaseConfig.Path == "" {
		cfg.DatabaseConfig.Path = "family_hub.db"
	}
	if cfg.RedisConfig.Port == 0 {
		cfg.RedisConfig.Port = 6379
	}
	if cfg.LogPath == "" {
		cfg.LogPath = "logs"
	}

	if cfg.ActivityMode == "" {
		cfg.ActivityMode = "channel"
	}
	if cfg.ActivityTopic == "" {
		cfg.ActivityTopic = "family_activity"
	}
	if cfg.GroupID == "" {
		cfg.GroupID = "family_hub"
	}
	if cfg.KafkaConfig.Timeout == 0 {
		cfg.KafkaConfig.Timeout = 10
	}

	if cfg.StorageConfig.Driver == "" {
		cfg.StorageConfig.Driver = "local"
	}
	if cfg.LocalPath == "" {
		cfg.LocalPath = "uploads"
	}
	if cfg.PresignExpiry == 0 {
		cfg.PresignExpiry = 15
	}

	if cfg.MailConfig.FromName == "" {
		cfg.MailConfig.FromName = "Family Hub"
	}
	if cfg.MailConfig.AppBaseURL == "" {
		cfg.MailConfig.AppBaseURL = cfg.MainConfig.PublicBaseURL
	}

	if cfg.JWTConfig.Secret == "" {
		cfg.JWTConfig.Secret = "family-hub-dev-secret-change-me"
	}
	if cfg.AccessTokenExpiry == 0 {
		cfg.AccessTokenExpiry = 60
	}
	if cfg.RefreshTokenExpiry == 0 {
		cfg.RefreshTokenExpiry = 168
	}

	if cfg.MaxUploadMB == 0 {
		cfg.MaxUploadMB = 25
	}
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

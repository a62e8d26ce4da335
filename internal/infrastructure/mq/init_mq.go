package mq

import (
	"strings"

	"family_hub_server/internal/config"

	"go.uber.org/zap"
)

// Init 根据 kafkaConfig.activityMode 选择消息代理
func Init(cfg *config.KafkaConfig, sink Sink) Broker {
	if strings.EqualFold(cfg.ActivityMode, "kafka") && cfg.HostPort != "" {
		zap.L().Info("activity bus uses kafka", zap.String("broker", cfg.HostPort), zap.String("topic", cfg.ActivityTopic))
		return NewKafkaBroker(cfg, sink)
	}
	return NewChannelBroker(sink)
}

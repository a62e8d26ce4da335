package mq

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"family_hub_server/internal/config"
	"family_hub_server/pkg/errorx"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// kafkaWriter / kafkaReader 是 kafka-go 中用到的方法
type kafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type kafkaReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// KafkaBroker 分布式模式，多实例部署时每个实例都消费全部动态
type KafkaBroker struct {
	writer kafkaWriter
	reader kafkaReader
	sink   Sink
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

// NewKafkaBroker 按配置创建 Writer 和 Reader
func NewKafkaBroker(cfg *config.KafkaConfig, sink Sink) *KafkaBroker {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.HostPort),
		Topic:                  cfg.ActivityTopic,
		Balancer:               &kafka.Hash{},
		WriteTimeout:           cfg.Timeout * time.Second,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        []string{cfg.HostPort},
		Topic:          cfg.ActivityTopic,
		GroupID:        cfg.GroupID,
		CommitInterval: time.Second,
		StartOffset:    kafka.LastOffset,
	})
	return newKafkaBroker(writer, reader, sink)
}

func newKafkaBroker(writer kafkaWriter, reader kafkaReader, sink Sink) *KafkaBroker {
	ctx, cancel := context.WithCancel(context.Background())
	return &KafkaBroker{writer: writer, reader: reader, sink: sink, ctx: ctx, cancel: cancel}
}

// Publish 以 ActorID 作为分区 Key，同一用户的动态保持顺序
func (b *KafkaBroker) Publish(ctx context.Context, activity *Activity) error {
	if activity.CreatedAt.IsZero() {
		activity.CreatedAt = time.Now()
	}
	value, err := json.Marshal(activity)
	if err != nil {
		return errorx.Wrap(err, errorx.CodeServerBusy, "marshal activity")
	}
	if err := b.writer.WriteMessages(ctx, kafka.Message{Key: []byte(activity.ActorID), Value: value}); err != nil {
		return errorx.Wrap(err, errorx.CodeExternalError, "kafka write activity")
	}
	return nil
}

// Start 启动消费协程
func (b *KafkaBroker) Start() {
	b.wg.Add(1)
	go b.consume()
	zap.L().Info("activity kafka broker started")
}

func (b *KafkaBroker) consume() {
	defer b.wg.Done()
	for {
		msg, err := b.reader.ReadMessage(b.ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || b.ctx.Err() != nil {
				return
			}
			zap.L().Error("kafka read activity failed", zap.Error(err))
			select {
			case <-time.After(time.Second):
				continue
			case <-b.ctx.Done():
				return
			}
		}

		var activity Activity
		if err := json.Unmarshal(msg.Value, &activity); err != nil {
			zap.L().Warn("drop malformed activity", zap.Int64("offset", msg.Offset), zap.Error(err))
			continue
		}
		deliver(b.sink, &activity)
	}
}

// Close 停止消费并关闭连接
func (b *KafkaBroker) Close() {
	b.once.Do(func() {
		b.cancel()
		b.wg.Wait()
		if err := b.writer.Close(); err != nil {
			zap.L().Error("close kafka writer", zap.Error(err))
		}
		if err := b.reader.Close(); err != nil {
			zap.L().Error("close kafka reader", zap.Error(err))
		}
	})
}

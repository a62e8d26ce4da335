package mq

import (
	"context"
	"sync"
	"time"

	"family_hub_server/pkg/errorx"

	"go.uber.org/zap"
)

const channelSize = 1024

// ChannelBroker 单机模式下基于 channel 的消息代理
type ChannelBroker struct {
	transmit  chan *Activity
	sink      Sink
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewChannelBroker 创建 ChannelBroker
func NewChannelBroker(sink Sink) *ChannelBroker {
	return &ChannelBroker{
		transmit: make(chan *Activity, channelSize),
		sink:     sink,
		done:     make(chan struct{}),
	}
}

// Publish 通道已满时阻塞直到 ctx 结束
func (b *ChannelBroker) Publish(ctx context.Context, activity *Activity) error {
	if activity.CreatedAt.IsZero() {
		activity.CreatedAt = time.Now()
	}
	select {
	case <-b.done:
		return errorx.New(errorx.CodeServerBusy, "activity broker closed")
	default:
	}
	select {
	case b.transmit <- activity:
		return nil
	case <-b.done:
		return errorx.New(errorx.CodeServerBusy, "activity broker closed")
	case <-ctx.Done():
		return errorx.Wrap(ctx.Err(), errorx.CodeServerBusy, "publish activity")
	}
}

// Start 启动消费协程
func (b *ChannelBroker) Start() {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		for {
			select {
			case activity := <-b.transmit:
				deliver(b.sink, activity)
			case <-b.done:
				// 投递关闭前已进入通道的动态
				for {
					select {
					case activity := <-b.transmit:
						deliver(b.sink, activity)
					default:
						return
					}
				}
			}
		}
	}()
	zap.L().Info("activity channel broker started")
}

// Close 停止消费协程
func (b *ChannelBroker) Close() {
	b.closeOnce.Do(func() {
		close(b.done)
		b.wg.Wait()
	})
}

// deliver 隔离 Sink 中的 panic，避免消费循环退出
func deliver(sink Sink, activity *Activity) {
	if sink == nil || activity == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			zap.L().Error("activity sink panic", zap.Any("recover", r), zap.String("type", activity.Type))
		}
	}()
	sink.Deliver(activity)
}

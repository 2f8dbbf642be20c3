// Package hub
// channel_broker.go
// 核心职责：单机模式下的事件代理，不依赖外部消息队列
package hub

import (
	"context"
	"errors"
	"sync"

	"kama_group_client/pkg/constants"
)

// ErrBrokerClosed 代理已关闭
var ErrBrokerClosed = errors.New("broker closed")

// ChannelBroker 基于带缓冲 channel 的事件代理
type ChannelBroker struct {
	events    chan RoomEvent
	done      chan struct{}
	closeOnce sync.Once
}

// NewChannelBroker 创建 ChannelBroker
func NewChannelBroker() *ChannelBroker {
	return &ChannelBroker{
		events: make(chan RoomEvent, constants.CHANNEL_SIZE),
		done:   make(chan struct{}),
	}
}

// Publish 缓冲区满时阻塞，直到 ctx 结束或代理关闭
func (b *ChannelBroker) Publish(ctx context.Context, ev RoomEvent) error {
	select {
	case <-b.done:
		return ErrBrokerClosed
	default:
	}
	select {
	case b.events <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-b.done:
		return ErrBrokerClosed
	}
}

// Start 消费循环
func (b *ChannelBroker) Start(ctx context.Context, deliver func(RoomEvent)) {
	for {
		select {
		case ev := <-b.events:
			deliver(ev)
		case <-ctx.Done():
			return
		case <-b.done:
			return
		}
	}
}

// Close 可以重复调用
func (b *ChannelBroker) Close() {
	b.closeOnce.Do(func() { close(b.done) })
}

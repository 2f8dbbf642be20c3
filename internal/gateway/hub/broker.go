// Package hub 实现开发网关的聊天推送
// broker.go
// 核心职责：定义房间事件的发布/消费接口，支持 Channel 和 Kafka 两种实现
package hub

import "context"

// RoomEvent 需要推送给某个房间全部订阅者的事件
// Frame 是已经编码好的入站帧，订阅者收到后原样写入 websocket
type RoomEvent struct {
	RoomID int64  `json:"roomId"`
	Frame  []byte `json:"frame"`
}

// MessageBroker 房间事件代理
// ChannelBroker 用于单机，KafkaBroker 用于多个网关节点共享同一组房间
type MessageBroker interface {
	// Publish 发布事件，发送者自己也会通过订阅收到
	Publish(ctx context.Context, ev RoomEvent) error
	// Start 消费事件并交给 deliver，直到 ctx 结束或 Close
	Start(ctx context.Context, deliver func(RoomEvent))
	// Close 关闭代理资源
	Close()
}

// Package hub
// server.go
// 核心职责：聊天推送的聚合结构和生命周期管理
// 根据 messageMode 选择 ChannelBroker 或 KafkaBroker
package hub

import (
	"context"

	"kama_group_client/internal/config"
	"kama_group_client/internal/gateway/service"
	"kama_group_client/internal/protocol"

	"go.uber.org/zap"
)

// ChatServer 聊天推送服务器
type ChatServer struct {
	Broker MessageBroker
	Hub    *Hub

	rooms    service.ChatRoomService
	messages service.MessageService
	mode     string

	cancel context.CancelFunc
	done   chan struct{}
}

// ChatServerConfig 聊天服务器配置
type ChatServerConfig struct {
	Mode     string // "channel" 或 "kafka"
	Kafka    config.KafkaConfig
	Services *service.Services
}

// NewChatServer 创建聊天服务器，未知模式按 channel 处理
func NewChatServer(cfg ChatServerConfig) *ChatServer {
	cs := &ChatServer{
		Hub:      NewHub(),
		rooms:    cfg.Services.ChatRoom,
		messages: cfg.Services.Message,
		mode:     cfg.Mode,
	}
	if cfg.Mode == "kafka" {
		cs.Broker = NewKafkaBroker(cfg.Kafka)
	} else {
		cs.mode = "channel"
		cs.Broker = NewChannelBroker()
	}
	return cs
}

// Start 在后台启动代理的消费循环
func (cs *ChatServer) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	cs.cancel = cancel
	cs.done = make(chan struct{})
	go func() {
		defer close(cs.done)
		cs.Broker.Start(ctx, cs.Hub.Deliver)
	}()
	zap.L().Info("chat server started", zap.String("mode", cs.mode))
}

// Close 停止消费循环并关闭代理
func (cs *ChatServer) Close() {
	if cs.cancel != nil {
		cs.cancel()
		<-cs.done
	}
	cs.Broker.Close()
}

// publish 编码入站帧并发布到房间
func (cs *ChatServer) publish(ctx context.Context, roomID int64, frame protocol.InboundFrame, requestID string) error {
	data, err := protocol.Encode(frame, requestID)
	if err != nil {
		return err
	}
	return cs.Broker.Publish(ctx, RoomEvent{RoomID: roomID, Frame: data})
}

// Package hub
// ws_gateway.go
// 核心职责：WebSocket 连接生命周期管理
// 1. 升级 HTTP 连接并创建 UserConn
// 2. 读协程：解析客户端帧，调用 Service，把结果发布到代理
// 3. 写协程：把订阅推送和错误帧写回客户端
package hub

import (
	"context"
	"net/http"
	"sync"
	"time"

	"kama_group_client/internal/model"
	"kama_group_client/internal/protocol"
	"kama_group_client/pkg/constants"
	"kama_group_client/pkg/errorx"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  2048,
	WriteBufferSize: 2048,
	// 开发网关允许任意来源
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// UserConn 一个已认证用户的 WebSocket 连接
type UserConn struct {
	Conn     *websocket.Conn
	UserID   int64
	SendBack chan []byte // 待写回客户端的帧

	server    *ChatServer
	done      chan struct{}
	closeOnce sync.Once
}

// NewClientInit 升级连接并启动读写协程，userID 由认证中间件给出
func (cs *ChatServer) NewClientInit(c *gin.Context, userID int64) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		zap.L().Error("ws upgrade failed", zap.Error(err))
		return
	}
	client := &UserConn{
		Conn:     conn,
		UserID:   userID,
		SendBack: make(chan []byte, constants.CHANNEL_SIZE),
		server:   cs,
		done:     make(chan struct{}),
	}
	go client.Write()
	go client.Read()
	zap.L().Info("ws connected", zap.Int64("user_id", userID))
}

// Read 读取客户端帧直到连接断开
func (c *UserConn) Read() {
	defer func() {
		c.server.Hub.Unregister(c)
		c.Close()
		zap.L().Info("ws disconnected", zap.Int64("user_id", c.UserID))
	}()
	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				zap.L().Warn("ws read failed", zap.Int64("user_id", c.UserID), zap.Error(err))
			}
			return
		}
		c.handle(context.Background(), raw)
	}
}

// Write 把 SendBack 中的帧写回客户端
func (c *UserConn) Write() {
	for {
		select {
		case frame := <-c.SendBack:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(constants.WS_WRITE_TIMEOUT))
			if err := c.Conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				zap.L().Warn("ws write failed", zap.Int64("user_id", c.UserID), zap.Error(err))
				c.Close()
				return
			}
		case <-c.done:
			return
		}
	}
}

// Close 关闭连接，可以重复调用
func (c *UserConn) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.Conn.Close()
	})
}

// enqueue 缓冲已满时返回 false
func (c *UserConn) enqueue(frame []byte) bool {
	select {
	case <-c.done:
		return true
	default:
	}
	select {
	case c.SendBack <- frame:
		return true
	case <-c.done:
		return true
	default:
		return false
	}
}

// handle 处理一个客户端帧，失败时只给发送者回一个错误帧
func (c *UserConn) handle(ctx context.Context, raw []byte) {
	frame, requestID, err := protocol.DecodeOutbound(raw)
	if err != nil {
		zap.L().Warn("ws bad frame", zap.Int64("user_id", c.UserID), zap.Error(err))
		c.replyError(requestID, errorx.Wrap(err, errorx.CodeInvalidParam, "无法解析的帧"))
		return
	}

	switch f := frame.(type) {
	case protocol.SubscribeFrame:
		err = c.subscribe(ctx, f)
	case protocol.SendMessageFrame:
		var msg *model.ChatMessage
		if msg, err = c.server.messages.Send(ctx, c.UserID, f); err == nil {
			err = c.server.publish(ctx, msg.RoomID, protocol.MessageReceived{Message: *msg}, requestID)
		}
	case protocol.DeleteMessageFrame:
		var deleted *protocol.MessageDeleted
		if deleted, err = c.server.messages.Delete(ctx, c.UserID, f); err == nil {
			err = c.server.publish(ctx, deleted.RoomID, *deleted, requestID)
		}
	}
	if err != nil {
		zap.L().Info("ws frame rejected",
			zap.Int64("user_id", c.UserID),
			zap.String("event", string(frame.Event())),
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		c.replyError(requestID, err)
	}
}

func (c *UserConn) subscribe(ctx context.Context, f protocol.SubscribeFrame) error {
	if f.Topic != model.Topic(f.RoomID) {
		return errorx.Newf(errorx.CodeInvalidParam, "订阅主题 %q 与房间 %d 不匹配", f.Topic, f.RoomID)
	}
	if _, _, err := c.server.rooms.Authorize(ctx, f.RoomID, c.UserID); err != nil {
		return err
	}
	c.server.Hub.Subscribe(c, f.RoomID)
	zap.L().Debug("ws subscribed", zap.Int64("user_id", c.UserID), zap.Int64("room_id", f.RoomID))
	return nil
}

func (c *UserConn) replyError(requestID string, err error) {
	data, encErr := protocol.Encode(protocol.ErrorFrame{
		Code: errorx.GetCode(err),
		Msg:  errorx.Message(err),
	}, requestID)
	if encErr != nil {
		zap.L().Error("encode error frame", zap.Error(encErr))
		return
	}
	if !c.enqueue(data) {
		c.Close()
	}
}

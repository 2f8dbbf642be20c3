// Package protocol 定义聊天网关的帧格式
// 线上格式为 {"event": "...", "requestId": "...", "data": {...}}
// 出站帧（客户端 -> 网关）与入站帧（网关 -> 客户端）分别是两组封闭的类型，
// 新增帧类型需要同时修改 Decode 中的 switch
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"kama_group_client/internal/model"
)

// Event 帧类型
type Event string

const (
	EventSubscribe Event = "subscribe"       // 订阅房间主题
	EventSend      Event = "message:send"    // 发送消息
	EventDelete    Event = "message:delete"  // 删除消息
	EventReceive   Event = "message:receive" // 新消息推送（包括发送者自己的回显）
	EventDeleted   Event = "message:deleted" // 消息已删除
	EventError     Event = "error"           // 网关拒绝了某个出站帧
)

// ErrUnknownEvent 未知的帧类型
var ErrUnknownEvent = errors.New("unknown frame event")

// Envelope 帧外壳
type Envelope struct {
	Event     Event           `json:"event"`
	RequestID string          `json:"requestId,omitempty"`
	Data      json.RawMessage `json:"data"`
}

// OutboundFrame 客户端发往网关的帧
type OutboundFrame interface {
	Event() Event
	outbound()
}

// InboundFrame 网关推送给客户端的帧
type InboundFrame interface {
	Event() Event
	inbound()
}

// SubscribeFrame 订阅房间消息主题，连接建立后第一个发送
type SubscribeFrame struct {
	Topic  string `json:"topic"`
	RoomID int64  `json:"roomId"`
}

// SendMessageFrame 发送消息
type SendMessageFrame struct {
	RoomID        int64             `json:"roomId"`
	SenderID      int64             `json:"senderId"`
	MessageType   model.MessageType `json:"messageType"`
	Content       string            `json:"content"`
	AttachmentURL string            `json:"attachmentUrl,omitempty"`
}

// DeleteMessageFrame 删除消息
type DeleteMessageFrame struct {
	RoomID    int64 `json:"roomId"`
	MessageID int64 `json:"messageId"`
	SenderID  int64 `json:"senderId"`
}

// MessageReceived 新消息推送，data 即消息本身
type MessageReceived struct {
	Message model.ChatMessage
}

// MessageDeleted 消息删除推送
type MessageDeleted struct {
	RoomID    int64 `json:"roomId"`
	MessageID int64 `json:"messageId"`
}

// ErrorFrame 网关对某个出站帧的拒绝，RequestID 对应出站帧
type ErrorFrame struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

func (SubscribeFrame) Event() Event     { return EventSubscribe }
func (SendMessageFrame) Event() Event   { return EventSend }
func (DeleteMessageFrame) Event() Event { return EventDelete }
func (MessageReceived) Event() Event    { return EventReceive }
func (MessageDeleted) Event() Event     { return EventDeleted }
func (ErrorFrame) Event() Event         { return EventError }

func (SubscribeFrame) outbound()     {}
func (SendMessageFrame) outbound()   {}
func (DeleteMessageFrame) outbound() {}
func (MessageReceived) inbound()     {}
func (MessageDeleted) inbound()      {}
func (ErrorFrame) inbound()          {}

// Encode 序列化一个帧，frame 必须是出站帧或入站帧
func Encode(frame interface{ Event() Event }, requestID string) ([]byte, error) {
	var payload any = frame
	if m, ok := frame.(MessageReceived); ok {
		payload = m.Message
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", frame.Event(), err)
	}
	return json.Marshal(Envelope{Event: frame.Event(), RequestID: requestID, Data: data})
}

// DecodeInbound 解析网关推送的帧
func DecodeInbound(raw []byte) (InboundFrame, string, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, "", fmt.Errorf("decode envelope: %w", err)
	}
	switch env.Event {
	case EventReceive:
		var m model.ChatMessage
		if err := decodeData(env, &m); err != nil {
			return nil, env.RequestID, err
		}
		return MessageReceived{Message: m}, env.RequestID, nil
	case EventDeleted:
		var d MessageDeleted
		if err := decodeData(env, &d); err != nil {
			return nil, env.RequestID, err
		}
		return d, env.RequestID, nil
	case EventError:
		var e ErrorFrame
		if err := decodeData(env, &e); err != nil {
			return nil, env.RequestID, err
		}
		return e, env.RequestID, nil
	default:
		return nil, env.RequestID, fmt.Errorf("%w: %q", ErrUnknownEvent, env.Event)
	}
}

// DecodeOutbound 解析客户端发来的帧（网关使用）
func DecodeOutbound(raw []byte) (OutboundFrame, string, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, "", fmt.Errorf("decode envelope: %w", err)
	}
	switch env.Event {
	case EventSubscribe:
		var s SubscribeFrame
		if err := decodeData(env, &s); err != nil {
			return nil, env.RequestID, err
		}
		return s, env.RequestID, nil
	case EventSend:
		var s SendMessageFrame
		if err := decodeData(env, &s); err != nil {
			return nil, env.RequestID, err
		}
		return s, env.RequestID, nil
	case EventDelete:
		var d DeleteMessageFrame
		if err := decodeData(env, &d); err != nil {
			return nil, env.RequestID, err
		}
		return d, env.RequestID, nil
	default:
		return nil, env.RequestID, fmt.Errorf("%w: %q", ErrUnknownEvent, env.Event)
	}
}

func decodeData(env Envelope, v any) error {
	if len(env.Data) == 0 {
		return fmt.Errorf("decode %s: missing data", env.Event)
	}
	if err := json.Unmarshal(env.Data, v); err != nil {
		return fmt.Errorf("decode %s: %w", env.Event, err)
	}
	return nil
}

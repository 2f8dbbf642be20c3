// Package chat 管理一个聊天室视图的实时连接
// 一个 Manager 对应一个打开的房间：建立连接、订阅房间主题、维护本地消息列表、断线重连
// 本地消息列表只由网关推送驱动，发送消息不会乐观追加，等待网关回显
package chat

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"kama_group_client/internal/credential"
	"kama_group_client/internal/model"
	"kama_group_client/internal/protocol"
	"kama_group_client/pkg/errorx"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// State 连接状态
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateReconnecting
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	default:
		return "unknown"
	}
}

// Options Manager 参数
type Options struct {
	URL    string // 网关地址，如 ws://127.0.0.1:8000/ws/chat
	RoomID int64
	UserID int64
	Tokens credential.TokenStore
	Dialer Dialer // 为空时使用 gorilla/websocket
	Retry  RetryPolicy
	// OnChange 消息列表变化后在读协程中调用，参数为列表副本
	OnChange func(messages []model.ChatMessage)
}

var errClosed = errorx.New(errorx.CodeSocketUnavailable, "聊天连接已关闭")

// Manager 单个房间的实时连接
type Manager struct {
	opts Options
	log  MessageLog

	mu      sync.Mutex
	state   State
	conn    Conn
	cancel  context.CancelFunc
	done    chan struct{}
	closed  bool
	changed chan struct{} // 状态变化时关闭并替换
}

// NewManager 创建房间连接管理器，调用 Open 后才会建立连接
func NewManager(opts Options) *Manager {
	if opts.Dialer == nil {
		opts.Dialer = NewWSDialer()
	}
	return &Manager{opts: opts, changed: make(chan struct{})}
}

// Open 开始连接，ctx 限定整个连接（包括重连）的生命周期
// 没有可用令牌时保持 disconnected 并返回 ErrAuthMissing
func (m *Manager) Open(ctx context.Context) error {
	m.mu.Lock()
	closed, running := m.closed, m.cancel != nil
	m.mu.Unlock()
	if closed {
		return errClosed
	}
	if running {
		return nil
	}

	token, err := credential.Token(ctx, m.opts.Tokens)
	if err != nil {
		zap.L().Warn("chat open skipped, no access token", zap.Int64("roomId", m.opts.RoomID), zap.Error(err))
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return errClosed
	}
	if m.cancel != nil {
		return nil
	}
	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.done = make(chan struct{})
	go m.run(runCtx, token, m.done)
	return nil
}

// Close 停止重连并关闭连接，之后到达的推送全部忽略
// Close 之后 Manager 不能再次 Open
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	cancel, conn := m.cancel, m.conn
	m.conn = nil
	m.setStateLocked(StateDisconnected)
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if conn != nil {
		if err := conn.Close(); err != nil {
			zap.L().Debug("chat socket close", zap.Error(err))
		}
	}
	zap.L().Info("chat closed", zap.Int64("roomId", m.opts.RoomID))
}

// Done 连接协程退出后关闭；未 Open 时返回已关闭的通道
func (m *Manager) Done() <-chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.done == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return m.done
}

// State 当前连接状态
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// AwaitState 等待进入指定状态
func (m *Manager) AwaitState(ctx context.Context, target State) error {
	for {
		m.mu.Lock()
		state, changed := m.state, m.changed
		m.mu.Unlock()
		if state == target {
			return nil
		}
		select {
		case <-changed:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Messages 当前消息列表副本，按到达顺序
func (m *Manager) Messages() []model.ChatMessage {
	return m.log.Snapshot()
}

// RoomID 所属房间
func (m *Manager) RoomID() int64 {
	return m.opts.RoomID
}

// Send 发送文本消息
// 内容去除首尾空白后为空时不发送；未连接时不发送，只记录日志
func (m *Manager) Send(ctx context.Context, content string) error {
	return m.SendAttachment(ctx, model.MessageText, content, "")
}

// SendAttachment 发送带附件的消息，messageType 为空时按 TEXT 处理
func (m *Manager) SendAttachment(ctx context.Context, messageType model.MessageType, content, attachmentURL string) error {
	content = strings.TrimSpace(content)
	if content == "" && attachmentURL == "" {
		zap.L().Debug("chat send skipped, blank content", zap.Int64("roomId", m.opts.RoomID))
		return nil
	}
	if messageType == "" {
		messageType = model.MessageText
	}
	return m.publish(ctx, protocol.SendMessageFrame{
		RoomID:        m.opts.RoomID,
		SenderID:      m.opts.UserID,
		MessageType:   messageType,
		Content:       content,
		AttachmentURL: attachmentURL,
	})
}

// Delete 请求删除消息，本地列表在收到 message:deleted 推送后才变化
func (m *Manager) Delete(ctx context.Context, messageID int64) error {
	return m.publish(ctx, protocol.DeleteMessageFrame{
		RoomID:    m.opts.RoomID,
		MessageID: messageID,
		SenderID:  m.opts.UserID,
	})
}

func (m *Manager) publish(ctx context.Context, frame protocol.OutboundFrame) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	conn, state := m.conn, m.state
	m.mu.Unlock()
	if conn == nil || state != StateConnected {
		zap.L().Warn("chat frame dropped, not connected",
			zap.String("event", string(frame.Event())), zap.Stringer("state", state))
		return nil
	}
	return m.write(conn, frame)
}

func (m *Manager) write(conn Conn, frame protocol.OutboundFrame) error {
	requestID := uuid.NewString()
	data, err := protocol.Encode(frame, requestID)
	if err != nil {
		return errorx.Wrap(err, errorx.CodeInvalidParam, errorx.ErrInvalidParam.Msg)
	}
	if err := conn.WriteMessage(data); err != nil {
		zap.L().Warn("chat write failed", zap.String("event", string(frame.Event())),
			zap.String("requestId", requestID), zap.Error(err))
		return errorx.Wrap(err, errorx.CodeSocketUnavailable, errorx.ErrSocketUnavailable.Msg)
	}
	zap.L().Debug("chat frame sent", zap.String("event", string(frame.Event())), zap.String("requestId", requestID))
	return nil
}

// run 连接循环：连接 -> 订阅 -> 读推送，连接断开后按重连策略重试
func (m *Manager) run(ctx context.Context, token string, done chan struct{}) {
	defer close(done)
	defer m.finish(done)
	defer m.setState(StateDisconnected)

	attempt := 0
	for {
		m.setState(StateConnecting)
		conn, err := m.connect(ctx, token)
		if err == nil {
			if !m.attach(conn) {
				_ = conn.Close()
				return
			}
			attempt = 0
			// ctx 取消时关闭连接以中断阻塞的读取
			stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
			err = m.readLoop(conn)
			stop()
			m.detach(conn)
		}
		if ctx.Err() != nil {
			return
		}

		attempt++
		if !m.opts.Retry.Allow(attempt) {
			zap.L().Error("chat reconnect attempts exhausted",
				zap.Int64("roomId", m.opts.RoomID), zap.Int("attempts", attempt-1), zap.Error(err))
			return
		}
		delay := m.opts.Retry.Backoff(attempt)
		zap.L().Warn("chat connection lost, reconnecting",
			zap.Int64("roomId", m.opts.RoomID), zap.Int("attempt", attempt),
			zap.Duration("delay", delay), zap.Error(err))
		m.setState(StateReconnecting)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		// 令牌可能在断线期间过期或被清除
		token, err = credential.Token(ctx, m.opts.Tokens)
		if err != nil {
			zap.L().Warn("chat reconnect stopped, no access token", zap.Int64("roomId", m.opts.RoomID), zap.Error(err))
			return
		}
	}
}

// finish 连接协程退出时清除运行标记，未 Close 时可以再次 Open
func (m *Manager) finish(done chan struct{}) {
	var cancel context.CancelFunc
	m.mu.Lock()
	if m.done == done {
		cancel, m.cancel = m.cancel, nil
	}
	m.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// connect 建立连接并先发送订阅帧，订阅失败时关闭连接
func (m *Manager) connect(ctx context.Context, token string) (Conn, error) {
	rawURL, err := socketURL(m.opts.URL, token)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.CodeInvalidParam, "聊天网关地址错误")
	}
	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)

	conn, err := m.opts.Dialer.Dial(ctx, rawURL, header)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.CodeSocketUnavailable, errorx.ErrSocketUnavailable.Msg)
	}
	sub := protocol.SubscribeFrame{Topic: model.Topic(m.opts.RoomID), RoomID: m.opts.RoomID}
	if err := m.write(conn, sub); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return conn, nil
}

func (m *Manager) attach(conn Conn) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return false
	}
	m.conn = conn
	m.setStateLocked(StateConnected)
	zap.L().Info("chat connected", zap.Int64("roomId", m.opts.RoomID))
	return true
}

func (m *Manager) detach(conn Conn) {
	m.mu.Lock()
	if m.conn == conn {
		m.conn = nil
	}
	m.mu.Unlock()
	_ = conn.Close()
}

func (m *Manager) readLoop(conn Conn) error {
	for {
		data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		m.handle(conn, data)
	}
}

// handle 应用一条推送；连接已被替换或 Manager 已关闭时忽略
func (m *Manager) handle(conn Conn, data []byte) {
	frame, requestID, err := protocol.DecodeInbound(data)
	if err != nil {
		zap.L().Warn("chat frame ignored", zap.Int64("roomId", m.opts.RoomID), zap.Error(err))
		return
	}

	m.mu.Lock()
	if m.closed || m.conn != conn {
		m.mu.Unlock()
		zap.L().Debug("chat frame after teardown ignored", zap.String("event", string(frame.Event())))
		return
	}
	changed := false
	switch f := frame.(type) {
	case protocol.MessageReceived:
		m.log.Append(f.Message)
		changed = true
	case protocol.MessageDeleted:
		changed = m.log.Remove(f.MessageID)
	case protocol.ErrorFrame:
		zap.L().Warn("chat request rejected", zap.String("requestId", requestID),
			zap.Int("code", f.Code), zap.String("msg", f.Msg))
	}
	onChange := m.opts.OnChange
	m.mu.Unlock()

	if changed && onChange != nil {
		onChange(m.log.Snapshot())
	}
}

func (m *Manager) setState(s State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed && s != StateDisconnected {
		return
	}
	m.setStateLocked(s)
}

func (m *Manager) setStateLocked(s State) {
	if m.state == s {
		return
	}
	zap.L().Debug("chat state", zap.Int64("roomId", m.opts.RoomID), zap.Stringer("from", m.state), zap.Stringer("to", s))
	m.state = s
	close(m.changed)
	m.changed = make(chan struct{})
}

// Package hub
// conn_manager.go
// 核心职责：维护房间到本机订阅连接的映射，把代理送来的事件推送给订阅者
package hub

import (
	"sync"

	"go.uber.org/zap"
)

// Hub 本机的房间订阅表
type Hub struct {
	mu    sync.RWMutex
	rooms map[int64]map[*UserConn]struct{}
}

// NewHub 创建订阅表
func NewHub() *Hub {
	return &Hub{rooms: make(map[int64]map[*UserConn]struct{})}
}

// Subscribe 重复订阅同一房间不会收到重复推送
func (h *Hub) Subscribe(c *UserConn, roomID int64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns, ok := h.rooms[roomID]
	if !ok {
		conns = make(map[*UserConn]struct{})
		h.rooms[roomID] = conns
	}
	conns[c] = struct{}{}
}

// Unregister 移除连接的全部订阅
func (h *Hub) Unregister(c *UserConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for roomID, conns := range h.rooms {
		delete(conns, c)
		if len(conns) == 0 {
			delete(h.rooms, roomID)
		}
	}
}

// Subscribers 房间当前的订阅连接数
func (h *Hub) Subscribers(roomID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}

// Deliver 推送给房间的全部订阅者，发送缓冲已满的连接会被断开
func (h *Hub) Deliver(ev RoomEvent) {
	h.mu.RLock()
	targets := make([]*UserConn, 0, len(h.rooms[ev.RoomID]))
	for c := range h.rooms[ev.RoomID] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		if !c.enqueue(ev.Frame) {
			zap.L().Warn("drop slow subscriber", zap.Int64("room_id", ev.RoomID), zap.Int64("user_id", c.UserID))
			h.Unregister(c)
			c.Close()
		}
	}
}

package chat

import (
	"sync"

	"kama_group_client/internal/model"
)

// MessageLog 当前房间的本地消息列表
// 只按到达顺序追加，不去重、不排序；删除不存在的消息是空操作
type MessageLog struct {
	mu       sync.RWMutex
	messages []model.ChatMessage
}

// Append 追加一条消息
func (l *MessageLog) Append(msg model.ChatMessage) {
	l.mu.Lock()
	l.messages = append(l.messages, msg)
	l.mu.Unlock()
}

// Remove 删除所有 MessageID 匹配的消息，返回是否有消息被删除
func (l *MessageLog) Remove(messageID int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	kept := l.messages[:0]
	for _, m := range l.messages {
		if m.MessageID != messageID {
			kept = append(kept, m)
		}
	}
	removed := len(kept) != len(l.messages)
	// 清掉尾部残留，避免旧元素被底层数组引用
	for i := len(kept); i < len(l.messages); i++ {
		l.messages[i] = model.ChatMessage{}
	}
	l.messages = kept
	return removed
}

// Snapshot 返回消息列表副本
func (l *MessageLog) Snapshot() []model.ChatMessage {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]model.ChatMessage, len(l.messages))
	copy(out, l.messages)
	return out
}

// Len 消息数量
func (l *MessageLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.messages)
}

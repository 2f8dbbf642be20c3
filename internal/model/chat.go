package model

import (
	"sort"
	"strconv"
	"time"

	"kama_group_client/pkg/constants"
)

// MessageType 聊天消息类型
type MessageType string

const (
	MessageText  MessageType = "TEXT"
	MessageFile  MessageType = "FILE"
	MessageImage MessageType = "IMAGE"
)

// ChatMessage 聊天消息
// 本地消息列表按到达顺序追加，不按 SentAt 重排
type ChatMessage struct {
	MessageID     int64       `json:"messageId" validate:"required"`
	RoomID        int64       `json:"roomId" validate:"required"`
	SenderID      int64       `json:"senderId" validate:"required"`
	SenderName    string      `json:"senderName"`
	MessageType   MessageType `json:"messageType" validate:"required,oneof=TEXT FILE IMAGE"`
	Content       string      `json:"content"`
	AttachmentURL string      `json:"attachmentUrl,omitempty"`
	SentAt        time.Time   `json:"sentAt"`
	IsRead        bool        `json:"isRead"`
}

// RoomType 聊天室类型
type RoomType string

const (
	RoomGroup  RoomType = "GROUP"  // 群聊，每个群组一个
	RoomDirect RoomType = "DIRECT" // 单聊，由两个参与者唯一确定
)

// ChatRoom 聊天室
type ChatRoom struct {
	RoomID         int64    `json:"roomId" validate:"required"`
	RoomType       RoomType `json:"roomType" validate:"required,oneof=GROUP DIRECT"`
	RoomName       string   `json:"roomName"`
	GroupID        int64    `json:"groupId,omitempty"`
	ParticipantIDs []int64  `json:"participantIds,omitempty"`
}

// PairKey 单聊去重 key：两个 ID 升序排列，与参数顺序无关
func PairKey(a, b int64) string {
	if a > b {
		a, b = b, a
	}
	return strconv.FormatInt(a, 10) + "_" + strconv.FormatInt(b, 10)
}

// HasParticipants 判断房间参与者集合是否恰好等于给定的两个 ID（忽略顺序）
func (r ChatRoom) HasParticipants(a, b int64) bool {
	if len(r.ParticipantIDs) != 2 {
		return false
	}
	got := []int64{r.ParticipantIDs[0], r.ParticipantIDs[1]}
	want := []int64{a, b}
	sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })
	sort.Slice(want, func(i, j int) bool { return want[i] < want[j] })
	return got[0] == want[0] && got[1] == want[1]
}

// Topic 房间消息主题
func Topic(roomID int64) string {
	return constants.CHAT_TOPIC_PREFIX + strconv.FormatInt(roomID, 10)
}

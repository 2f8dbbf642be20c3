package model

import (
	"time"

	"gorm.io/gorm"
)

// 以下为开发网关的持久化表结构，客户端不使用

// UserInfo 用户表
type UserInfo struct {
	Id        int64     `gorm:"column:id;primaryKey;autoIncrement:false"`
	Name      string    `gorm:"column:name;type:varchar(32);not null"`
	Password  string    `gorm:"column:password;type:varchar(72);not null;comment:bcrypt 哈希"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (UserInfo) TableName() string { return "user_info" }

// GroupMember 群成员表，记录用户在群组中的角色
type GroupMember struct {
	Id       int64     `gorm:"column:id;primaryKey;autoIncrement"`
	GroupId  int64     `gorm:"column:group_id;not null;uniqueIndex:idx_group_user"`
	UserId   int64     `gorm:"column:user_id;not null;uniqueIndex:idx_group_user"`
	Role     Role      `gorm:"column:role;type:varchar(16);not null"`
	JoinedAt time.Time `gorm:"column:joined_at"`
}

func (GroupMember) TableName() string { return "group_member" }

// GroupPermission 群组权限表：执行 Type 操作至少需要 Role
type GroupPermission struct {
	Id      int64  `gorm:"column:id;primaryKey;autoIncrement"`
	GroupId int64  `gorm:"column:group_id;not null;uniqueIndex:idx_group_type"`
	Type    string `gorm:"column:type;type:varchar(32);not null;uniqueIndex:idx_group_type"`
	Role    Role   `gorm:"column:role;type:varchar(16);not null"`
}

func (GroupPermission) TableName() string { return "group_permission" }

// ChatRoomInfo 聊天室表
// 单聊房间的 PairKey 为两个参与者 ID 的有序拼接，同一群组内唯一；群聊房间为 NULL
type ChatRoomInfo struct {
	Id          int64     `gorm:"column:id;primaryKey;autoIncrement:false"`
	GroupId     int64     `gorm:"column:group_id;not null;index;uniqueIndex:idx_group_pair"`
	RoomType    RoomType  `gorm:"column:room_type;type:varchar(16);not null"`
	Name        string    `gorm:"column:name;type:varchar(64)"`
	Description string    `gorm:"column:description;type:varchar(255)"`
	PairKey     *string   `gorm:"column:pair_key;type:varchar(64);uniqueIndex:idx_group_pair"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (ChatRoomInfo) TableName() string { return "chat_room" }

// ChatRoomMember 单聊房间参与者
type ChatRoomMember struct {
	Id     int64 `gorm:"column:id;primaryKey;autoIncrement"`
	RoomId int64 `gorm:"column:room_id;not null;uniqueIndex:idx_room_user"`
	UserId int64 `gorm:"column:user_id;not null;uniqueIndex:idx_room_user;index"`
}

func (ChatRoomMember) TableName() string { return "chat_room_member" }

// MessageInfo 聊天消息表，Id 由雪花算法生成
type MessageInfo struct {
	Id          int64          `gorm:"column:id;primaryKey;autoIncrement:false"`
	RoomId      int64          `gorm:"column:room_id;not null;index"`
	SenderId    int64          `gorm:"column:sender_id;not null"`
	SenderName  string         `gorm:"column:sender_name;type:varchar(32)"`
	MessageType MessageType    `gorm:"column:message_type;type:varchar(8);not null"`
	Content     string         `gorm:"column:content;type:text"`
	Url         string         `gorm:"column:url;type:varchar(255)"`
	SentAt      time.Time      `gorm:"column:sent_at"`
	DeletedAt   gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

func (MessageInfo) TableName() string { return "message" }

// ToChatMessage 转换为推送给客户端的消息
func (m *MessageInfo) ToChatMessage() ChatMessage {
	return ChatMessage{
		MessageID:     m.Id,
		RoomID:        m.RoomId,
		SenderID:      m.SenderId,
		SenderName:    m.SenderName,
		MessageType:   m.MessageType,
		Content:       m.Content,
		AttachmentURL: m.Url,
		SentAt:        m.SentAt,
	}
}

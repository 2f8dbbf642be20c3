// Package repository 定义开发网关的数据访问接口
// 采用 Repository 模式将数据访问逻辑与业务逻辑分离，
// mysql 包提供 GORM 实现，memory 包提供进程内实现
package repository

import (
	"context"

	"kama_group_client/internal/model"
)

// UserRepository 用户数据访问接口
type UserRepository interface {
	// FindByID 根据 ID 查找用户，不存在时返回 CodeNotFound
	FindByID(ctx context.Context, id int64) (*model.UserInfo, error)
	// Create 创建用户
	Create(ctx context.Context, user *model.UserInfo) error
}

// MemberRepository 群成员数据访问接口
type MemberRepository interface {
	// Find 查找用户在群组中的成员记录，不存在时返回 CodeNotFound
	Find(ctx context.Context, groupID, userID int64) (*model.GroupMember, error)
	// Create 添加群成员
	Create(ctx context.Context, member *model.GroupMember) error
}

// PermissionRepository 群组权限数据访问接口
type PermissionRepository interface {
	// FindByGroup 群组的全部权限规则，没有规则时返回空列表
	FindByGroup(ctx context.Context, groupID int64) ([]model.GroupPermission, error)
	// Save 新增或按 (groupId, type) 覆盖一条规则
	Save(ctx context.Context, permission *model.GroupPermission) error
}

// RoomRepository 聊天室数据访问接口
type RoomRepository interface {
	// FindByID 根据 ID 查找房间
	FindByID(ctx context.Context, roomID int64) (*model.ChatRoomInfo, error)
	// FindByUser 用户在群组中可见的房间：群聊房间和用户参与的单聊房间
	FindByUser(ctx context.Context, groupID, userID int64) ([]model.ChatRoomInfo, error)
	// Participants 单聊房间的参与者 ID
	Participants(ctx context.Context, roomID int64) ([]int64, error)
	// Create 创建房间和参与者，同一群组内 PairKey 重复时返回 CodeConflict
	Create(ctx context.Context, room *model.ChatRoomInfo, participants []int64) error
}

// MessageRepository 消息数据访问接口
type MessageRepository interface {
	// Create 保存消息
	Create(ctx context.Context, message *model.MessageInfo) error
	// FindByID 根据 ID 查找未删除的消息
	FindByID(ctx context.Context, id int64) (*model.MessageInfo, error)
	// Delete 删除消息
	Delete(ctx context.Context, id int64) error
}

// Repositories 聚合所有 Repository，供 Service 层通过依赖注入使用
type Repositories struct {
	User       UserRepository
	Member     MemberRepository
	Permission PermissionRepository
	Room       RoomRepository
	Message    MessageRepository
}

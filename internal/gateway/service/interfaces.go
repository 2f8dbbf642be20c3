// Package service 定义开发网关的业务层接口
// Handler 和 ws hub 只依赖这些接口，具体实现位于各子包
package service

import (
	"context"

	"kama_group_client/internal/dto/request"
	"kama_group_client/internal/dto/respond"
	"kama_group_client/internal/model"
	"kama_group_client/internal/protocol"
)

// UserService 用户业务接口
type UserService interface {
	// Login 校验密码并签发 Access Token
	Login(ctx context.Context, req request.LoginRequest) (*respond.LoginRespond, error)
}

// GroupService 群组成员身份和权限
type GroupService interface {
	// Membership 当前用户在群组中的成员身份，非成员返回 CodeForbidden
	Membership(ctx context.Context, groupID, userID int64) (*model.Membership, error)
	// Permissions 群组权限表，仅成员可见
	Permissions(ctx context.Context, groupID, userID int64) (*respond.PermissionsRespond, error)
}

// ChatRoomService 聊天室业务接口
type ChatRoomService interface {
	// MyRooms 用户在群组中可见的聊天室
	MyRooms(ctx context.Context, groupID, userID int64) ([]model.ChatRoom, error)
	// CreateRoom 创建聊天室，单聊参与者组合重复时返回 CodeConflict
	CreateRoom(ctx context.Context, groupID, userID int64, req request.CreateRoomRequest) (*respond.CreateRoomRespond, error)
	// Authorize 校验用户能否进入房间，返回房间及用户在所属群组中的成员记录
	Authorize(ctx context.Context, roomID, userID int64) (*model.ChatRoomInfo, *model.GroupMember, error)
}

// MessageService 聊天消息业务接口
type MessageService interface {
	// Send 保存消息并返回需要广播的消息
	Send(ctx context.Context, userID int64, frame protocol.SendMessageFrame) (*model.ChatMessage, error)
	// Delete 删除消息，仅作者或组长可删除
	Delete(ctx context.Context, userID int64, frame protocol.DeleteMessageFrame) (*protocol.MessageDeleted, error)
}

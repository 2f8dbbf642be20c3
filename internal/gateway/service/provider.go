package service

import (
	"kama_group_client/internal/dao/repository"
	"kama_group_client/internal/gateway/service/chatroom"
	"kama_group_client/internal/gateway/service/group"
	"kama_group_client/internal/gateway/service/message"
	"kama_group_client/internal/gateway/service/user"
)

// Services 聚合所有 Service 实例，Handler 层通过构造函数拿到它
type Services struct {
	User     UserService
	Group    GroupService
	ChatRoom ChatRoomService
	Message  MessageService
}

// NewServices 创建并注入所有 Service 实例
func NewServices(repos *repository.Repositories) *Services {
	roomSvc := chatroom.NewChatRoomService(repos)
	return &Services{
		User:     user.NewUserService(repos),
		Group:    group.NewGroupService(repos),
		ChatRoom: roomSvc,
		Message:  message.NewMessageService(repos, roomSvc),
	}
}

package request

import "kama_group_client/internal/model"

// CreateRoomRequest 创建聊天室请求
// 使用位置:
//   - internal/api/client.go: CreateRoom
//   - internal/gateway/handler/room_handler.go: CreateRoom
type CreateRoomRequest struct {
	Name           string         `json:"name" binding:"required"`
	Description    string         `json:"description"`
	ChatRoomType   model.RoomType `json:"chatRoomType" binding:"required,oneof=GROUP DIRECT"`
	ParticipantIds []int64        `json:"participantIds"`
}

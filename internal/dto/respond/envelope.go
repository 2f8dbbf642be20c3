package respond

import "kama_group_client/internal/model"

// Envelope 后端统一响应外壳，业务数据位于 result 字段
// Result 为 nil 表示响应缺少 result
type Envelope[T any] struct {
	Code   int    `json:"code,omitempty"`
	Msg    string `json:"msg,omitempty"`
	Result *T     `json:"result"`
}

// PermissionsRespond GET /groups/{groupId}/permissions 的 result
type PermissionsRespond struct {
	Permissions []model.PermissionRule `json:"permissions" validate:"dive"`
}

// CreateRoomRespond POST /group/{groupId}/chat/rooms 的 result
type CreateRoomRespond struct {
	RoomId int64 `json:"roomId" validate:"required"`
}

// LoginRespond POST /login 的 result
type LoginRespond struct {
	UserId      int64  `json:"userId"`
	UserName    string `json:"userName"`
	AccessToken string `json:"accessToken" validate:"required"`
}

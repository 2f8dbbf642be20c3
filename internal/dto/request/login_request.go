package request

// LoginRequest 开发网关登录请求
// 使用位置:
//   - internal/api/client.go: Login
//   - internal/gateway/handler/auth_handler.go: Login
type LoginRequest struct {
	UserId   int64  `json:"userId" binding:"required"`
	Password string `json:"password" binding:"required"`
}

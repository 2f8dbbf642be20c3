// Package handler 提供开发网关的 HTTP 请求处理器
// 本文件处理登录
package handler

import (
	"kama_group_client/internal/dto/request"
	"kama_group_client/internal/gateway/service"

	"github.com/gin-gonic/gin"
)

// AuthHandler 登录请求处理器
type AuthHandler struct {
	userSvc service.UserService
}

// NewAuthHandler 创建登录处理器
func NewAuthHandler(userSvc service.UserService) *AuthHandler {
	return &AuthHandler{userSvc: userSvc}
}

// Login 密码登录
// POST /login
// 请求体: request.LoginRequest
// 响应: respond.LoginRespond
func (h *AuthHandler) Login(c *gin.Context) {
	var req request.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.userSvc.Login(c.Request.Context(), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

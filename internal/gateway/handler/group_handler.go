package handler

import (
	"kama_group_client/internal/dto/request"
	"kama_group_client/internal/gateway/service"

	"github.com/gin-gonic/gin"
)

// GroupHandler 群组成员身份和权限
type GroupHandler struct {
	groupSvc service.GroupService
}

// NewGroupHandler 创建群组处理器
func NewGroupHandler(groupSvc service.GroupService) *GroupHandler {
	return &GroupHandler{groupSvc: groupSvc}
}

// Membership 当前用户的成员身份
// GET /groups/:groupId/membership
// 响应: model.Membership
func (h *GroupHandler) Membership(c *gin.Context) {
	var uri request.GroupUri
	if err := c.ShouldBindUri(&uri); err != nil {
		HandleParamError(c, err)
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	data, err := h.groupSvc.Membership(c.Request.Context(), uri.GroupId, userID)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// Permissions 群组权限表
// GET /groups/:groupId/permissions
// 响应: respond.PermissionsRespond
func (h *GroupHandler) Permissions(c *gin.Context) {
	var uri request.GroupUri
	if err := c.ShouldBindUri(&uri); err != nil {
		HandleParamError(c, err)
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	data, err := h.groupSvc.Permissions(c.Request.Context(), uri.GroupId, userID)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

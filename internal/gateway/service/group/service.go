// Package group 提供群组成员身份和权限表查询
package group

import (
	"context"

	"kama_group_client/internal/dao/repository"
	"kama_group_client/internal/dto/respond"
	"kama_group_client/internal/model"
	"kama_group_client/pkg/errorx"

	"go.uber.org/zap"
)

// groupService 群组业务逻辑实现
type groupService struct {
	repos *repository.Repositories
}

// NewGroupService 构造函数
func NewGroupService(repos *repository.Repositories) *groupService {
	return &groupService{repos: repos}
}

// RequireMember 查询成员记录，非成员返回 CodeForbidden
func RequireMember(ctx context.Context, members repository.MemberRepository, groupID, userID int64) (*model.GroupMember, error) {
	member, err := members.Find(ctx, groupID, userID)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.Newf(errorx.CodeForbidden, "不是群组 %d 的成员", groupID)
		}
		zap.L().Error("查询群成员失败", zap.Int64("group_id", groupID), zap.Int64("user_id", userID), zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	return member, nil
}

// Membership 当前用户在群组中的成员身份
func (g *groupService) Membership(ctx context.Context, groupID, userID int64) (*model.Membership, error) {
	member, err := RequireMember(ctx, g.repos.Member, groupID, userID)
	if err != nil {
		return nil, err
	}
	return &model.Membership{
		ID:       member.Id,
		Role:     member.Role,
		JoinedAt: member.JoinedAt,
	}, nil
}

// Permissions 群组权限表，没有规则时返回空列表而不是 null
func (g *groupService) Permissions(ctx context.Context, groupID, userID int64) (*respond.PermissionsRespond, error) {
	if _, err := RequireMember(ctx, g.repos.Member, groupID, userID); err != nil {
		return nil, err
	}
	list, err := g.repos.Permission.FindByGroup(ctx, groupID)
	if err != nil {
		zap.L().Error("查询群组权限失败", zap.Int64("group_id", groupID), zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	rules := make([]model.PermissionRule, 0, len(list))
	for _, p := range list {
		rules = append(rules, model.PermissionRule{Type: p.Type, Role: p.Role})
	}
	return &respond.PermissionsRespond{Permissions: rules}, nil
}

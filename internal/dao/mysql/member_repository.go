package mysql

import (
	"context"

	"kama_group_client/internal/model"

	"gorm.io/gorm"
)

// memberRepository MemberRepository 接口的实现
type memberRepository struct {
	db *gorm.DB
}

// Find 根据群组和用户查找成员关系
// 用于检查用户是否在群中以及其角色
func (r *memberRepository) Find(ctx context.Context, groupID, userID int64) (*model.GroupMember, error) {
	var member model.GroupMember
	if err := r.db.WithContext(ctx).Where("group_id = ? AND user_id = ?", groupID, userID).First(&member).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询群成员 group_id=%d user_id=%d", groupID, userID)
	}
	return &member, nil
}

// Create 添加群成员
func (r *memberRepository) Create(ctx context.Context, member *model.GroupMember) error {
	if err := r.db.WithContext(ctx).Create(member).Error; err != nil {
		return wrapDBError(err, "创建群成员")
	}
	return nil
}

package mysql

import (
	"context"

	"kama_group_client/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// permissionRepository PermissionRepository 接口的实现
type permissionRepository struct {
	db *gorm.DB
}

// FindByGroup 查询群组权限规则
func (r *permissionRepository) FindByGroup(ctx context.Context, groupID int64) ([]model.GroupPermission, error) {
	var permissions []model.GroupPermission
	if err := r.db.WithContext(ctx).Where("group_id = ?", groupID).Order("id ASC").Find(&permissions).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询群权限 group_id=%d", groupID)
	}
	return permissions, nil
}

// Save (group_id, type) 已存在时只更新角色
func (r *permissionRepository) Save(ctx context.Context, permission *model.GroupPermission) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "group_id"}, {Name: "type"}},
		DoUpdates: clause.AssignmentColumns([]string{"role"}),
	}).Create(permission).Error
	if err != nil {
		return wrapDBErrorf(err, "保存群权限 group_id=%d type=%s", permission.GroupId, permission.Type)
	}
	return nil
}

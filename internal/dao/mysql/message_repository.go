package mysql

import (
	"context"

	"kama_group_client/internal/model"

	"gorm.io/gorm"
)

// messageRepository MessageRepository 接口的实现
type messageRepository struct {
	db *gorm.DB
}

// Create 保存消息
func (r *messageRepository) Create(ctx context.Context, message *model.MessageInfo) error {
	if err := r.db.WithContext(ctx).Create(message).Error; err != nil {
		return wrapDBError(err, "创建消息")
	}
	return nil
}

// FindByID 查找未删除的消息
func (r *messageRepository) FindByID(ctx context.Context, id int64) (*model.MessageInfo, error) {
	var message model.MessageInfo
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&message).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询消息 id=%d", id)
	}
	return &message, nil
}

// Delete 软删除消息
func (r *messageRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.MessageInfo{})
	if res.Error != nil {
		return wrapDBErrorf(res.Error, "删除消息 id=%d", id)
	}
	if res.RowsAffected == 0 {
		return wrapDBErrorf(gorm.ErrRecordNotFound, "删除消息 id=%d", id)
	}
	return nil
}

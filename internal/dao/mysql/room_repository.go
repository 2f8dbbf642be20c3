package mysql

import (
	"context"

	"kama_group_client/internal/model"

	"gorm.io/gorm"
)

// roomRepository RoomRepository 接口的实现
type roomRepository struct {
	db *gorm.DB
}

// FindByID 根据 ID 查找房间
func (r *roomRepository) FindByID(ctx context.Context, roomID int64) (*model.ChatRoomInfo, error) {
	var room model.ChatRoomInfo
	if err := r.db.WithContext(ctx).Where("id = ?", roomID).First(&room).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询聊天室 id=%d", roomID)
	}
	return &room, nil
}

// FindByUser 群聊房间 + 用户参与的单聊房间
func (r *roomRepository) FindByUser(ctx context.Context, groupID, userID int64) ([]model.ChatRoomInfo, error) {
	joined := r.db.Model(&model.ChatRoomMember{}).Select("room_id").Where("user_id = ?", userID)
	var rooms []model.ChatRoomInfo
	if err := r.db.WithContext(ctx).
		Where("group_id = ? AND (room_type = ? OR id IN (?))", groupID, model.RoomGroup, joined).
		Order("id ASC").
		Find(&rooms).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询聊天室 group_id=%d user_id=%d", groupID, userID)
	}
	return rooms, nil
}

// Participants 房间参与者，按 user_id 升序
func (r *roomRepository) Participants(ctx context.Context, roomID int64) ([]int64, error) {
	var ids []int64
	if err := r.db.WithContext(ctx).Model(&model.ChatRoomMember{}).
		Where("room_id = ?", roomID).Order("user_id ASC").Pluck("user_id", &ids).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询聊天室成员 room_id=%d", roomID)
	}
	return ids, nil
}

// Create 在一个事务中写入房间和参与者
// 单聊 pair_key 命中唯一索引时返回 CodeConflict
func (r *roomRepository) Create(ctx context.Context, room *model.ChatRoomInfo, participants []int64) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(room).Error; err != nil {
			return err
		}
		if len(participants) == 0 {
			return nil
		}
		members := make([]model.ChatRoomMember, 0, len(participants))
		for _, id := range participants {
			members = append(members, model.ChatRoomMember{RoomId: room.Id, UserId: id})
		}
		return tx.Create(&members).Error
	})
	if err != nil {
		return wrapDBErrorf(err, "创建聊天室 group_id=%d", room.GroupId)
	}
	return nil
}

// Package room 加载当前用户的聊天室，并解析群聊/单聊房间
// REST 失败直接返回给调用方展示，不自动重试
package room

import (
	"context"

	"kama_group_client/internal/dto/request"
	"kama_group_client/internal/model"
	"kama_group_client/pkg/errorx"

	"go.uber.org/zap"
)

// Source 聊天室接口，通常是 *api.Client
type Source interface {
	MyRooms(ctx context.Context, groupID int64) ([]model.ChatRoom, error)
	CreateRoom(ctx context.Context, groupID int64, req request.CreateRoomRequest) (int64, error)
}

// Resolver 房间解析
type Resolver struct {
	source Source
}

// NewResolver 创建房间解析器
func NewResolver(source Source) *Resolver {
	return &Resolver{source: source}
}

// MyRooms 当前用户在群组中的全部房间
func (r *Resolver) MyRooms(ctx context.Context, groupID int64) ([]model.ChatRoom, error) {
	rooms, err := r.source.MyRooms(ctx, groupID)
	if err != nil {
		zap.L().Warn("load rooms failed", zap.Int64("groupId", groupID), zap.Error(err))
		return nil, err
	}
	return rooms, nil
}

// GroupRoom 群组的群聊房间
func (r *Resolver) GroupRoom(ctx context.Context, groupID int64) (model.ChatRoom, error) {
	rooms, err := r.MyRooms(ctx, groupID)
	if err != nil {
		return model.ChatRoom{}, err
	}
	for _, room := range rooms {
		if room.RoomType == model.RoomGroup {
			return room, nil
		}
	}
	return model.ChatRoom{}, errorx.Newf(errorx.CodeNotFound, "群组 %d 没有群聊房间", groupID)
}

// OpenDirectRoom 返回 self 与 target 的单聊房间 ID
// 先尝试创建；后端返回 409 时回查房间列表，按参与者集合（忽略顺序）匹配已有房间
// 回查失败或没有匹配时返回 ErrRoomResolutionConflict
func (r *Resolver) OpenDirectRoom(ctx context.Context, groupID, selfID, targetID int64, name string) (int64, error) {
	if selfID == targetID {
		return 0, errorx.New(errorx.CodeInvalidParam, "不能和自己单聊")
	}
	if name == "" {
		name = "direct_" + model.PairKey(selfID, targetID)
	}

	roomID, err := r.source.CreateRoom(ctx, groupID, request.CreateRoomRequest{
		Name:           name,
		ChatRoomType:   model.RoomDirect,
		ParticipantIds: []int64{selfID, targetID},
	})
	if err == nil {
		zap.L().Info("direct room created", zap.Int64("roomId", roomID), zap.String("pair", model.PairKey(selfID, targetID)))
		return roomID, nil
	}
	if !errorx.HasCode(err, errorx.CodeConflict) {
		return 0, err
	}

	rooms, listErr := r.source.MyRooms(ctx, groupID)
	if listErr != nil {
		zap.L().Warn("direct room lookup failed", zap.Int64("groupId", groupID), zap.Error(listErr))
		return 0, errorx.Wrap(listErr, errorx.CodeRoomConflict, errorx.ErrRoomResolutionConflict.Msg)
	}
	if room, ok := FindDirect(rooms, selfID, targetID); ok {
		return room.RoomID, nil
	}
	zap.L().Warn("direct room conflict without match",
		zap.Int64("groupId", groupID), zap.String("pair", model.PairKey(selfID, targetID)), zap.Int("rooms", len(rooms)))
	return 0, errorx.Wrap(err, errorx.CodeRoomConflict, errorx.ErrRoomResolutionConflict.Msg)
}

// FindDirect 找到参与者恰好为 a、b 的单聊房间
func FindDirect(rooms []model.ChatRoom, a, b int64) (model.ChatRoom, bool) {
	for _, room := range rooms {
		if room.RoomType == model.RoomDirect && room.HasParticipants(a, b) {
			return room, true
		}
	}
	return model.ChatRoom{}, false
}

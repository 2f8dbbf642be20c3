// Package chatroom 提供聊天室的查询、创建和访问校验
package chatroom

import (
	"context"
	"strings"
	"time"

	"kama_group_client/internal/dao/repository"
	"kama_group_client/internal/dto/request"
	"kama_group_client/internal/dto/respond"
	"kama_group_client/internal/gateway/service/group"
	"kama_group_client/internal/model"
	"kama_group_client/pkg/errorx"
	"kama_group_client/pkg/util/snowflake"

	"go.uber.org/zap"
)

// chatRoomService 聊天室业务逻辑实现
type chatRoomService struct {
	repos *repository.Repositories
}

// NewChatRoomService 构造函数
func NewChatRoomService(repos *repository.Repositories) *chatRoomService {
	return &chatRoomService{repos: repos}
}

// MyRooms 群聊房间对所有成员可见，单聊房间只对参与者可见
func (s *chatRoomService) MyRooms(ctx context.Context, groupID, userID int64) ([]model.ChatRoom, error) {
	if _, err := group.RequireMember(ctx, s.repos.Member, groupID, userID); err != nil {
		return nil, err
	}
	rooms, err := s.repos.Room.FindByUser(ctx, groupID, userID)
	if err != nil {
		zap.L().Error("查询聊天室失败", zap.Int64("group_id", groupID), zap.Error(err))
		return nil, errorx.ErrServerBusy
	}

	rsp := make([]model.ChatRoom, 0, len(rooms))
	for _, room := range rooms {
		item := model.ChatRoom{
			RoomID:   room.Id,
			RoomType: room.RoomType,
			RoomName: room.Name,
			GroupID:  room.GroupId,
		}
		if room.RoomType == model.RoomDirect {
			item.ParticipantIDs, err = s.repos.Room.Participants(ctx, room.Id)
			if err != nil {
				zap.L().Error("查询聊天室参与者失败", zap.Int64("room_id", room.Id), zap.Error(err))
				return nil, errorx.ErrServerBusy
			}
		}
		rsp = append(rsp, item)
	}
	return rsp, nil
}

// CreateRoom 创建聊天室
// 单聊房间的参与者为调用者加一名其他成员，同一对成员在群组内只能有一个单聊房间
// 群聊房间需要副组长及以上角色
func (s *chatRoomService) CreateRoom(ctx context.Context, groupID, userID int64, req request.CreateRoomRequest) (*respond.CreateRoomRespond, error) {
	member, err := group.RequireMember(ctx, s.repos.Member, groupID, userID)
	if err != nil {
		return nil, err
	}

	room := model.ChatRoomInfo{
		Id:          snowflake.GenerateID(),
		GroupId:     groupID,
		RoomType:    req.ChatRoomType,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		CreatedAt:   time.Now(),
	}
	var participants []int64

	switch req.ChatRoomType {
	case model.RoomGroup:
		if !model.HasRoleLevel(member.Role, model.RoleSubLeader) {
			return nil, errorx.ErrPermissionDenied
		}
	case model.RoomDirect:
		participants = uniqueWith(req.ParticipantIds, userID)
		if len(participants) != 2 {
			return nil, errorx.New(errorx.CodeInvalidParam, "单聊房间需要恰好两名参与者")
		}
		other := participants[0]
		if other == userID {
			other = participants[1]
		}
		if _, err := group.RequireMember(ctx, s.repos.Member, groupID, other); err != nil {
			if errorx.GetCode(err) == errorx.CodeForbidden {
				return nil, errorx.Newf(errorx.CodeInvalidParam, "用户 %d 不是群组成员", other)
			}
			return nil, err
		}
		key := model.PairKey(participants[0], participants[1])
		room.PairKey = &key
	default:
		return nil, errorx.Newf(errorx.CodeInvalidParam, "未知的聊天室类型 %s", req.ChatRoomType)
	}

	if err := s.repos.Room.Create(ctx, &room, participants); err != nil {
		if errorx.GetCode(err) == errorx.CodeConflict {
			return nil, errorx.Wrap(err, errorx.CodeConflict, "单聊房间已存在")
		}
		zap.L().Error("创建聊天室失败", zap.Int64("group_id", groupID), zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	zap.L().Info("chat room created",
		zap.Int64("room_id", room.Id),
		zap.String("room_type", string(room.RoomType)),
		zap.Int64("creator", userID),
	)
	return &respond.CreateRoomRespond{RoomId: room.Id}, nil
}

// Authorize 用户必须是房间所属群组的成员，单聊房间还必须是参与者
func (s *chatRoomService) Authorize(ctx context.Context, roomID, userID int64) (*model.ChatRoomInfo, *model.GroupMember, error) {
	room, err := s.repos.Room.FindByID(ctx, roomID)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, nil, errorx.Newf(errorx.CodeNotFound, "聊天室 %d 不存在", roomID)
		}
		zap.L().Error("查询聊天室失败", zap.Int64("room_id", roomID), zap.Error(err))
		return nil, nil, errorx.ErrServerBusy
	}
	member, err := group.RequireMember(ctx, s.repos.Member, room.GroupId, userID)
	if err != nil {
		return nil, nil, err
	}
	if room.RoomType == model.RoomDirect {
		ids, err := s.repos.Room.Participants(ctx, roomID)
		if err != nil {
			zap.L().Error("查询聊天室参与者失败", zap.Int64("room_id", roomID), zap.Error(err))
			return nil, nil, errorx.ErrServerBusy
		}
		if !contains(ids, userID) {
			return nil, nil, errorx.Newf(errorx.CodeForbidden, "不是聊天室 %d 的参与者", roomID)
		}
	}
	return room, member, nil
}

// uniqueWith 去重并确保包含 self，保持首次出现的顺序
func uniqueWith(ids []int64, self int64) []int64 {
	seen := make(map[int64]bool, len(ids)+1)
	out := make([]int64, 0, len(ids)+1)
	for _, id := range append([]int64{self}, ids...) {
		if id <= 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func contains(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

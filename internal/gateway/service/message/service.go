// Package message 处理聊天消息的保存和删除
package message

import (
	"context"
	"strings"
	"time"

	"kama_group_client/internal/dao/repository"
	"kama_group_client/internal/model"
	"kama_group_client/internal/protocol"
	"kama_group_client/pkg/errorx"
	"kama_group_client/pkg/util/snowflake"

	"go.uber.org/zap"
)

// RoomAuthorizer 房间访问校验，由 chatroom 服务实现
type RoomAuthorizer interface {
	Authorize(ctx context.Context, roomID, userID int64) (*model.ChatRoomInfo, *model.GroupMember, error)
}

// messageService 消息业务逻辑实现
type messageService struct {
	repos *repository.Repositories
	rooms RoomAuthorizer
}

// NewMessageService 构造函数
func NewMessageService(repos *repository.Repositories, rooms RoomAuthorizer) *messageService {
	return &messageService{repos: repos, rooms: rooms}
}

// Send 校验并保存消息，发送者以认证身份为准
func (m *messageService) Send(ctx context.Context, userID int64, frame protocol.SendMessageFrame) (*model.ChatMessage, error) {
	if frame.SenderID != 0 && frame.SenderID != userID {
		return nil, errorx.New(errorx.CodeForbidden, "不能以其他用户身份发送消息")
	}
	if _, _, err := m.rooms.Authorize(ctx, frame.RoomID, userID); err != nil {
		return nil, err
	}

	msgType := frame.MessageType
	if msgType == "" {
		msgType = model.MessageText
	}
	content := strings.TrimSpace(frame.Content)
	switch msgType {
	case model.MessageText:
		if content == "" {
			return nil, errorx.New(errorx.CodeInvalidParam, "消息内容不能为空")
		}
	case model.MessageFile, model.MessageImage:
		if frame.AttachmentURL == "" {
			return nil, errorx.New(errorx.CodeInvalidParam, "附件地址不能为空")
		}
	default:
		return nil, errorx.Newf(errorx.CodeInvalidParam, "未知的消息类型 %s", msgType)
	}

	senderName := ""
	if user, err := m.repos.User.FindByID(ctx, userID); err == nil {
		senderName = user.Name
	}

	info := model.MessageInfo{
		Id:          snowflake.GenerateID(),
		RoomId:      frame.RoomID,
		SenderId:    userID,
		SenderName:  senderName,
		MessageType: msgType,
		Content:     content,
		Url:         frame.AttachmentURL,
		SentAt:      time.Now(),
	}
	if err := m.repos.Message.Create(ctx, &info); err != nil {
		zap.L().Error("保存消息失败", zap.Int64("room_id", frame.RoomID), zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	msg := info.ToChatMessage()
	return &msg, nil
}

// Delete 作者本人或房间所属群组的组长可以删除消息
func (m *messageService) Delete(ctx context.Context, userID int64, frame protocol.DeleteMessageFrame) (*protocol.MessageDeleted, error) {
	_, member, err := m.rooms.Authorize(ctx, frame.RoomID, userID)
	if err != nil {
		return nil, err
	}
	info, err := m.repos.Message.FindByID(ctx, frame.MessageID)
	if err != nil || info.RoomId != frame.RoomID {
		if err == nil || errorx.IsNotFound(err) {
			return nil, errorx.Newf(errorx.CodeNotFound, "消息 %d 不存在", frame.MessageID)
		}
		zap.L().Error("查询消息失败", zap.Int64("message_id", frame.MessageID), zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	if info.SenderId != userID && member.Role != model.RoleLeader {
		return nil, errorx.ErrPermissionDenied
	}

	if err := m.repos.Message.Delete(ctx, info.Id); err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.Newf(errorx.CodeNotFound, "消息 %d 不存在", frame.MessageID)
		}
		zap.L().Error("删除消息失败", zap.Int64("message_id", info.Id), zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	zap.L().Info("message deleted",
		zap.Int64("room_id", info.RoomId),
		zap.Int64("message_id", info.Id),
		zap.Int64("operator", userID),
	)
	return &protocol.MessageDeleted{RoomID: info.RoomId, MessageID: info.Id}, nil
}

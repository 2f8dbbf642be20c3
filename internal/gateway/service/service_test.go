package service_test

import (
	"context"
	"testing"

	"kama_group_client/internal/dao/memory"
	"kama_group_client/internal/dto/request"
	"kama_group_client/internal/gateway/seed"
	"kama_group_client/internal/gateway/service"
	"kama_group_client/internal/model"
	"kama_group_client/internal/protocol"
	"kama_group_client/pkg/errorx"
	"kama_group_client/pkg/util/jwt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSeed = `
[[users]]
id = 3
name = "alice"
password = "pw"

[[users]]
id = 7
name = "bob"
password = "pw"

[[users]]
id = 9
name = "carol"
password = "pw"

[[users]]
id = 11
name = "dave"
password = "pw"

[[groups]]
id = 1
  [[groups.members]]
  userId = 3
  role = "LEADER"
  [[groups.members]]
  userId = 7
  role = "MEMBER"
  [[groups.members]]
  userId = 9
  role = "MEMBER"
  [[groups.permissions]]
  type = "CREATE_POST"
  role = "MEMBER"
  [[groups.rooms]]
  id = 100
  type = "GROUP"
  name = "general"
  [[groups.rooms]]
  id = 101
  type = "DIRECT"
  name = "direct_7_9"
  participants = [9, 7]
`

func newServices(t *testing.T) *service.Services {
	t.Helper()
	jwt.Init("service-test-secret", 60)
	repos := memory.NewRepositories()
	data, err := seed.Decode(testSeed)
	require.NoError(t, err)
	require.NoError(t, seed.Apply(context.Background(), repos, data))
	// 重复执行不报错
	require.NoError(t, seed.Apply(context.Background(), repos, data))
	return service.NewServices(repos)
}

func TestLogin(t *testing.T) {
	svc := newServices(t)
	ctx := context.Background()

	rsp, err := svc.User.Login(ctx, request.LoginRequest{UserId: 3, Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "alice", rsp.UserName)
	claims, err := jwt.ParseToken(rsp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, int64(3), claims.UserID)

	_, err = svc.User.Login(ctx, request.LoginRequest{UserId: 3, Password: "wrong"})
	assert.Equal(t, errorx.CodeInvalidPassword, errorx.GetCode(err))
	_, err = svc.User.Login(ctx, request.LoginRequest{UserId: 42, Password: "pw"})
	assert.Equal(t, errorx.CodeUserNotExist, errorx.GetCode(err))
}

func TestMembershipAndPermissions(t *testing.T) {
	svc := newServices(t)
	ctx := context.Background()

	m, err := svc.Group.Membership(ctx, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, model.RoleLeader, m.Role)

	perms, err := svc.Group.Permissions(ctx, 1, 7)
	require.NoError(t, err)
	assert.Equal(t, []model.PermissionRule{{Type: "CREATE_POST", Role: model.RoleMember}}, perms.Permissions)

	_, err = svc.Group.Membership(ctx, 1, 11)
	assert.Equal(t, errorx.CodeForbidden, errorx.GetCode(err))
	_, err = svc.Group.Permissions(ctx, 2, 3)
	assert.Equal(t, errorx.CodeForbidden, errorx.GetCode(err))
}

func TestMyRooms_DirectRoomsOnlyForParticipants(t *testing.T) {
	svc := newServices(t)
	ctx := context.Background()

	rooms, err := svc.ChatRoom.MyRooms(ctx, 1, 3)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, model.RoomGroup, rooms[0].RoomType)

	rooms, err = svc.ChatRoom.MyRooms(ctx, 1, 7)
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	assert.Equal(t, []int64{7, 9}, rooms[1].ParticipantIDs)
}

func TestCreateRoom(t *testing.T) {
	svc := newServices(t)
	ctx := context.Background()

	rsp, err := svc.ChatRoom.CreateRoom(ctx, 1, 3, request.CreateRoomRequest{
		Name: "direct", ChatRoomType: model.RoomDirect, ParticipantIds: []int64{3, 7},
	})
	require.NoError(t, err)
	assert.NotZero(t, rsp.RoomId)

	// 参与者顺序不同也视为同一对
	_, err = svc.ChatRoom.CreateRoom(ctx, 1, 7, request.CreateRoomRequest{
		Name: "again", ChatRoomType: model.RoomDirect, ParticipantIds: []int64{3},
	})
	assert.Equal(t, errorx.CodeConflict, errorx.GetCode(err))

	_, err = svc.ChatRoom.CreateRoom(ctx, 1, 3, request.CreateRoomRequest{
		Name: "self", ChatRoomType: model.RoomDirect, ParticipantIds: []int64{3},
	})
	assert.Equal(t, errorx.CodeInvalidParam, errorx.GetCode(err))

	_, err = svc.ChatRoom.CreateRoom(ctx, 1, 3, request.CreateRoomRequest{
		Name: "stranger", ChatRoomType: model.RoomDirect, ParticipantIds: []int64{11},
	})
	assert.Equal(t, errorx.CodeInvalidParam, errorx.GetCode(err))

	_, err = svc.ChatRoom.CreateRoom(ctx, 1, 7, request.CreateRoomRequest{Name: "x", ChatRoomType: model.RoomGroup})
	assert.ErrorIs(t, err, errorx.ErrPermissionDenied)

	_, err = svc.ChatRoom.CreateRoom(ctx, 1, 3, request.CreateRoomRequest{Name: "x", ChatRoomType: model.RoomGroup})
	require.NoError(t, err)
}

func TestSendAndDelete(t *testing.T) {
	svc := newServices(t)
	ctx := context.Background()

	msg, err := svc.Message.Send(ctx, 7, protocol.SendMessageFrame{RoomID: 100, Content: "  hi  "})
	require.NoError(t, err)
	assert.Equal(t, "hi", msg.Content)
	assert.Equal(t, model.MessageText, msg.MessageType)
	assert.Equal(t, "bob", msg.SenderName)
	assert.NotZero(t, msg.MessageID)
	assert.False(t, msg.SentAt.IsZero())

	_, err = svc.Message.Send(ctx, 7, protocol.SendMessageFrame{RoomID: 100, Content: " "})
	assert.Equal(t, errorx.CodeInvalidParam, errorx.GetCode(err))
	_, err = svc.Message.Send(ctx, 7, protocol.SendMessageFrame{RoomID: 100, SenderID: 9, Content: "spoof"})
	assert.Equal(t, errorx.CodeForbidden, errorx.GetCode(err))
	_, err = svc.Message.Send(ctx, 3, protocol.SendMessageFrame{RoomID: 101, Content: "not mine"})
	assert.Equal(t, errorx.CodeForbidden, errorx.GetCode(err))
	_, err = svc.Message.Send(ctx, 7, protocol.SendMessageFrame{RoomID: 999, Content: "nowhere"})
	assert.Equal(t, errorx.CodeNotFound, errorx.GetCode(err))

	// 其他成员不能删除
	_, err = svc.Message.Delete(ctx, 9, protocol.DeleteMessageFrame{RoomID: 100, MessageID: msg.MessageID})
	assert.ErrorIs(t, err, errorx.ErrPermissionDenied)

	// 组长可以删除
	deleted, err := svc.Message.Delete(ctx, 3, protocol.DeleteMessageFrame{RoomID: 100, MessageID: msg.MessageID})
	require.NoError(t, err)
	assert.Equal(t, protocol.MessageDeleted{RoomID: 100, MessageID: msg.MessageID}, *deleted)

	_, err = svc.Message.Delete(ctx, 3, protocol.DeleteMessageFrame{RoomID: 100, MessageID: msg.MessageID})
	assert.Equal(t, errorx.CodeNotFound, errorx.GetCode(err))

	own, err := svc.Message.Send(ctx, 9, protocol.SendMessageFrame{RoomID: 101, MessageType: model.MessageImage, AttachmentURL: "https://cdn/x.png"})
	require.NoError(t, err)
	_, err = svc.Message.Delete(ctx, 9, protocol.DeleteMessageFrame{RoomID: 100, MessageID: own.MessageID})
	assert.Equal(t, errorx.CodeNotFound, errorx.GetCode(err))
	_, err = svc.Message.Delete(ctx, 9, protocol.DeleteMessageFrame{RoomID: 101, MessageID: own.MessageID})
	require.NoError(t, err)
}

package gateway_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"kama_group_client/internal/api"
	"kama_group_client/internal/config"
	"kama_group_client/internal/credential"
	"kama_group_client/internal/dao/memory"
	"kama_group_client/internal/dto/request"
	"kama_group_client/internal/gateway"
	"kama_group_client/internal/gateway/handler"
	"kama_group_client/internal/gateway/seed"
	"kama_group_client/internal/model"
	"kama_group_client/internal/service/authz"
	"kama_group_client/internal/service/chat"
	"kama_group_client/internal/service/room"
	"kama_group_client/pkg/errorx"
	"kama_group_client/pkg/util/jwt"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	groupID   = int64(1)
	groupRoom = int64(100)
	alice     = int64(3) // LEADER
	bob       = int64(7) // MEMBER
	carol     = int64(9) // SUB_LEADER
	dave      = int64(11)
)

const e2eSeed = `
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
  role = "SUB_LEADER"
  [[groups.permissions]]
  type = "CREATE_POST"
  role = "MEMBER"
  [[groups.permissions]]
  type = "CREATE_VOTE"
  role = "SUB_LEADER"
  [[groups.permissions]]
  type = "DELETE_VOTE"
  role = "LEADER"
  [[groups.rooms]]
  id = 100
  type = "GROUP"
  name = "general"

[[groups]]
id = 2
  [[groups.members]]
  userId = 11
  role = "LEADER"
`

var transOnce sync.Once

type testEnv struct {
	gw    *gateway.Gateway
	srv   *httptest.Server
	wsURL string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	jwt.Init("gateway-test-secret", 60)
	transOnce.Do(func() { require.NoError(t, handler.InitTrans("zh")) })

	repos := memory.NewRepositories()
	data, err := seed.Decode(e2eSeed)
	require.NoError(t, err)
	require.NoError(t, seed.Apply(context.Background(), repos, data))

	conf := config.Default()
	gw := gateway.New(conf, repos)
	gw.Start()
	srv := httptest.NewServer(gw.Engine)
	t.Cleanup(func() {
		srv.Close()
		gw.Close()
	})
	return &testEnv{
		gw:    gw,
		srv:   srv,
		wsURL: "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/chat",
	}
}

// login 返回持有该用户令牌的 REST 客户端
func (e *testEnv) login(t *testing.T, userID int64) *api.Client {
	t.Helper()
	client := api.NewClient(e.srv.URL, 5*time.Second, credential.NewMemoryStore(""))
	rsp, err := client.Login(context.Background(), userID, "pw")
	require.NoError(t, err)
	require.Equal(t, userID, rsp.UserId)
	return client
}

func (e *testEnv) openRoom(t *testing.T, client *api.Client, userID, roomID int64) *chat.Manager {
	t.Helper()
	m := chat.NewManager(chat.Options{
		URL:    e.wsURL,
		RoomID: roomID,
		UserID: userID,
		Tokens: client.Tokens(),
		Retry:  chat.RetryPolicy{Delay: 20 * time.Millisecond, MaxAttempts: 3},
	})
	t.Cleanup(m.Close)
	require.NoError(t, m.Open(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	require.NoError(t, m.AwaitState(ctx, chat.StateConnected))
	return m
}

func (e *testEnv) awaitSubscribers(t *testing.T, roomID int64, n int) {
	t.Helper()
	require.Eventually(t, func() bool {
		return e.gw.Chat.Hub.Subscribers(roomID) == n
	}, 3*time.Second, 10*time.Millisecond)
}

func awaitMessages(t *testing.T, m *chat.Manager, n int) []model.ChatMessage {
	t.Helper()
	require.Eventually(t, func() bool { return len(m.Messages()) == n }, 3*time.Second, 10*time.Millisecond)
	return m.Messages()
}

func TestAuthorizationCacheAgainstGateway(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	leader := authz.NewCache(env.login(t, alice))
	require.NoError(t, leader.Initialize(ctx, groupID))
	assert.Equal(t, authz.StateReady, leader.State())
	assert.True(t, leader.IsLeader())
	assert.True(t, leader.HasPermission(model.CapDeleteVote))
	assert.False(t, leader.HasPermission(model.CapManageMembers))

	sub := authz.NewCache(env.login(t, carol))
	require.NoError(t, sub.Initialize(ctx, groupID))
	assert.False(t, sub.IsLeader())
	assert.True(t, sub.IsSubLeaderOrAbove())
	assert.True(t, sub.HasPermission(model.CapCreateVote))
	assert.False(t, sub.HasPermission(model.CapDeleteVote))
	assert.ErrorIs(t, sub.Require(model.CapDeleteVote), errorx.ErrPermissionDenied)

	member := authz.NewCache(env.login(t, bob))
	require.NoError(t, member.Initialize(ctx, groupID))
	assert.True(t, member.HasPermission(model.CapCreatePost))
	assert.False(t, member.HasPermission(model.CapCreateVote))

	// 非成员：403 -> 加载失败
	outsider := authz.NewCache(env.login(t, dave))
	err := outsider.Initialize(ctx, groupID)
	assert.ErrorIs(t, err, errorx.ErrAuthInit)
	assert.Equal(t, authz.StateErrored, outsider.State())
	assert.False(t, outsider.IsMemberOrAbove())

	// 有成员身份但权限表为空：全部拒绝
	own := authz.NewCache(env.login(t, dave))
	require.NoError(t, own.Initialize(ctx, 2))
	assert.True(t, own.IsLeader())
	assert.False(t, own.HasPermission(model.CapCreatePost))
}

func TestRestStatusMapping(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.login(t, dave).GetMembership(ctx, groupID)
	assert.Equal(t, errorx.CodeForbidden, errorx.GetCode(err))

	bad := api.NewClient(env.srv.URL, time.Second, credential.NewMemoryStore(""))
	_, err = bad.Login(ctx, alice, "wrong")
	assert.Equal(t, errorx.CodeUnauthorized, errorx.GetCode(err))

	resp, err := http.Get(env.srv.URL + "/groups/1/membership")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, err = env.login(t, alice).CreateRoom(ctx, groupID, request.CreateRoomRequest{Name: "", ChatRoomType: model.RoomDirect})
	assert.Equal(t, errorx.CodeInvalidParam, errorx.GetCode(err))
}

func TestDirectRoomResolution(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	aliceRooms := room.NewResolver(env.login(t, alice))
	bobRooms := room.NewResolver(env.login(t, bob))

	created, err := aliceRooms.OpenDirectRoom(ctx, groupID, alice, bob, "")
	require.NoError(t, err)
	require.NotZero(t, created)

	// 对方再次创建得到 409，回查后返回同一个房间
	resolved, err := bobRooms.OpenDirectRoom(ctx, groupID, bob, alice, "")
	require.NoError(t, err)
	assert.Equal(t, created, resolved)

	gr, err := bobRooms.GroupRoom(ctx, groupID)
	require.NoError(t, err)
	assert.Equal(t, groupRoom, gr.RoomID)

	rooms, err := aliceRooms.MyRooms(ctx, groupID)
	require.NoError(t, err)
	assert.Len(t, rooms, 2)

	// carol 看不到 alice 和 bob 的单聊
	rooms, err = room.NewResolver(env.login(t, carol)).MyRooms(ctx, groupID)
	require.NoError(t, err)
	assert.Len(t, rooms, 1)
}

func TestChatRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	aliceChat := env.openRoom(t, env.login(t, alice), alice, groupRoom)
	bobChat := env.openRoom(t, env.login(t, bob), bob, groupRoom)
	env.awaitSubscribers(t, groupRoom, 2)

	require.NoError(t, aliceChat.Send(ctx, "  hello  "))
	// 发送者通过回显收到自己的消息
	got := awaitMessages(t, aliceChat, 1)
	assert.Equal(t, "hello", got[0].Content)
	assert.Equal(t, alice, got[0].SenderID)
	assert.Equal(t, "alice", got[0].SenderName)
	msgID := got[0].MessageID
	assert.Equal(t, msgID, awaitMessages(t, bobChat, 1)[0].MessageID)

	// bob 既不是作者也不是组长，删除被拒绝；他随后发送的消息回显时删除请求已处理完
	require.NoError(t, bobChat.Delete(ctx, msgID))
	require.NoError(t, bobChat.Send(ctx, "ping"))
	got = awaitMessages(t, bobChat, 2)
	assert.Equal(t, msgID, got[0].MessageID)
	assert.Equal(t, "ping", got[1].Content)
	pingID := got[1].MessageID
	awaitMessages(t, aliceChat, 2)

	// 组长可以删除任何人的消息
	require.NoError(t, aliceChat.Delete(ctx, pingID))
	got = awaitMessages(t, bobChat, 1)
	assert.Equal(t, msgID, got[0].MessageID)
	awaitMessages(t, aliceChat, 1)

	require.NoError(t, aliceChat.SendAttachment(ctx, model.MessageImage, "", "https://cdn.test/a.png"))
	got = awaitMessages(t, bobChat, 2)
	assert.Equal(t, model.MessageImage, got[1].MessageType)
	assert.Equal(t, "https://cdn.test/a.png", got[1].AttachmentURL)

	// 关闭后不再接收推送
	bobChat.Close()
	assert.Equal(t, chat.StateDisconnected, bobChat.State())
	env.awaitSubscribers(t, groupRoom, 1)
	require.NoError(t, aliceChat.Send(ctx, "after close"))
	awaitMessages(t, aliceChat, 3)
	assert.Len(t, bobChat.Messages(), 2)
}

func TestChatRejectsOutsiders(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	direct, err := room.NewResolver(env.login(t, alice)).OpenDirectRoom(ctx, groupID, alice, bob, "")
	require.NoError(t, err)

	// carol 连接成功，但订阅单聊房间被拒绝，不会收到推送
	carolChat := env.openRoom(t, env.login(t, carol), carol, direct)
	aliceChat := env.openRoom(t, env.login(t, alice), alice, direct)
	env.awaitSubscribers(t, direct, 1)

	require.NoError(t, aliceChat.Send(ctx, "just us"))
	awaitMessages(t, aliceChat, 1)
	require.NoError(t, carolChat.Send(ctx, "let me in"))
	assert.Empty(t, carolChat.Messages())
	assert.Len(t, aliceChat.Messages(), 1)
}

func TestChatWithoutTokenStaysDisconnected(t *testing.T) {
	env := newTestEnv(t)
	m := chat.NewManager(chat.Options{
		URL:    env.wsURL,
		RoomID: groupRoom,
		UserID: alice,
		Tokens: credential.NewMemoryStore(""),
	})
	defer m.Close()
	assert.ErrorIs(t, m.Open(context.Background()), errorx.ErrAuthMissing)
	assert.Equal(t, chat.StateDisconnected, m.State())
	assert.Equal(t, 0, env.gw.Chat.Hub.Subscribers(groupRoom))
}

package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"kama_group_client/internal/credential"
	"kama_group_client/internal/dto/request"
	"kama_group_client/internal/model"
	"kama_group_client/pkg/errorx"
	"kama_group_client/pkg/util/jwt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validToken(t *testing.T) string {
	t.Helper()
	jwt.Init("client-test-secret", 60)
	token, err := jwt.GenerateAccessToken(3, "tester")
	require.NoError(t, err)
	return token
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *credential.MemoryStore) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	store := credential.NewMemoryStore(validToken(t))
	return NewClient(srv.URL, time.Second, store), store
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func TestGetMembership_SendsBearerToken(t *testing.T) {
	var gotAuth, gotPath string
	c, store := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		writeJSON(w, http.StatusOK, `{"code":1000,"result":{"id":11,"role":"SUB_LEADER","joinedAt":"2024-01-02T03:04:05Z"}}`)
	})

	m, err := c.GetMembership(context.Background(), 42)
	require.NoError(t, err)
	token, _ := store.AccessToken(context.Background())
	assert.Equal(t, "Bearer "+token, gotAuth)
	assert.Equal(t, "/groups/42/membership", gotPath)
	assert.Equal(t, int64(11), m.ID)
	assert.Equal(t, model.RoleSubLeader, m.Role)
}

func TestGetMembership_InvalidRoleIsMalformed(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"result":{"id":11,"role":"OWNER"}}`)
	})
	_, err := c.GetMembership(context.Background(), 1)
	assert.Equal(t, errorx.CodeMalformedPayload, errorx.GetCode(err))
}

func TestGetPermissions(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/groups/7/permissions", r.URL.Path)
		writeJSON(w, http.StatusOK, `{"result":{"permissions":[{"type":"CREATE_POST","role":"MEMBER"},{"type":"DELETE_VOTE","role":"LEADER"}]}}`)
	})
	rules, err := c.GetPermissions(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, []model.PermissionRule{
		{Type: "CREATE_POST", Role: model.RoleMember},
		{Type: "DELETE_VOTE", Role: model.RoleLeader},
	}, rules)
}

func TestDoJSON_MissingResult(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"code":1000}`)
	})
	_, err := c.GetPermissions(context.Background(), 7)
	require.Error(t, err)
	assert.Equal(t, errorx.CodeMalformedPayload, errorx.GetCode(err))
}

func TestDoJSON_StatusMapping(t *testing.T) {
	tests := []struct {
		status int
		code   int
	}{
		{http.StatusUnauthorized, errorx.CodeUnauthorized},
		{http.StatusForbidden, errorx.CodeForbidden},
		{http.StatusNotFound, errorx.CodeNotFound},
		{http.StatusConflict, errorx.CodeConflict},
		{http.StatusBadRequest, errorx.CodeInvalidParam},
		{http.StatusInternalServerError, errorx.CodeServerBusy},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.status, `{"code":1,"msg":"后端提示"}`)
			})
			_, err := c.MyRooms(context.Background(), 1)
			require.Error(t, err)
			assert.Equal(t, tt.code, errorx.GetCode(err))
			assert.Equal(t, "后端提示", errorx.Message(err))
		})
	}
}

func TestCreateRoom_PostsBodyAndReturnsID(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/group/1/chat/rooms", r.URL.Path)
		var body request.CreateRoomRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, model.RoomDirect, body.ChatRoomType)
		assert.Equal(t, []int64{3, 7}, body.ParticipantIds)
		writeJSON(w, http.StatusOK, `{"result":{"roomId":99}}`)
	})
	id, err := c.CreateRoom(context.Background(), 1, request.CreateRoomRequest{
		Name:           "direct",
		ChatRoomType:   model.RoomDirect,
		ParticipantIds: []int64{3, 7},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(99), id)
}

func TestRequest_NoTokenFailsWithoutNetwork(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, credential.NewMemoryStore(""))
	_, err := c.MyRooms(context.Background(), 1)
	assert.True(t, errors.Is(err, errorx.ErrAuthMissing))
	assert.False(t, called)
}

func TestRequest_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewClient(url, time.Second, credential.NewMemoryStore(validToken(t)))
	_, err := c.MyRooms(context.Background(), 1)
	assert.Equal(t, errorx.CodeNetwork, errorx.GetCode(err))
}

func TestLogin_StoresToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		var body request.LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, int64(3), body.UserId)
		writeJSON(w, http.StatusOK, `{"result":{"userId":3,"userName":"tester","accessToken":"tok-1"}}`)
	}))
	defer srv.Close()

	store := credential.NewMemoryStore("")
	c := NewClient(srv.URL, time.Second, store)
	resp, err := c.Login(context.Background(), 3, "123456")
	require.NoError(t, err)
	assert.Equal(t, "tester", resp.UserName)
	got, _ := store.AccessToken(context.Background())
	assert.Equal(t, "tok-1", got)
}

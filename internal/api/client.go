// Package api 封装社区后端的 REST 接口
// 所有请求携带 Authorization: Bearer <token>，响应统一为 {result: ...}
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"kama_group_client/internal/credential"
	"kama_group_client/internal/dto/request"
	"kama_group_client/internal/dto/respond"
	"kama_group_client/internal/model"
	"kama_group_client/pkg/constants"
	"kama_group_client/pkg/errorx"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Client REST 客户端
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     credential.TokenStore
	validate   *validator.Validate
}

// NewClient 创建 REST 客户端，timeout <= 0 时使用默认超时
func NewClient(baseURL string, timeout time.Duration, tokens credential.TokenStore) *Client {
	if timeout <= 0 {
		timeout = constants.REQUEST_TIMEOUT
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		tokens:     tokens,
		validate:   validator.New(),
	}
}

// Tokens 返回客户端使用的凭证存储
func (c *Client) Tokens() credential.TokenStore {
	return c.tokens
}

// GetMembership GET /groups/{groupId}/membership
func (c *Client) GetMembership(ctx context.Context, groupID int64) (*model.Membership, error) {
	membership, err := doJSON[model.Membership](ctx, c, http.MethodGet, fmt.Sprintf("/groups/%d/membership", groupID), nil, true)
	if err != nil {
		return nil, err
	}
	if err := c.validate.Struct(membership); err != nil {
		return nil, errorx.Wrap(err, errorx.CodeMalformedPayload, "成员身份数据格式错误")
	}
	return membership, nil
}

// GetPermissions GET /groups/{groupId}/permissions
func (c *Client) GetPermissions(ctx context.Context, groupID int64) ([]model.PermissionRule, error) {
	data, err := doJSON[respond.PermissionsRespond](ctx, c, http.MethodGet, fmt.Sprintf("/groups/%d/permissions", groupID), nil, true)
	if err != nil {
		return nil, err
	}
	if err := c.validate.Struct(data); err != nil {
		return nil, errorx.Wrap(err, errorx.CodeMalformedPayload, "权限数据格式错误")
	}
	return data.Permissions, nil
}

// MyRooms GET /group/{groupId}/chat/rooms/my
func (c *Client) MyRooms(ctx context.Context, groupID int64) ([]model.ChatRoom, error) {
	rooms, err := doJSON[[]model.ChatRoom](ctx, c, http.MethodGet, fmt.Sprintf("/group/%d/chat/rooms/my", groupID), nil, true)
	if err != nil {
		return nil, err
	}
	if err := c.validate.Var(*rooms, "dive"); err != nil {
		return nil, errorx.Wrap(err, errorx.CodeMalformedPayload, "聊天室数据格式错误")
	}
	return *rooms, nil
}

// CreateRoom POST /group/{groupId}/chat/rooms
// 单聊房间已存在时后端返回 409，对应 errorx.CodeConflict
func (c *Client) CreateRoom(ctx context.Context, groupID int64, req request.CreateRoomRequest) (int64, error) {
	data, err := doJSON[respond.CreateRoomRespond](ctx, c, http.MethodPost, fmt.Sprintf("/group/%d/chat/rooms", groupID), req, true)
	if err != nil {
		return 0, err
	}
	if err := c.validate.Struct(data); err != nil {
		return 0, errorx.Wrap(err, errorx.CodeMalformedPayload, "创建聊天室响应格式错误")
	}
	return data.RoomId, nil
}

// Login POST /login，成功后把访问令牌写入凭证存储
func (c *Client) Login(ctx context.Context, userID int64, password string) (*respond.LoginRespond, error) {
	data, err := doJSON[respond.LoginRespond](ctx, c, http.MethodPost, "/login", request.LoginRequest{
		UserId:   userID,
		Password: password,
	}, false)
	if err != nil {
		return nil, err
	}
	if err := c.validate.Struct(data); err != nil {
		return nil, errorx.Wrap(err, errorx.CodeMalformedPayload, "登录响应格式错误")
	}
	if c.tokens != nil {
		if err := c.tokens.SetAccessToken(ctx, data.AccessToken); err != nil {
			return nil, err
		}
	}
	return data, nil
}

// doJSON 发送请求并解析 {result: T}
// 非 200 状态码按 statusError 转换；result 缺失返回 CodeMalformedPayload
func doJSON[T any](ctx context.Context, c *Client, method, path string, body any, auth bool) (*T, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, errorx.Wrap(err, errorx.CodeInvalidParam, errorx.ErrInvalidParam.Msg)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.CodeInvalidParam, errorx.ErrInvalidParam.Msg)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth {
		token, err := credential.Token(ctx, c.tokens)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		zap.L().Warn("request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return nil, errorx.Wrapf(err, errorx.CodeNetwork, "网络错误，请稍后重试")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errorx.Wrapf(err, errorx.CodeNetwork, "读取响应失败")
	}

	var env respond.Envelope[T]
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(method, path, resp.StatusCode, env.Msg)
	}
	if decodeErr != nil {
		return nil, errorx.Wrapf(decodeErr, errorx.CodeMalformedPayload, "%s %s 响应不是合法 JSON", method, path)
	}
	if env.Result == nil {
		return nil, errorx.Newf(errorx.CodeMalformedPayload, "%s %s 响应缺少 result", method, path)
	}
	return env.Result, nil
}

// statusError 将 HTTP 状态码转换为业务错误，msg 为后端返回的提示
func statusError(method, path string, status int, msg string) error {
	cause := fmt.Errorf("%s %s: status %d", method, path, status)
	code := errorx.CodeServerBusy
	switch status {
	case http.StatusUnauthorized:
		code = errorx.CodeUnauthorized
	case http.StatusForbidden:
		code = errorx.CodeForbidden
	case http.StatusNotFound:
		code = errorx.CodeNotFound
	case http.StatusConflict:
		code = errorx.CodeConflict
	case http.StatusBadRequest:
		code = errorx.CodeInvalidParam
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	return errorx.Wrap(cause, code, msg)
}

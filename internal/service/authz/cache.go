// Package authz 缓存当前用户在群组中的成员身份和群组权限表，
// 加载完成后同步回答"能否执行某操作"
package authz

import (
	"context"
	"errors"
	"sync/atomic"

	"kama_group_client/internal/model"
	"kama_group_client/pkg/errorx"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// State 缓存状态
type State int32

const (
	StateIdle    State = iota // 尚未初始化
	StateLoading              // 首次加载中，界面应暂不渲染受控操作
	StateReady                // 已就绪（权限表可能为空，空表表示全部拒绝）
	StateErrored              // 加载失败，界面应提示重试
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// Source 成员身份与权限的数据来源，通常是 *api.Client
type Source interface {
	GetMembership(ctx context.Context, groupID int64) (*model.Membership, error)
	GetPermissions(ctx context.Context, groupID int64) ([]model.PermissionRule, error)
}

// Checker 能力检查接口，视图通过构造函数拿到它而不是读取全局状态
type Checker interface {
	HasPermission(capability string) bool
	IsLeader() bool
	IsSubLeaderOrAbove() bool
	IsMemberOrAbove() bool
}

// snapshot 一次加载的完整结果，发布后不再修改
type snapshot struct {
	state      State
	groupID    int64
	membership model.Membership
	rules      map[string]model.Role
	list       []model.PermissionRule
	err        error
}

// Cache 会话级权限缓存
// 读操作只读取当前快照指针，刷新在两个请求都返回后一次性替换快照，
// 因此读方要么看到完整的旧状态，要么看到完整的新状态
type Cache struct {
	source     Source
	current    atomic.Pointer[snapshot]
	generation atomic.Uint64
	inflight   atomic.Int32
}

// NewCache 创建权限缓存
func NewCache(source Source) *Cache {
	c := &Cache{source: source}
	c.current.Store(&snapshot{state: StateIdle})
	return c
}

// Initialize 并发拉取成员身份和权限表
// 任一请求失败（非 200、缺少 result、字段非法）返回 ErrAuthInit，缓存进入 errored 状态且不保留数据
// ctx 取消（例如视图已卸载）时不修改缓存
func (c *Cache) Initialize(ctx context.Context, groupID int64) error {
	gen := c.generation.Add(1)
	c.inflight.Add(1)
	defer c.inflight.Add(-1)

	// 同一群组已有就绪数据时保留旧快照，直到新数据完整返回
	old := c.current.Load()
	var loading *snapshot
	if old.state != StateReady || old.groupID != groupID {
		loading = &snapshot{state: StateLoading, groupID: groupID}
		c.current.Store(loading)
	}

	var (
		membership *model.Membership
		rules      []model.PermissionRule
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		m, err := c.source.GetMembership(gctx, groupID)
		if err != nil {
			return err
		}
		membership = m
		return nil
	})
	g.Go(func() error {
		r, err := c.source.GetPermissions(gctx, groupID)
		if err != nil {
			return err
		}
		rules = r
		return nil
	})
	err := g.Wait()

	if ctxErr := ctx.Err(); ctxErr != nil {
		zap.L().Debug("authz initialize abandoned", zap.Int64("groupId", groupID), zap.Error(ctxErr))
		// 恢复加载前的快照；已有更新的加载开始时不动
		if loading != nil && c.generation.Load() == gen {
			c.current.CompareAndSwap(loading, old)
		}
		return ctxErr
	}
	if err == nil && membership == nil {
		err = errorx.New(errorx.CodeMalformedPayload, "成员身份为空")
	}

	var next *snapshot
	if err != nil {
		authErr := errorx.Wrap(err, errorx.CodeAuthInit, errorx.ErrAuthInit.Msg+"："+errorx.Message(err))
		zap.L().Warn("authz initialize failed", zap.Int64("groupId", groupID), zap.Error(err))
		next = &snapshot{state: StateErrored, groupID: groupID, err: authErr}
		err = authErr
	} else {
		next = newReadySnapshot(groupID, *membership, rules)
	}

	// 已有更新的加载开始，本次结果作废
	if c.generation.Load() != gen {
		zap.L().Debug("authz initialize superseded", zap.Int64("groupId", groupID))
		return err
	}
	c.current.Store(next)
	return err
}

// Refresh 重新加载最近一次初始化的群组
func (c *Cache) Refresh(ctx context.Context) error {
	snap := c.current.Load()
	if snap.state == StateIdle {
		return errorx.New(errorx.CodeInvalidParam, "权限缓存尚未初始化")
	}
	return c.Initialize(ctx, snap.groupID)
}

func newReadySnapshot(groupID int64, membership model.Membership, list []model.PermissionRule) *snapshot {
	rules := make(map[string]model.Role, len(list))
	for _, rule := range list {
		// 同名规则以后出现的为准
		rules[rule.Type] = rule.Role
	}
	copied := make([]model.PermissionRule, len(list))
	copy(copied, list)
	return &snapshot{
		state:      StateReady,
		groupID:    groupID,
		membership: membership,
		rules:      rules,
		list:       copied,
	}
}

// State 当前状态
func (c *Cache) State() State {
	return c.current.Load().state
}

// Refreshing 是否有加载正在进行（包括保留旧快照的刷新）
func (c *Cache) Refreshing() bool {
	return c.inflight.Load() > 0
}

// Err errored 状态下的 ErrAuthInit，其他状态为 nil
func (c *Cache) Err() error {
	return c.current.Load().err
}

// GroupID 当前快照所属群组
func (c *Cache) GroupID() int64 {
	return c.current.Load().groupID
}

// Membership 返回成员身份，未就绪时 ok 为 false
func (c *Cache) Membership() (model.Membership, bool) {
	snap := c.current.Load()
	if snap.state != StateReady {
		return model.Membership{}, false
	}
	return snap.membership, true
}

// Permissions 返回权限表副本，未就绪时为 nil
func (c *Cache) Permissions() []model.PermissionRule {
	snap := c.current.Load()
	if snap.state != StateReady {
		return nil
	}
	out := make([]model.PermissionRule, len(snap.list))
	copy(out, snap.list)
	return out
}

// HasPermission 未就绪或权限类型未知时返回 false
func (c *Cache) HasPermission(capability string) bool {
	snap := c.current.Load()
	if snap.state != StateReady {
		return false
	}
	required, ok := snap.rules[capability]
	if !ok {
		return false
	}
	return model.HasRoleLevel(snap.membership.Role, required)
}

// Require 以编程方式执行受控操作前调用，缺少权限时返回 ErrPermissionDenied
func (c *Cache) Require(capability string) error {
	if c.HasPermission(capability) {
		return nil
	}
	zap.L().Info("permission denied", zap.String("capability", capability), zap.Stringer("state", c.State()))
	return errorx.Newf(errorx.CodePermissionDenied, "没有执行 %s 的权限", capability)
}

// RequireDelete 删除消息前的检查：作者本人或组长才能删除
func RequireDelete(checker Checker, selfID, senderID int64) error {
	if senderID == selfID || checker.IsLeader() {
		return nil
	}
	zap.L().Info("permission denied", zap.String("action", "delete_message"), zap.Int64("senderId", senderID))
	return errorx.New(errorx.CodePermissionDenied, "只能删除自己的消息")
}

// HasRoleLevel 纯函数，见 model.HasRoleLevel
func HasRoleLevel(role, required model.Role) bool {
	return model.HasRoleLevel(role, required)
}

func (c *Cache) roleAtLeast(required model.Role) bool {
	m, ok := c.Membership()
	return ok && model.HasRoleLevel(m.Role, required)
}

func (c *Cache) IsLeader() bool           { return c.roleAtLeast(model.RoleLeader) }
func (c *Cache) IsSubLeaderOrAbove() bool { return c.roleAtLeast(model.RoleSubLeader) }
func (c *Cache) IsMemberOrAbove() bool    { return c.roleAtLeast(model.RoleMember) }

// IsDenied 判断错误是否为缺少权限
func IsDenied(err error) bool {
	return errors.Is(err, errorx.ErrPermissionDenied)
}

var _ Checker = (*Cache)(nil)

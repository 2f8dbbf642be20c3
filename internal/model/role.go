// Package model 定义客户端与网关共用的领域模型
// 本文件定义群组角色及其等级比较
package model

// Role 群组成员角色
type Role string

const (
	RoleMember    Role = "MEMBER"     // 普通成员
	RoleSubLeader Role = "SUB_LEADER" // 副组长
	RoleLeader    Role = "LEADER"     // 组长
)

// Level 返回角色等级：MEMBER=1, SUB_LEADER=2, LEADER=3，未知角色为 0
func (r Role) Level() int {
	switch r {
	case RoleMember:
		return 1
	case RoleSubLeader:
		return 2
	case RoleLeader:
		return 3
	default:
		return 0
	}
}

// Valid 是否为已知角色
func (r Role) Valid() bool {
	return r.Level() > 0
}

// HasRoleLevel 判断 role 是否满足 required 要求的最低等级
// 未知角色等级为 0，因此未知的 required 对任何角色都成立，未知的 role 只满足未知的 required
func HasRoleLevel(role, required Role) bool {
	return role.Level() >= required.Level()
}

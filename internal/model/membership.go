package model

import "time"

// Membership 当前用户在某个群组中的成员身份
type Membership struct {
	ID       int64     `json:"id" validate:"required"`
	Role     Role      `json:"role" validate:"required,oneof=MEMBER SUB_LEADER LEADER"`
	JoinedAt time.Time `json:"joinedAt"`
}

// PermissionRule 群组的一条权限规则：执行 Type 操作至少需要 Role 角色
type PermissionRule struct {
	Type string `json:"type" validate:"required"`
	Role Role   `json:"role" validate:"required,oneof=MEMBER SUB_LEADER LEADER"`
}

// 常用权限类型
const (
	CapCreatePost     = "CREATE_POST"
	CapDeletePost     = "DELETE_POST"
	CapCreateVote     = "CREATE_VOTE"
	CapDeleteVote     = "DELETE_VOTE"
	CapCreateMission  = "CREATE_MISSION"
	CapCreateSchedule = "CREATE_SCHEDULE"
	CapManageMembers  = "MANAGE_MEMBERS"
)

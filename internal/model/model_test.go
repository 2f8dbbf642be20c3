package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasRoleLevel(t *testing.T) {
	roles := []Role{RoleMember, RoleSubLeader, RoleLeader}
	for _, r := range roles {
		for _, q := range roles {
			assert.Equal(t, r.Level() >= q.Level(), HasRoleLevel(r, q), "%s vs %s", r, q)
		}
	}

	assert.True(t, HasRoleLevel("SUB_LEADER", "MEMBER"))
	assert.False(t, HasRoleLevel("MEMBER", "LEADER"))
	assert.True(t, HasRoleLevel("LEADER", "LEADER"))
}

func TestRoleLevel_UnknownIsZero(t *testing.T) {
	assert.Equal(t, 0, Role("OWNER").Level())
	assert.Equal(t, 0, Role("").Level())
	assert.False(t, Role("member").Valid())
	assert.False(t, HasRoleLevel("GUEST", RoleMember))
	assert.True(t, HasRoleLevel(RoleMember, "GUEST"))
}

func TestPairKey_OrderIndependent(t *testing.T) {
	assert.Equal(t, "3_7", PairKey(3, 7))
	assert.Equal(t, PairKey(3, 7), PairKey(7, 3))
}

func TestChatRoom_HasParticipants(t *testing.T) {
	room := ChatRoom{RoomID: 1, RoomType: RoomDirect, ParticipantIDs: []int64{7, 3}}
	assert.True(t, room.HasParticipants(3, 7))
	assert.True(t, room.HasParticipants(7, 3))
	assert.False(t, room.HasParticipants(3, 8))

	group := ChatRoom{RoomID: 2, RoomType: RoomGroup, ParticipantIDs: []int64{3, 7, 9}}
	assert.False(t, group.HasParticipants(3, 7))
}

func TestTopic(t *testing.T) {
	assert.Equal(t, "/topic/chat/room/42", Topic(42))
}

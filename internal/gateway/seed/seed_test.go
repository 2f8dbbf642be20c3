package seed

import (
	"context"
	"testing"

	"kama_group_client/internal/dao/memory"
	"kama_group_client/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestLoadFile_DefaultSeed(t *testing.T) {
	data, err := LoadFile("../../../configs/seed.toml")
	require.NoError(t, err)
	require.Len(t, data.Groups, 1)
	assert.NotEmpty(t, data.Users)
	for _, m := range data.Groups[0].Members {
		assert.True(t, m.Role.Valid(), "member %d", m.UserId)
	}
}

func TestApply_HashesPasswords(t *testing.T) {
	repos := memory.NewRepositories()
	data := &Data{
		Users: []User{{Id: 3, Name: "alice", Password: "secret"}},
		Groups: []Group{{
			Id:      1,
			Members: []Member{{UserId: 3, Role: model.RoleLeader}},
			Rooms: []Room{
				{Type: model.RoomGroup, Name: "general"},
				{Id: 9, Type: model.RoomDirect, Name: "dm", Participants: []int64{7, 3}},
			},
		}},
	}
	require.NoError(t, Apply(context.Background(), repos, data))

	user, err := repos.User.FindByID(context.Background(), 3)
	require.NoError(t, err)
	assert.NotEqual(t, "secret", user.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("secret")))

	room, err := repos.Room.FindByID(context.Background(), 9)
	require.NoError(t, err)
	require.NotNil(t, room.PairKey)
	assert.Equal(t, "3_7", *room.PairKey)

	rooms, err := repos.Room.FindByUser(context.Background(), 1, 3)
	require.NoError(t, err)
	assert.Len(t, rooms, 2)
}

func TestApply_RejectsBadData(t *testing.T) {
	repos := memory.NewRepositories()
	err := Apply(context.Background(), repos, &Data{Groups: []Group{{Id: 1, Members: []Member{{UserId: 3, Role: "OWNER"}}}}})
	assert.Error(t, err)

	err = Apply(context.Background(), repos, &Data{Groups: []Group{{Id: 1, Rooms: []Room{{Type: model.RoomDirect, Participants: []int64{3}}}}}})
	assert.Error(t, err)

	_, err = Decode("users = 1")
	assert.Error(t, err)
}

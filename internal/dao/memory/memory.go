// Package memory 提供进程内的 Repository 实现，用于本地开发和测试
package memory

import (
	"context"
	"sort"
	"sync"

	"kama_group_client/internal/dao/repository"
	"kama_group_client/internal/model"
	"kama_group_client/pkg/errorx"
)

// store 所有表共用一把锁
type store struct {
	mu           sync.RWMutex
	users        map[int64]model.UserInfo
	members      map[[2]int64]model.GroupMember // {groupId, userId}
	permissions  map[int64][]model.GroupPermission
	rooms        map[int64]model.ChatRoomInfo
	participants map[int64][]int64
	messages     map[int64]model.MessageInfo
	nextID       int64
}

// NewRepositories 创建一组共享同一份数据的内存 Repository
func NewRepositories() *repository.Repositories {
	s := &store{
		users:        make(map[int64]model.UserInfo),
		members:      make(map[[2]int64]model.GroupMember),
		permissions:  make(map[int64][]model.GroupPermission),
		rooms:        make(map[int64]model.ChatRoomInfo),
		participants: make(map[int64][]int64),
		messages:     make(map[int64]model.MessageInfo),
	}
	return &repository.Repositories{
		User:       userRepository{s},
		Member:     memberRepository{s},
		Permission: permissionRepository{s},
		Room:       roomRepository{s},
		Message:    messageRepository{s},
	}
}

type userRepository struct{ *store }

func (r userRepository) FindByID(ctx context.Context, id int64) (*model.UserInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[id]
	if !ok {
		return nil, errorx.Newf(errorx.CodeNotFound, "查询用户 id=%d", id)
	}
	return &user, nil
}

func (r userRepository) Create(ctx context.Context, user *model.UserInfo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.Id]; ok {
		return errorx.Newf(errorx.CodeConflict, "用户 id=%d 已存在", user.Id)
	}
	r.users[user.Id] = *user
	return nil
}

type memberRepository struct{ *store }

func (r memberRepository) Find(ctx context.Context, groupID, userID int64) (*model.GroupMember, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	member, ok := r.members[[2]int64{groupID, userID}]
	if !ok {
		return nil, errorx.Newf(errorx.CodeNotFound, "查询群成员 group_id=%d user_id=%d", groupID, userID)
	}
	return &member, nil
}

func (r memberRepository) Create(ctx context.Context, member *model.GroupMember) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := [2]int64{member.GroupId, member.UserId}
	if _, ok := r.members[key]; ok {
		return errorx.Newf(errorx.CodeConflict, "群成员 group_id=%d user_id=%d 已存在", member.GroupId, member.UserId)
	}
	r.nextID++
	member.Id = r.nextID
	r.members[key] = *member
	return nil
}

type permissionRepository struct{ *store }

func (r permissionRepository) FindByGroup(ctx context.Context, groupID int64) ([]model.GroupPermission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]model.GroupPermission{}, r.permissions[groupID]...), nil
}

func (r permissionRepository) Save(ctx context.Context, permission *model.GroupPermission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.permissions[permission.GroupId]
	for i := range list {
		if list[i].Type == permission.Type {
			list[i].Role = permission.Role
			*permission = list[i]
			return nil
		}
	}
	r.nextID++
	permission.Id = r.nextID
	r.permissions[permission.GroupId] = append(list, *permission)
	return nil
}

type roomRepository struct{ *store }

func (r roomRepository) FindByID(ctx context.Context, roomID int64) (*model.ChatRoomInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.rooms[roomID]
	if !ok {
		return nil, errorx.Newf(errorx.CodeNotFound, "查询聊天室 id=%d", roomID)
	}
	return &room, nil
}

func (r roomRepository) FindByUser(ctx context.Context, groupID, userID int64) ([]model.ChatRoomInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var rooms []model.ChatRoomInfo
	for id, room := range r.rooms {
		if room.GroupId != groupID {
			continue
		}
		if room.RoomType == model.RoomGroup || contains(r.participants[id], userID) {
			rooms = append(rooms, room)
		}
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].Id < rooms[j].Id })
	return rooms, nil
}

func (r roomRepository) Participants(ctx context.Context, roomID int64) ([]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := append([]int64{}, r.participants[roomID]...)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (r roomRepository) Create(ctx context.Context, room *model.ChatRoomInfo, participants []int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rooms[room.Id]; ok {
		return errorx.Newf(errorx.CodeConflict, "聊天室 id=%d 已存在", room.Id)
	}
	if room.PairKey != nil {
		for _, existing := range r.rooms {
			if existing.GroupId == room.GroupId && existing.PairKey != nil && *existing.PairKey == *room.PairKey {
				return errorx.Newf(errorx.CodeConflict, "创建聊天室 group_id=%d", room.GroupId)
			}
		}
	}
	r.rooms[room.Id] = *room
	r.participants[room.Id] = append([]int64{}, participants...)
	return nil
}

type messageRepository struct{ *store }

func (r messageRepository) Create(ctx context.Context, message *model.MessageInfo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages[message.Id] = *message
	return nil
}

func (r messageRepository) FindByID(ctx context.Context, id int64) (*model.MessageInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	message, ok := r.messages[id]
	if !ok {
		return nil, errorx.Newf(errorx.CodeNotFound, "查询消息 id=%d", id)
	}
	return &message, nil
}

func (r messageRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.messages[id]; !ok {
		return errorx.Newf(errorx.CodeNotFound, "删除消息 id=%d", id)
	}
	delete(r.messages, id)
	return nil
}

func contains(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

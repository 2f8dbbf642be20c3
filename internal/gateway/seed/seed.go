// Package seed 从 TOML 文件加载开发网关的初始数据
package seed

import (
	"context"
	"fmt"
	"time"

	"kama_group_client/internal/dao/repository"
	"kama_group_client/internal/model"
	"kama_group_client/pkg/errorx"
	"kama_group_client/pkg/util/snowflake"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Data 初始数据，密码为明文，写入前做 bcrypt 哈希
type Data struct {
	Users  []User  `toml:"users"`
	Groups []Group `toml:"groups"`
}

type User struct {
	Id       int64  `toml:"id"`
	Name     string `toml:"name"`
	Password string `toml:"password"`
}

type Group struct {
	Id          int64        `toml:"id"`
	Members     []Member     `toml:"members"`
	Permissions []Permission `toml:"permissions"`
	Rooms       []Room       `toml:"rooms"`
}

type Member struct {
	UserId int64      `toml:"userId"`
	Role   model.Role `toml:"role"`
}

type Permission struct {
	Type string     `toml:"type"`
	Role model.Role `toml:"role"`
}

// Room Id 为 0 时生成雪花 ID；单聊房间需要 Participants
type Room struct {
	Id           int64          `toml:"id"`
	Type         model.RoomType `toml:"type"`
	Name         string         `toml:"name"`
	Participants []int64        `toml:"participants"`
}

// LoadFile 解析种子文件
func LoadFile(path string) (*Data, error) {
	var data Data
	if _, err := toml.DecodeFile(path, &data); err != nil {
		return nil, fmt.Errorf("decode seed %s: %w", path, err)
	}
	return &data, nil
}

// Decode 解析 TOML 文本
func Decode(text string) (*Data, error) {
	var data Data
	if _, err := toml.Decode(text, &data); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	return &data, nil
}

// Apply 写入初始数据，已存在的记录跳过，因此可以在每次启动时重复执行
func Apply(ctx context.Context, repos *repository.Repositories, data *Data) error {
	now := time.Now()
	for _, u := range data.Users {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash password of user %d: %w", u.Id, err)
		}
		err = repos.User.Create(ctx, &model.UserInfo{Id: u.Id, Name: u.Name, Password: string(hash), CreatedAt: now})
		if err := skipConflict(err); err != nil {
			return err
		}
	}

	for _, g := range data.Groups {
		for _, m := range g.Members {
			if !m.Role.Valid() {
				return fmt.Errorf("group %d member %d: unknown role %q", g.Id, m.UserId, m.Role)
			}
			err := repos.Member.Create(ctx, &model.GroupMember{GroupId: g.Id, UserId: m.UserId, Role: m.Role, JoinedAt: now})
			if err := skipConflict(err); err != nil {
				return err
			}
		}
		for _, p := range g.Permissions {
			if err := repos.Permission.Save(ctx, &model.GroupPermission{GroupId: g.Id, Type: p.Type, Role: p.Role}); err != nil {
				return err
			}
		}
		for _, r := range g.Rooms {
			room := model.ChatRoomInfo{Id: r.Id, GroupId: g.Id, RoomType: r.Type, Name: r.Name, CreatedAt: now}
			if room.Id == 0 {
				room.Id = snowflake.GenerateID()
			}
			var participants []int64
			if r.Type == model.RoomDirect {
				if len(r.Participants) != 2 {
					return fmt.Errorf("group %d room %q: direct room needs two participants", g.Id, r.Name)
				}
				key := model.PairKey(r.Participants[0], r.Participants[1])
				room.PairKey = &key
				participants = r.Participants
			}
			if err := skipConflict(repos.Room.Create(ctx, &room, participants)); err != nil {
				return err
			}
		}
	}
	zap.L().Info("seed applied", zap.Int("users", len(data.Users)), zap.Int("groups", len(data.Groups)))
	return nil
}

func skipConflict(err error) error {
	if err != nil && errorx.GetCode(err) == errorx.CodeConflict {
		return nil
	}
	return err
}

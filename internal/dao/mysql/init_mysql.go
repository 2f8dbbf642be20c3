// Package mysql 提供开发网关的 MySQL 存储
// 负责建立连接、自动迁移表结构，并创建基于 GORM 的 Repository 实现
package mysql

import (
	"fmt"

	"kama_group_client/internal/config"
	"kama_group_client/internal/dao/repository"
	"kama_group_client/internal/model"

	"go.uber.org/zap"
	mysqldriver "gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// DSN 构建 MySQL 连接字符串
// 格式：user:password@tcp(host:port)/database?params
func DSN(conf config.MysqlConfig) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		conf.User,
		conf.Password,
		conf.Host,
		conf.Port,
		conf.DatabaseName,
	)
}

// Open 建立数据库连接并迁移表结构
func Open(conf config.MysqlConfig) (*gorm.DB, error) {
	// TranslateError 使唯一索引冲突返回 gorm.ErrDuplicatedKey
	db, err := gorm.Open(mysqldriver.Open(DSN(conf)), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("open mysql %s:%d: %w", conf.Host, conf.Port, err)
	}

	// 如果表不存在则创建，如果字段变更则更新结构，不会删除已有字段或数据
	if err := db.AutoMigrate(
		&model.UserInfo{},
		&model.GroupMember{},
		&model.GroupPermission{},
		&model.ChatRoomInfo{},
		&model.ChatRoomMember{},
		&model.MessageInfo{},
	); err != nil {
		return nil, fmt.Errorf("migrate mysql: %w", err)
	}
	zap.L().Info("mysql ready", zap.String("database", conf.DatabaseName))
	return db, nil
}

// NewRepositories 将 db 注入所有 Repository
func NewRepositories(db *gorm.DB) *repository.Repositories {
	return &repository.Repositories{
		User:       &userRepository{db: db},
		Member:     &memberRepository{db: db},
		Permission: &permissionRepository{db: db},
		Room:       &roomRepository{db: db},
		Message:    &messageRepository{db: db},
	}
}

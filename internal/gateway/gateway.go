// Package gateway 组装本地开发网关：存储、业务服务、聊天推送和 HTTP 引擎
// 网关实现客户端依赖的后端接口，用于本地调试和端到端测试
package gateway

import (
	"context"
	"fmt"

	"kama_group_client/internal/config"
	"kama_group_client/internal/dao/memory"
	"kama_group_client/internal/dao/mysql"
	"kama_group_client/internal/dao/repository"
	"kama_group_client/internal/gateway/handler"
	"kama_group_client/internal/gateway/https_server"
	"kama_group_client/internal/gateway/hub"
	"kama_group_client/internal/gateway/seed"
	"kama_group_client/internal/gateway/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Gateway 开发网关
type Gateway struct {
	Engine *gin.Engine
	Chat   *hub.ChatServer
}

// New 组装网关，调用 Start 后才开始推送聊天事件
func New(conf *config.Config, repos *repository.Repositories) *Gateway {
	svc := service.NewServices(repos)
	chatServer := hub.NewChatServer(hub.ChatServerConfig{
		Mode:     conf.GatewayConfig.MessageMode,
		Kafka:    conf.KafkaConfig,
		Services: svc,
	})
	handlers := handler.NewHandlers(svc, chatServer)
	return &Gateway{
		Engine: https_server.Init(conf.GatewayConfig, handlers),
		Chat:   chatServer,
	}
}

// Start 启动聊天事件消费
func (g *Gateway) Start() {
	g.Chat.Start()
}

// Close 停止聊天事件消费
func (g *Gateway) Close() {
	g.Chat.Close()
}

// OpenRepositories 按 gatewayConfig.storage 打开存储并写入种子数据
func OpenRepositories(ctx context.Context, conf *config.Config) (*repository.Repositories, error) {
	var repos *repository.Repositories
	switch conf.GatewayConfig.Storage {
	case "mysql":
		db, err := mysql.Open(conf.MysqlConfig)
		if err != nil {
			return nil, err
		}
		repos = mysql.NewRepositories(db)
	case "memory", "":
		repos = memory.NewRepositories()
	default:
		return nil, fmt.Errorf("unknown gateway storage %q", conf.GatewayConfig.Storage)
	}

	if conf.GatewayConfig.SeedFile == "" {
		zap.L().Warn("no seed file configured, storage starts empty")
		return repos, nil
	}
	data, err := seed.LoadFile(conf.GatewayConfig.SeedFile)
	if err != nil {
		return nil, err
	}
	if err := seed.Apply(ctx, repos, data); err != nil {
		return nil, fmt.Errorf("apply seed: %w", err)
	}
	return repos, nil
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"kama_group_client/internal/config"
	"kama_group_client/internal/gateway"
	"kama_group_client/internal/gateway/handler"
	"kama_group_client/internal/infrastructure/logger"
	"kama_group_client/pkg/util/jwt"
	"kama_group_client/pkg/util/snowflake"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径，为空时按默认路径查找")
	flag.Parse()

	// 1. 加载配置
	conf := config.GetConfig()
	if *configPath != "" {
		c, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("load config failed: %v", err)
		}
		config.SetConfig(c)
		conf = c
	}

	// 2. 初始化日志
	if err := logger.Init(&conf.LogConfig, logger.ModeDev); err != nil {
		log.Fatalf("init logger failed: %v", err)
	}
	defer zap.L().Sync()

	// 3. 初始化 JWT、雪花 ID 和参数校验翻译
	jwt.Init(conf.JWTConfig.Secret, conf.JWTConfig.AccessTokenExpiry)
	snowflake.Init(conf.SnowflakeConfig.MachineID)
	if err := handler.InitTrans("zh"); err != nil {
		zap.L().Fatal("初始化翻译器失败", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 4. 打开存储并写入种子数据
	repos, err := gateway.OpenRepositories(ctx, conf)
	if err != nil {
		zap.L().Fatal("初始化存储失败", zap.String("storage", conf.GatewayConfig.Storage), zap.Error(err))
	}

	// 5. 组装网关并启动聊天推送
	gw := gateway.New(conf, repos)
	gw.Start()
	defer gw.Close()

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", conf.GatewayConfig.Host, conf.GatewayConfig.Port),
		Handler: gw.Engine,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		zap.L().Info("dev gateway listening",
			zap.String("addr", srv.Addr),
			zap.String("storage", conf.GatewayConfig.Storage),
			zap.String("messageMode", conf.GatewayConfig.MessageMode),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		zap.L().Info("关闭服务器...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		zap.L().Error("server stopped with error", zap.Error(err))
		return
	}
	zap.L().Info("服务器已关闭")
}

// Package https_server 创建开发网关的 Gin 引擎并配置中间件和路由
package https_server

import (
	"kama_group_client/internal/config"
	"kama_group_client/internal/gateway/handler"
	"kama_group_client/internal/gateway/router"
	"kama_group_client/internal/infrastructure/logger"
	"kama_group_client/internal/infrastructure/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Init 创建 Gin 引擎
// 中间件顺序：日志、恢复、CORS、可选的 TLS 重定向，然后注册业务路由
func Init(conf config.GatewayConfig, handlers *handler.Handlers) *gin.Engine {
	engine := gin.New()
	engine.Use(logger.GinLogger())
	engine.Use(logger.GinRecovery(true))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"} // 开发网关允许所有来源
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	engine.Use(cors.New(corsConfig))

	if conf.TLSRedirect {
		engine.Use(middleware.TlsHandler(conf.Host, conf.Port))
	}

	router.NewRouter(handlers).RegisterRoutes(engine)
	return engine
}

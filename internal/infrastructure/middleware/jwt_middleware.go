// Package middleware 提供开发网关的 gin 中间件
package middleware

import (
	"net/http"
	"strings"

	"kama_group_client/pkg/errorx"
	"kama_group_client/pkg/util/jwt"

	"github.com/gin-gonic/gin"
)

// JWTAuth 校验 Access Token 并把用户 ID 写入上下文的 "user_id"
// 令牌取自 Authorization: Bearer 头；WebSocket 握手无法设置请求头时取 token 查询参数
func JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, msg := bearerToken(c)
		if token == "" {
			abortUnauthorized(c, msg)
			return
		}

		claims, err := jwt.ParseToken(token)
		if err != nil {
			abortUnauthorized(c, "Token 已过期或无效，请重新登录")
			return
		}
		if claims.Subject != "access_token" || claims.UserID == 0 {
			abortUnauthorized(c, "请使用 Access Token 访问此接口")
			return
		}

		c.Set("user_id", claims.UserID)
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, string) {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			return "", "Token 格式错误，请使用 Bearer Token"
		}
		return parts[1], ""
	}
	if token := c.Query("token"); token != "" {
		return token, ""
	}
	return "", "请先登录"
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"code": errorx.CodeUnauthorized,
		"msg":  msg,
	})
}

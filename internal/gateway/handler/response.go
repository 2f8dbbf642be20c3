package handler

import (
	"errors"
	"net/http"

	"kama_group_client/pkg/errorx"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// HandleSuccess 返回成功响应，业务数据位于 result
func HandleSuccess(c *gin.Context, result any) {
	c.JSON(http.StatusOK, gin.H{
		"code":   errorx.CodeSuccess,
		"msg":    "success",
		"result": result,
	})
}

// HandleError 通用错误处理方法
// 业务错误按错误码映射 HTTP 状态，客户端依赖状态码区分 401/403/404/409；
// 非 CodeError 的错误记录日志后返回服务繁忙
func HandleError(c *gin.Context, err error) {
	var codeErr *errorx.CodeError
	if errors.As(err, &codeErr) {
		c.JSON(HTTPStatus(codeErr.Code), gin.H{
			"code": codeErr.Code,
			"msg":  codeErr.Msg,
		})
		return
	}

	zap.L().Error("system error",
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
		zap.Error(err),
	)
	c.JSON(http.StatusInternalServerError, gin.H{
		"code": errorx.ErrServerBusy.Code,
		"msg":  errorx.ErrServerBusy.Msg,
	})
}

// HandleParamError 处理参数绑定错误（带 validator 翻译支持）
func HandleParamError(c *gin.Context, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && Trans != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":   errorx.ErrInvalidParam.Code,
			"msg":    errorx.ErrInvalidParam.Msg,
			"fields": RemoveTopStruct(validationErrs.Translate(Trans)),
		})
		return
	}

	zap.L().Debug("param bind error", zap.Error(err))
	c.JSON(http.StatusBadRequest, gin.H{
		"code": errorx.ErrInvalidParam.Code,
		"msg":  errorx.ErrInvalidParam.Msg,
	})
}

// HTTPStatus 业务错误码对应的 HTTP 状态
func HTTPStatus(code int) int {
	switch code {
	case errorx.CodeUnauthorized, errorx.CodeUserNotExist, errorx.CodeInvalidPassword, errorx.CodeAuthMissing:
		return http.StatusUnauthorized
	case errorx.CodeForbidden, errorx.CodePermissionDenied:
		return http.StatusForbidden
	case errorx.CodeNotFound:
		return http.StatusNotFound
	case errorx.CodeConflict:
		return http.StatusConflict
	case errorx.CodeInvalidParam:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// currentUser 认证中间件写入的用户 ID
func currentUser(c *gin.Context) (int64, bool) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		HandleError(c, errorx.ErrUnauthorized)
		return 0, false
	}
	return userID, true
}

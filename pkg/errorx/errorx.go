package errorx

import (
	"errors"
	"fmt"
)

// CodeError 带业务错误码的自定义错误
// 实现了 error 接口，支持 %w 包装底层错误，且能被 errors.Is/errors.As 识别
type CodeError struct {
	Code  int    // 业务错误码
	Msg   string // 错误消息（可直接展示给用户）
	cause error  // 被包装的底层错误
}

// Error 实现 Go 标准 error 接口
// 存在底层错误时返回 "消息: 底层错误"，否则仅返回消息
func (e *CodeError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.cause)
	}
	return e.Msg
}

// Unwrap 实现 errors.Unwrap 接口，支持 errors.Is/errors.As 向下追溯
func (e *CodeError) Unwrap() error {
	return e.cause
}

// Is 按错误码比较，使 errors.Is(err, ErrAuthInit) 对包装后的错误同样成立
func (e *CodeError) Is(target error) bool {
	var t *CodeError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// New 创建一个新的 CodeError
func New(code int, msg string) *CodeError {
	return &CodeError{
		Code: code,
		Msg:  msg,
	}
}

// Newf 创建一个带格式化消息的 CodeError
func Newf(code int, format string, args ...any) *CodeError {
	return &CodeError{
		Code: code,
		Msg:  fmt.Sprintf(format, args...),
	}
}

// Wrap 包装底层错误，添加业务错误码和消息
// 用法: errorx.Wrap(err, CodeNotFound, "聊天室不存在")
func Wrap(err error, code int, msg string) *CodeError {
	return &CodeError{
		Code:  code,
		Msg:   msg,
		cause: err,
	}
}

// Wrapf 包装底层错误，支持格式化消息
// 用法: errorx.Wrapf(err, CodeAuthInit, "加载群组 %s 权限失败", groupId)
func Wrapf(err error, code int, format string, args ...any) *CodeError {
	return &CodeError{
		Code:  code,
		Msg:   fmt.Sprintf(format, args...),
		cause: err,
	}
}

// GetCode 从错误中提取业务错误码，如果不是 CodeError 则返回默认码
func GetCode(err error) int {
	var codeErr *CodeError
	if errors.As(err, &codeErr) {
		return codeErr.Code
	}
	return CodeServerBusy
}

// Message 提取可展示给用户的消息，不带底层错误细节
func Message(err error) string {
	if err == nil {
		return ""
	}
	var codeErr *CodeError
	if errors.As(err, &codeErr) {
		return codeErr.Msg
	}
	return ErrServerBusy.Msg
}

// HasCode 判断错误链中是否存在指定错误码
func HasCode(err error, code int) bool {
	var codeErr *CodeError
	for err != nil {
		if errors.As(err, &codeErr) {
			if codeErr.Code == code {
				return true
			}
			err = codeErr.cause
			continue
		}
		return false
	}
	return false
}

// 业务状态码常量定义
const (
	CodeSuccess          = 1000 // 成功
	CodeInvalidParam     = 1001 // 请求参数错误
	CodeUserNotExist     = 1003 // 用户不存在
	CodeInvalidPassword  = 1004 // 密码错误
	CodeServerBusy       = 1005 // 服务繁忙
	CodeUnauthorized     = 1006 // 未授权/认证失败
	CodeForbidden        = 1007 // 无权限
	CodeNotFound         = 1008 // 资源不存在
	CodeConflict         = 1009 // 资源冲突（HTTP 409）
	CodeDBError          = 1010 // 数据库错误
	CodeCacheError       = 1011 // 缓存错误
	CodeMalformedPayload = 1012 // 响应缺少 result 或字段非法
	CodeNetwork          = 1013 // 网络错误

	CodeAuthInit          = 2001 // 成员身份/权限加载失败
	CodePermissionDenied  = 2002 // 缺少操作权限
	CodeSocketUnavailable = 2003 // 聊天连接不可用
	CodeRoomConflict      = 2004 // 单聊房间冲突且无法回查
	CodeAuthMissing       = 2005 // 本地没有可用的访问令牌
)

// 预定义常用错误实例
// 这些实例既可直接返回，也可用于 errors.Is 比较
var (
	ErrInvalidParam = New(CodeInvalidParam, "请求参数错误")
	ErrServerBusy   = New(CodeServerBusy, "服务繁忙")
	ErrUnauthorized = New(CodeUnauthorized, "请先登录")
	ErrForbidden    = New(CodeForbidden, "没有操作权限")
	ErrNotFound     = New(CodeNotFound, "资源不存在")
	ErrConflict     = New(CodeConflict, "资源已存在")

	ErrAuthInit               = New(CodeAuthInit, "加载群组权限失败")
	ErrPermissionDenied       = New(CodePermissionDenied, "没有执行该操作的权限")
	ErrSocketUnavailable      = New(CodeSocketUnavailable, "聊天连接不可用")
	ErrRoomResolutionConflict = New(CodeRoomConflict, "聊天室已存在但无法找到")
	ErrAuthMissing            = New(CodeAuthMissing, "登录信息缺失或已过期")
)

// IsNotFound 检查错误是否为"未找到"类型（包括 gorm.ErrRecordNotFound）
func IsNotFound(err error) bool {
	var codeErr *CodeError
	if errors.As(err, &codeErr) && codeErr.Code == CodeNotFound {
		return true
	}
	return err != nil && err.Error() == "record not found"
}

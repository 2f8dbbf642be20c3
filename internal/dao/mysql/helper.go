package mysql

import (
	"errors"

	"kama_group_client/pkg/errorx"

	"gorm.io/gorm"
)

// wrapDBError 包装数据库错误
// 根据错误类型返回不同的错误码：
//   - ErrRecordNotFound -> CodeNotFound
//   - ErrDuplicatedKey -> CodeConflict
//   - 其他错误 -> CodeDBError
func wrapDBError(err error, msg string) error {
	return wrapDBErrorf(err, "%s", msg)
}

// wrapDBErrorf 功能同 wrapDBError，支持格式化消息
func wrapDBErrorf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return errorx.Wrapf(err, errorx.CodeNotFound, format, args...)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return errorx.Wrapf(err, errorx.CodeConflict, format, args...)
	default:
		return errorx.Wrapf(err, errorx.CodeDBError, format, args...)
	}
}

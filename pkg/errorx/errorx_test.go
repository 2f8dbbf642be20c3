package errorx

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *CodeError
		expected string
	}{
		{
			name:     "without wrapped error",
			err:      New(CodeNotFound, "聊天室不存在"),
			expected: "聊天室不存在",
		},
		{
			name:     "with wrapped error",
			err:      Wrap(errors.New("dial tcp: refused"), CodeNetwork, "网络错误"),
			expected: "网络错误: dial tcp: refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestIs_MatchesByCodeThroughWrapping(t *testing.T) {
	inner := Wrapf(errors.New("status 500"), CodeServerBusy, "获取成员身份失败")
	err := Wrap(inner, CodeAuthInit, "加载群组权限失败")
	wrapped := fmt.Errorf("initialize: %w", err)

	assert.True(t, errors.Is(wrapped, ErrAuthInit))
	assert.False(t, errors.Is(wrapped, ErrPermissionDenied))
	assert.True(t, HasCode(wrapped, CodeServerBusy))
	assert.False(t, HasCode(wrapped, CodeConflict))
}

func TestGetCodeAndMessage(t *testing.T) {
	assert.Equal(t, CodeConflict, GetCode(Wrap(errors.New("409"), CodeConflict, "资源已存在")))
	assert.Equal(t, CodeServerBusy, GetCode(errors.New("plain")))

	assert.Equal(t, "资源已存在", Message(Wrap(errors.New("409"), CodeConflict, "资源已存在")))
	assert.Equal(t, ErrServerBusy.Msg, Message(errors.New("plain")))
	assert.Equal(t, "", Message(nil))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(Wrap(errors.New("x"), CodeNotFound, "不存在")))
	assert.True(t, IsNotFound(errors.New("record not found")))
	assert.False(t, IsNotFound(nil))
	assert.False(t, IsNotFound(ErrConflict))
}

package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParse(t *testing.T) {
	Init("test-secret", 15)

	token, err := GenerateAccessToken(3, "alice")
	require.NoError(t, err)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(3), claims.UserID)
	assert.Equal(t, "alice", claims.UserName)
	assert.Equal(t, "access_token", claims.Subject)
	assert.NotEmpty(t, claims.ID)
}

func TestParseToken_WrongSecret(t *testing.T) {
	Init("secret-a", 15)
	token, err := GenerateAccessToken(3, "alice")
	require.NoError(t, err)

	Init("secret-b", 15)
	_, err = ParseToken(token)
	assert.Error(t, err)

	// 客户端不校验签名，只读取声明
	claims, err := ParseUnverified(token)
	require.NoError(t, err)
	assert.Equal(t, int64(3), claims.UserID)
}

func TestExpired(t *testing.T) {
	Init("test-secret", 1)
	token, err := GenerateAccessToken(7, "bob")
	require.NoError(t, err)

	assert.False(t, Expired(token, time.Now()))
	assert.True(t, Expired(token, time.Now().Add(2*time.Minute)))
	assert.True(t, Expired("not-a-jwt", time.Now()))
}

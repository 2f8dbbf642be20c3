package credential

import (
	"context"
	"errors"
	"testing"

	"kama_group_client/pkg/errorx"
	"kama_group_client/pkg/util/jwt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStore struct{ MemoryStore }

func (f *failingStore) AccessToken(ctx context.Context) (string, error) {
	return "", errors.New("storage offline")
}

func TestToken(t *testing.T) {
	ctx := context.Background()
	jwt.Init("test-secret", 5)
	valid, err := jwt.GenerateAccessToken(3, "alice")
	require.NoError(t, err)

	store := NewMemoryStore(valid)
	got, err := Token(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, valid, got)

	require.NoError(t, store.Clear(ctx))
	_, err = Token(ctx, store)
	assert.True(t, errors.Is(err, errorx.ErrAuthMissing))

	jwt.Init("test-secret", -1)
	expired, err := jwt.GenerateAccessToken(3, "alice")
	require.NoError(t, err)
	require.NoError(t, store.SetAccessToken(ctx, expired))
	_, err = Token(ctx, store)
	assert.True(t, errors.Is(err, errorx.ErrAuthMissing))

	_, err = Token(ctx, &failingStore{})
	assert.True(t, errors.Is(err, errorx.ErrAuthMissing))

	_, err = Token(ctx, nil)
	assert.True(t, errors.Is(err, errorx.ErrAuthMissing))
}

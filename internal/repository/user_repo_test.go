package repository

import (
	"Ringside/internal/model"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepo_CreateAndLookup(t *testing.T) {
	repo := NewUserRepo(newTestDB(t))
	ctx := context.Background()

	user := &model.User{ID: "u1", Email: "alice@example.com", Password: "hash", Role: "USER"}
	require.NoError(t, repo.CreateUser(ctx, user, &model.UserDetail{Name: "Alice"}))

	found, err := repo.GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "u1", found.ID)
	assert.Equal(t, "Alice", found.UserDetail.Name)

	require.NoError(t, repo.UpdateAvatar(ctx, "u1", "avatar/u1/a.jpg"))
	detail, err := repo.GetUserDetail(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "avatar/u1/a.jpg", detail.AvatarURL)

	missing, err := repo.GetUserById(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUserRepo_DuplicateEmail(t *testing.T) {
	repo := NewUserRepo(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.CreateUser(ctx,
		&model.User{ID: "u1", Email: "alice@example.com", Password: "hash"},
		&model.UserDetail{Name: "Alice"}))

	err := repo.CreateUser(ctx,
		&model.User{ID: "u2", Email: "alice@example.com", Password: "hash"},
		&model.UserDetail{Name: "Alice Again"})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestUserRepo_VerifyAndUpdatePassword(t *testing.T) {
	repo := NewUserRepo(newTestDB(t))
	ctx := context.Background()
	require.NoError(t, repo.CreateUser(ctx,
		&model.User{ID: "u1", Email: "alice@example.com", Password: "hash"},
		&model.UserDetail{Name: "Alice"}))

	user, err := repo.GetUserById(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, user.IsVerified)

	require.NoError(t, repo.MarkVerified(ctx, "u1"))
	require.NoError(t, repo.UpdatePassword(ctx, "u1", "new-hash"))

	user, err = repo.GetUserById(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, user.IsVerified)
	assert.Equal(t, "new-hash", user.Password)
}

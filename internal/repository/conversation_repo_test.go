package repository

import (
	"Ringside/internal/api/config"
	"Ringside/internal/model"
	"Ringside/internal/pkg/database"
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.NewGormDB(&config.DBConfig{
		Driver: database.DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "ringside.db") + "?_pragma=busy_timeout(5000)",
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func TestEnsureConversation_SameRowForEitherOrder(t *testing.T) {
	repo := NewConversationRepo(newTestDB(t))
	ctx := context.Background()

	first, err := repo.EnsureConversation(ctx, "alice", "bob")
	require.NoError(t, err)
	second, err := repo.EnsureConversation(ctx, "bob", "alice")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "alice", second.User1ID)
	assert.Equal(t, "bob", second.User2ID)
}

func TestEnsureConversation_ColonInIDsDoesNotCollide(t *testing.T) {
	repo := NewConversationRepo(newTestDB(t))
	ctx := context.Background()

	first, err := repo.EnsureConversation(ctx, "x:y", "z")
	require.NoError(t, err)
	second, err := repo.EnsureConversation(ctx, "x", "y:z")
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, "x", second.User1ID)
	assert.Equal(t, "y:z", second.User2ID)

	msg, err := repo.AppendMessage(ctx, second.ID, "x", "y:z", "hi")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), msg.Seq)
}

func TestEnsureConversation_CancelledCallerDoesNotFailCreation(t *testing.T) {
	repo := NewConversationRepo(newTestDB(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	conv, err := repo.EnsureConversation(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.Equal(t, "alice", conv.User1ID)
}

func TestEnsureConversation_ConcurrentCallersShareOneRow(t *testing.T) {
	db := newTestDB(t)
	repo := NewConversationRepo(db)
	ctx := context.Background()

	const callers = 16
	ids := make([]string, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a, b := "alice", "bob"
			if i%2 == 1 {
				a, b = b, a
			}
			conv, err := repo.EnsureConversation(ctx, a, b)
			if assert.NoError(t, err) {
				ids[i] = conv.ID
			}
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
	var count int64
	require.NoError(t, db.Model(&model.Conversation{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestAppendMessage_AssignsIncreasingSeq(t *testing.T) {
	repo := NewConversationRepo(newTestDB(t))
	ctx := context.Background()
	conv, err := repo.EnsureConversation(ctx, "alice", "bob")
	require.NoError(t, err)

	for i := 1; i <= 3; i++ {
		msg, err := repo.AppendMessage(ctx, conv.ID, "alice", "bob", fmt.Sprintf("m%d", i))
		require.NoError(t, err)
		assert.EqualValues(t, i, msg.Seq)
		assert.False(t, msg.IsRead)
	}

	stored, err := repo.GetConversation(ctx, conv.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, stored.MaxMsgSeq)
	assert.Equal(t, "m3", stored.LastMsgContent)
	assert.Equal(t, "alice", stored.LastSenderID)
}

func TestAppendMessage_RejectsOutsiders(t *testing.T) {
	repo := NewConversationRepo(newTestDB(t))
	ctx := context.Background()
	conv, err := repo.EnsureConversation(ctx, "alice", "bob")
	require.NoError(t, err)

	_, err = repo.AppendMessage(ctx, conv.ID, "carol", "bob", "hi")
	assert.ErrorIs(t, err, ErrNotParticipant)

	_, err = repo.AppendMessage(ctx, conv.ID, "alice", "carol", "hi")
	assert.ErrorIs(t, err, ErrNotParticipant)

	_, err = repo.AppendMessage(ctx, "missing", "alice", "bob", "hi")
	assert.ErrorIs(t, err, ErrConversationNotFound)
}

func TestListMessages_PageOneIsNewestWindowInAscendingOrder(t *testing.T) {
	repo := NewConversationRepo(newTestDB(t))
	ctx := context.Background()
	conv, err := repo.EnsureConversation(ctx, "alice", "bob")
	require.NoError(t, err)
	for i := 1; i <= 5; i++ {
		_, err = repo.AppendMessage(ctx, conv.ID, "alice", "bob", fmt.Sprintf("m%d", i))
		require.NoError(t, err)
	}

	page, total, err := repo.ListMessages(ctx, conv.ID, 0, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	require.Len(t, page, 2)
	assert.Equal(t, "m4", page[0].Content)
	assert.Equal(t, "m5", page[1].Content)

	page, _, err = repo.ListMessages(ctx, conv.ID, 4, 2)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "m1", page[0].Content)

	page, total, err = repo.ListMessages(ctx, conv.ID, 10, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	assert.Empty(t, page)
}

func TestUnreadAndMarkViewed(t *testing.T) {
	repo := NewConversationRepo(newTestDB(t))
	ctx := context.Background()
	conv, err := repo.EnsureConversation(ctx, "alice", "bob")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err = repo.AppendMessage(ctx, conv.ID, "alice", "bob", "ping")
		require.NoError(t, err)
	}
	_, err = repo.AppendMessage(ctx, conv.ID, "bob", "alice", "pong")
	require.NoError(t, err)

	unread, err := repo.CountUnread(ctx, "bob", conv.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, unread)
	unread, err = repo.CountUnread(ctx, "alice", conv.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, unread)

	rows, err := repo.MarkViewed(ctx, "bob", conv.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, rows)

	unread, err = repo.CountUnread(ctx, "bob", conv.ID)
	require.NoError(t, err)
	assert.Zero(t, unread)
	unread, err = repo.CountUnread(ctx, "alice", conv.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, unread)

	rows, err = repo.MarkViewed(ctx, "bob", conv.ID)
	require.NoError(t, err)
	assert.Zero(t, rows)
}

func TestGetUserConversations(t *testing.T) {
	repo := NewConversationRepo(newTestDB(t))
	ctx := context.Background()

	withBob, err := repo.EnsureConversation(ctx, "alice", "bob")
	require.NoError(t, err)
	withCarol, err := repo.EnsureConversation(ctx, "carol", "alice")
	require.NoError(t, err)

	_, err = repo.AppendMessage(ctx, withBob.ID, "bob", "alice", "first")
	require.NoError(t, err)
	_, err = repo.AppendMessage(ctx, withCarol.ID, "carol", "alice", "second")
	require.NoError(t, err)
	_, err = repo.AppendMessage(ctx, withCarol.ID, "carol", "alice", "third")
	require.NoError(t, err)

	list, err := repo.GetUserConversations(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 2)
	unread := map[string]int64{}
	for _, c := range list {
		unread[c.ID] = c.UnreadCount
	}
	assert.EqualValues(t, 1, unread[withBob.ID])
	assert.EqualValues(t, 2, unread[withCarol.ID])

	total, err := repo.GetTotalUnreadCount(ctx, "alice")
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)

	list, err = repo.GetUserConversations(ctx, "dave")
	require.NoError(t, err)
	assert.Empty(t, list)
}

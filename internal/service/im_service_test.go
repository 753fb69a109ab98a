package service

import (
	"Ringside/internal/repository"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIMService(t *testing.T) IMService {
	t.Helper()
	repo := repository.NewConversationRepo(newTestDB(t))
	return NewIMService(repo, staticDirectory{"alice": "Alice", "bob": "Bob"}, 20)
}

func TestIMService_EnsureConversationValidatesParticipants(t *testing.T) {
	svc := newTestIMService(t)
	ctx := context.Background()

	_, err := svc.EnsureConversation(ctx, "alice", "alice")
	assert.ErrorIs(t, err, ErrInvalidParticipants)

	_, err = svc.EnsureConversation(ctx, "alice", " ")
	assert.ErrorIs(t, err, ErrParamInvalid)

	conv, err := svc.EnsureConversation(ctx, "alice", "bob")
	require.NoError(t, err)
	again, err := svc.EnsureConversation(ctx, "bob", "alice")
	require.NoError(t, err)
	assert.Equal(t, conv.ID, again.ID)
}

func TestIMService_AppendMessage(t *testing.T) {
	svc := newTestIMService(t)
	ctx := context.Background()
	conv, err := svc.EnsureConversation(ctx, "alice", "bob")
	require.NoError(t, err)

	_, err = svc.AppendMessage(ctx, conv.ID, "alice", "bob", "   ")
	assert.ErrorIs(t, err, ErrEmptyContent)

	_, err = svc.AppendMessage(ctx, conv.ID, "carol", "bob", "hi")
	assert.ErrorIs(t, err, ErrNotParticipant)

	msg, err := svc.AppendMessage(ctx, conv.ID, "alice", "bob", "hi")
	require.NoError(t, err)
	assert.Equal(t, conv.ID, msg.ChatroomID)
	assert.Equal(t, "hi", msg.Content)
	assert.EqualValues(t, 1, msg.Seq)
	assert.False(t, msg.IsRead)
}

func TestIMService_ListMessagesNormalizesPaging(t *testing.T) {
	svc := newTestIMService(t)
	ctx := context.Background()
	conv, err := svc.EnsureConversation(ctx, "alice", "bob")
	require.NoError(t, err)
	for i := 1; i <= 25; i++ {
		_, err = svc.AppendMessage(ctx, conv.ID, "alice", "bob", fmt.Sprintf("m%d", i))
		require.NoError(t, err)
	}

	page, err := svc.ListMessages(ctx, "bob", conv.ID, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 20, page.PageSize)
	assert.EqualValues(t, 25, page.Total)
	require.Len(t, page.Messages, 20)
	assert.Equal(t, "m6", page.Messages[0].Content)
	assert.Equal(t, "m25", page.Messages[19].Content)

	page, err = svc.ListMessages(ctx, "bob", conv.ID, 2, 20)
	require.NoError(t, err)
	require.Len(t, page.Messages, 5)
	assert.Equal(t, "m1", page.Messages[0].Content)

	page, err = svc.ListMessages(ctx, "bob", conv.ID, 1, 1000)
	require.NoError(t, err)
	assert.Equal(t, maxPageSize, page.PageSize)

	_, err = svc.ListMessages(ctx, "carol", conv.ID, 1, 20)
	assert.ErrorIs(t, err, ErrNotParticipant)

	_, err = svc.ListMessages(ctx, "bob", "missing", 1, 20)
	assert.ErrorIs(t, err, ErrConversationNotFound)
}

func TestIMService_MarkViewedAndUnread(t *testing.T) {
	svc := newTestIMService(t)
	ctx := context.Background()
	conv, err := svc.EnsureConversation(ctx, "alice", "bob")
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		_, err = svc.AppendMessage(ctx, conv.ID, "alice", "bob", "hi")
		require.NoError(t, err)
	}

	unread, err := svc.CountUnread(ctx, "bob", conv.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, unread)

	total, err := svc.GetTotalUnread(ctx, "bob")
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	assert.ErrorIs(t, svc.MarkViewed(ctx, "carol", conv.ID), ErrNotParticipant)
	require.NoError(t, svc.MarkViewed(ctx, "bob", conv.ID))

	unread, err = svc.CountUnread(ctx, "bob", conv.ID)
	require.NoError(t, err)
	assert.Zero(t, unread)
}

func TestIMService_LoadConversationAndList(t *testing.T) {
	svc := newTestIMService(t)
	ctx := context.Background()
	conv, err := svc.EnsureConversation(ctx, "alice", "bob")
	require.NoError(t, err)
	_, err = svc.AppendMessage(ctx, conv.ID, "bob", "alice", "hello")
	require.NoError(t, err)

	d, unread, err := svc.LoadConversation(ctx, conv, "alice")
	require.NoError(t, err)
	assert.Equal(t, conv.ID, d.ID)
	assert.Equal(t, "alice", d.User1ID)
	assert.EqualValues(t, 1, d.TotalMessages)
	require.Len(t, d.Messages, 1)
	assert.EqualValues(t, 1, unread)

	list, err := svc.GetConversationList(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "bob", list[0].PeerID)
	assert.Equal(t, "Bob", list[0].PeerName)
	assert.Equal(t, "hello", list[0].LastMsgContent)
	assert.EqualValues(t, 1, list[0].UnreadCount)
}

func TestStoreErrorKeepsSentinelsAndWrapsOthers(t *testing.T) {
	assert.Nil(t, storeError(nil))
	assert.Equal(t, ErrNotParticipant, storeError(fmt.Errorf("wrap: %w", repository.ErrNotParticipant)))

	cause := errors.New("database is locked")
	err := storeError(cause)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.ErrorIs(t, err, cause)
}

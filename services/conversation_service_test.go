package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"kindling_server/models"
	apperrors "kindling_server/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newConversationService() (*ConversationService, *MemoryConversationStore) {
	store := NewMemoryConversationStore()
	svc := NewConversationService(store, NopNotifier{})
	return svc, store
}

func TestCreateOrGetCreatesThenReturnsExisting(t *testing.T) {
	svc, _ := newConversationService()
	ctx := context.Background()

	conv, created, err := svc.CreateOrGet(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "alice#bob", conv.ConversationKey)
	assert.Equal(t, []string{"alice", "bob"}, conv.Participants)
	assert.Equal(t, models.RequestStatusPending, conv.RequestStatus)
	assert.Equal(t, "alice", conv.RequestInitiator)

	// Second call, from the other side, converges on the same row.
	again, created, err := svc.CreateOrGet(ctx, "bob", "alice")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, conv.ID, again.ID)
}

func TestCreateOrGetRejectsSelfPair(t *testing.T) {
	svc, _ := newConversationService()

	_, _, err := svc.CreateOrGet(context.Background(), "alice", "alice")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidArgument))
}

func TestCreateOrGetConcurrentCallersConverge(t *testing.T) {
	svc, store := newConversationService()
	ctx := context.Background()

	const callers = 100
	ids := make([]string, callers)
	createdCount := 0
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// Callers address the pair in both orders.
			caller, other := "alice", "bob"
			if i%2 == 1 {
				caller, other = "bob", "alice"
			}
			conv, created, err := svc.CreateOrGet(ctx, caller, other)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				t.Errorf("CreateOrGet failed: %v", err)
				return
			}
			ids[i] = conv.ID
			if created {
				createdCount++
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, createdCount, "exactly one caller should observe creation")
	for i := 1; i < callers; i++ {
		assert.Equal(t, ids[0], ids[i], "all callers must converge on the same conversation")
	}

	all, err := store.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestAcceptTransitionsPendingToAccepted(t *testing.T) {
	svc, store := newConversationService()
	ctx := context.Background()

	_, _, err := svc.CreateOrGet(ctx, "alice", "bob")
	require.NoError(t, err)

	require.NoError(t, svc.Accept(ctx, "bob", "alice"))

	conv, err := store.GetByKey(ctx, "alice#bob")
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusAccepted, conv.RequestStatus)
}

func TestAcceptRejectsBlockedConversation(t *testing.T) {
	svc, _ := newConversationService()
	ctx := context.Background()

	_, _, err := svc.CreateOrGet(ctx, "alice", "bob")
	require.NoError(t, err)
	require.NoError(t, svc.Block(ctx, "bob", "alice"))

	err = svc.Accept(ctx, "alice", "bob")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidArgument))
}

func TestBlockRecordsBlockerAndStatus(t *testing.T) {
	svc, store := newConversationService()
	ctx := context.Background()

	_, _, err := svc.CreateOrGet(ctx, "alice", "bob")
	require.NoError(t, err)
	require.NoError(t, svc.Block(ctx, "bob", "alice"))

	conv, err := store.GetByKey(ctx, "alice#bob")
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusBlocked, conv.RequestStatus)
	assert.Contains(t, conv.BlockedBy, "bob")
}

func TestDeleteSoftThenHard(t *testing.T) {
	svc, store := newConversationService()
	ctx := context.Background()

	_, _, err := svc.CreateOrGet(ctx, "alice", "bob")
	require.NoError(t, err)

	// First deletion is soft: the row survives, hidden from alice.
	require.NoError(t, svc.Delete(ctx, "alice", "bob"))
	conv, err := store.GetByKey(ctx, "alice#bob")
	require.NoError(t, err)
	assert.True(t, conv.DeletedFor("alice"))
	assert.False(t, conv.DeletedFor("bob"))
	assert.Empty(t, conv.Messages)

	visible, err := svc.List(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, visible)

	// Second deletion erases the row for good.
	require.NoError(t, svc.Delete(ctx, "bob", "alice"))
	_, err = store.GetByKey(ctx, "alice#bob")
	assert.ErrorIs(t, err, ErrConversationNotFound)
}

func TestDeleteUnknownConversation(t *testing.T) {
	svc, _ := newConversationService()

	err := svc.Delete(context.Background(), "alice", "bob")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func TestListAnnotatesUnreadAndSortsByRecency(t *testing.T) {
	store := NewMemoryConversationStore()
	convSvc := NewConversationService(store, NopNotifier{})
	msgSvc := NewMessageService(store, nil, NopNotifier{})

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	clock := func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	convSvc.Clock = clock
	msgSvc.Clock = clock

	ctx := context.Background()
	_, _, err := convSvc.CreateOrGet(ctx, "alice", "bob")
	require.NoError(t, err)
	_, _, err = convSvc.CreateOrGet(ctx, "alice", "carol")
	require.NoError(t, err)

	_, err = msgSvc.Append(ctx, "bob", "alice", "hi", nil)
	require.NoError(t, err)
	_, err = msgSvc.Append(ctx, "bob", "alice", "you there?", nil)
	require.NoError(t, err)

	views, err := convSvc.List(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, views, 2)

	// The bob conversation was touched last, so it sorts first, carrying
	// alice's two unread messages.
	assert.Equal(t, "alice#bob", views[0].ConversationKey)
	assert.Equal(t, 2, views[0].UnreadCount)
	assert.Equal(t, 0, views[1].UnreadCount)
}

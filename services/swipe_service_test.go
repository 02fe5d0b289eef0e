package services

import (
	"context"
	"sync"
	"testing"

	"kindling_server/models"
	apperrors "kindling_server/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSwipeFixture() (*SwipeService, *MemoryMatchStore, *MemoryProfileStore) {
	swipes := NewMemorySwipeStore()
	matches := NewMemoryMatchStore()
	profiles := NewMemoryProfileStore()
	svc := NewSwipeService(swipes, matches, profiles, InterestOverlapPolicy{MinOverlap: 0.2}, NopNotifier{})
	return svc, matches, profiles
}

func seedCompatiblePair(profiles *MemoryProfileStore) {
	profiles.Put(models.UserProfile{UserID: "alice", Interests: []string{"hiking", "jazz", "cooking"}})
	profiles.Put(models.UserProfile{UserID: "bob", Interests: []string{"hiking", "jazz", "films"}})
}

func TestRecordSwipeRejectsDuplicate(t *testing.T) {
	svc, _, _ := newSwipeFixture()
	ctx := context.Background()

	_, err := svc.RecordSwipe(ctx, "alice", "bob", models.SwipeActionLike)
	require.NoError(t, err)

	// Same ordered pair again, even with a different action.
	_, err = svc.RecordSwipe(ctx, "alice", "bob", models.SwipeActionPass)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeAlreadyExists))
}

func TestRecordSwipeRejectsUnknownAction(t *testing.T) {
	svc, _, _ := newSwipeFixture()

	_, err := svc.RecordSwipe(context.Background(), "alice", "bob", "wink")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidArgument))
}

func TestRecordSwipeRejectsSelfSwipe(t *testing.T) {
	svc, _, _ := newSwipeFixture()

	_, err := svc.RecordSwipe(context.Background(), "alice", "alice", models.SwipeActionLike)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidArgument))
}

func TestReciprocalLikesMaterializeOneMatch(t *testing.T) {
	svc, matches, profiles := newSwipeFixture()
	seedCompatiblePair(profiles)
	ctx := context.Background()

	first, err := svc.RecordSwipe(ctx, "alice", "bob", models.SwipeActionLike)
	require.NoError(t, err)
	assert.False(t, first.Matched, "no reciprocal swipe yet")

	second, err := svc.RecordSwipe(ctx, "bob", "alice", models.SwipeActionLike)
	require.NoError(t, err)
	assert.True(t, second.Matched)
	require.NotNil(t, second.Match)
	assert.Equal(t, "alice#bob", second.Match.PairKey)
	require.NotNil(t, second.Compatibility)
	assert.InDelta(t, 0.5, second.Compatibility.InterestOverlap, 1e-9)
	assert.Equal(t, []string{"hiking", "jazz"}, second.Compatibility.SharedInterests)

	stored, err := matches.GetByPairKey(ctx, "alice#bob")
	require.NoError(t, err)
	assert.Equal(t, second.Match.ID, stored.ID)
}

func TestPassNeverMatches(t *testing.T) {
	svc, matches, profiles := newSwipeFixture()
	seedCompatiblePair(profiles)
	ctx := context.Background()

	_, err := svc.RecordSwipe(ctx, "alice", "bob", models.SwipeActionLike)
	require.NoError(t, err)
	result, err := svc.RecordSwipe(ctx, "bob", "alice", models.SwipeActionPass)
	require.NoError(t, err)

	assert.False(t, result.Matched)
	_, err = matches.GetByPairKey(ctx, "alice#bob")
	assert.ErrorIs(t, err, ErrMatchNotFound)
}

func TestReciprocalLikesBelowThresholdPersistWithoutMatch(t *testing.T) {
	svc, matches, profiles := newSwipeFixture()
	profiles.Put(models.UserProfile{UserID: "alice", Interests: []string{"hiking"}})
	profiles.Put(models.UserProfile{UserID: "bob", Interests: []string{"chess"}})
	ctx := context.Background()

	_, err := svc.RecordSwipe(ctx, "alice", "bob", models.SwipeActionLike)
	require.NoError(t, err)
	result, err := svc.RecordSwipe(ctx, "bob", "alice", models.SwipeActionLike)
	require.NoError(t, err)

	assert.False(t, result.Matched)
	require.NotNil(t, result.Compatibility)
	assert.Zero(t, result.Compatibility.InterestOverlap)

	_, err = matches.GetByPairKey(ctx, "alice#bob")
	assert.ErrorIs(t, err, ErrMatchNotFound)

	// Both swipes stand: a repeat from either side is still a duplicate.
	_, err = svc.RecordSwipe(ctx, "alice", "bob", models.SwipeActionLike)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeAlreadyExists))
}

func TestConcurrentReciprocalLikesCreateExactlyOneMatch(t *testing.T) {
	svc, matches, profiles := newSwipeFixture()
	seedCompatiblePair(profiles)
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	var results []*SwipeResult
	for _, pair := range [][2]string{{"alice", "bob"}, {"bob", "alice"}} {
		wg.Add(1)
		go func(actor, target string) {
			defer wg.Done()
			result, err := svc.RecordSwipe(ctx, actor, target, models.SwipeActionLike)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				t.Errorf("RecordSwipe(%s, %s) failed: %v", actor, target, err)
				return
			}
			results = append(results, result)
		}(pair[0], pair[1])
	}
	wg.Wait()

	// Whatever the interleaving, at least one side observes the reciprocity
	// and exactly one match row exists.
	stored, err := matches.ListForUser(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, stored, 1)

	matchedCount := 0
	for _, result := range results {
		if result.Matched {
			matchedCount++
			require.NotNil(t, result.Match)
			assert.Equal(t, stored[0].ID, result.Match.ID)
		}
	}
	assert.GreaterOrEqual(t, matchedCount, 1)
}

func TestSwipedTargets(t *testing.T) {
	svc, _, _ := newSwipeFixture()
	ctx := context.Background()

	_, err := svc.RecordSwipe(ctx, "alice", "bob", models.SwipeActionLike)
	require.NoError(t, err)
	_, err = svc.RecordSwipe(ctx, "alice", "carol", models.SwipeActionPass)
	require.NoError(t, err)

	targets, err := svc.SwipedTargets(ctx, "alice")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"bob", "carol"}, targets)
}

package services

import (
	"context"
	"errors"
	"log"
	"time"

	"kindling_server/models"
	apperrors "kindling_server/pkg/errors"

	"github.com/google/uuid"
)

// SwipeService records directional interest and materializes matches. The
// exactly-once guarantee for matches rests on the match store's
// insert-if-absent, not on any in-process coordination: two racing
// reciprocal likes both observe the reciprocity, both attempt the insert,
// and the loser adopts the winner's row.
type SwipeService struct {
	Swipes   SwipeStore
	Matches  MatchStore
	Profiles ProfileStore
	Policy   MatchPolicy
	Notifier Notifier
	Clock    func() time.Time
}

func NewSwipeService(swipes SwipeStore, matches MatchStore, profiles ProfileStore, policy MatchPolicy, notifier Notifier) *SwipeService {
	return &SwipeService{
		Swipes:   swipes,
		Matches:  matches,
		Profiles: profiles,
		Policy:   policy,
		Notifier: notifier,
		Clock:    time.Now,
	}
}

func (s *SwipeService) now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now()
}

// SwipeResult is returned to the caller and is the only thing that drives
// the match notification; no notification is ever derived from a separate
// read-then-write pass.
type SwipeResult struct {
	Swipe         models.Swipe                 `json:"swipe"`
	Matched       bool                         `json:"matched"`
	Match         *models.Match                `json:"match,omitempty"`
	Compatibility *models.CompatibilityMetrics `json:"compatibility,omitempty"`
}

// RecordSwipe persists the swipe (one shot per ordered pair), checks for a
// reciprocal interest swipe and, when the policy clears, materializes the
// pair's match exactly once.
func (s *SwipeService) RecordSwipe(ctx context.Context, actorID, targetID string, action models.SwipeAction) (*SwipeResult, error) {
	if !action.Valid() {
		return nil, apperrors.InvalidArg("unknown swipe action")
	}
	pair, pairKey, err := ResolvePair(actorID, targetID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	swipe := models.Swipe{
		ActorID:   actorID,
		TargetID:  targetID,
		Action:    action,
		CreatedAt: now.UTC().Format(time.RFC3339Nano),
	}

	if err := s.Swipes.Insert(ctx, swipe); err != nil {
		if errors.Is(err, ErrSwipeExists) {
			return nil, apperrors.AlreadyExists("swipe already recorded for this target")
		}
		return nil, apperrors.Unavailable("failed to record swipe", err)
	}

	result := &SwipeResult{Swipe: swipe}
	if !action.IsInterest() {
		return result, nil
	}

	reciprocal, err := s.Swipes.Get(ctx, targetID, actorID)
	if errors.Is(err, ErrSwipeNotFound) {
		return result, nil
	}
	if err != nil {
		return nil, apperrors.Unavailable("failed to check reciprocal swipe", err)
	}
	if !reciprocal.Action.IsInterest() {
		return result, nil
	}

	metrics, qualified := s.evaluate(ctx, actorID, targetID, now)
	result.Compatibility = &metrics
	if !qualified {
		// Reciprocal likes without enough compatibility: both swipes stand,
		// nothing is materialized.
		return result, nil
	}

	match := models.Match{
		PairKey:          pairKey,
		ID:               uuid.NewString(),
		User1ID:          pair[0],
		User2ID:          pair[1],
		Compatibility:    metrics,
		CreatedAt:        swipe.CreatedAt,
		LastInteractedAt: swipe.CreatedAt,
	}

	err = s.Matches.Insert(ctx, match)
	switch {
	case err == nil:
		log.Printf("match %s created for pair %s", match.ID, pairKey)
		result.Matched = true
		result.Match = &match
		s.Notifier.Notify(pair[:], models.EventMatchCreated, models.MatchCreatedEvent{
			MatchID:       match.ID,
			User1ID:       match.User1ID,
			User2ID:       match.User2ID,
			Compatibility: metrics,
			CreatedAt:     match.CreatedAt,
		})
	case errors.Is(err, ErrMatchExists):
		// A racing reciprocal swipe materialized the match first; adopt it.
		existing, getErr := s.Matches.GetByPairKey(ctx, pairKey)
		if getErr != nil {
			return nil, apperrors.Unavailable("failed to read match after creation conflict", getErr)
		}
		result.Matched = true
		result.Match = existing
	default:
		return nil, apperrors.Unavailable("failed to create match", err)
	}

	return result, nil
}

// evaluate scores the pair. Missing profiles score zero and cannot clear the
// threshold, which keeps match creation strictly policy-driven.
func (s *SwipeService) evaluate(ctx context.Context, actorID, targetID string, now time.Time) (models.CompatibilityMetrics, bool) {
	actor, err := s.Profiles.Get(ctx, actorID)
	if err != nil {
		actor = nil
	}
	target, err := s.Profiles.Get(ctx, targetID)
	if err != nil {
		target = nil
	}
	return s.Policy.Evaluate(actor, target, now)
}

// SwipedTargets lists the ids the actor has already acted on, for discovery
// exclusion.
func (s *SwipeService) SwipedTargets(ctx context.Context, actorID string) ([]string, error) {
	if actorID == "" {
		return nil, apperrors.InvalidArg("actor id is required")
	}

	swipes, err := s.Swipes.ListByActor(ctx, actorID)
	if err != nil {
		return nil, apperrors.Unavailable("failed to list swipes", err)
	}

	targets := make([]string, 0, len(swipes))
	for _, swipe := range swipes {
		targets = append(targets, swipe.TargetID)
	}
	return targets, nil
}

// MatchesFor lists the user's matches, most recently interacted first.
func (s *SwipeService) MatchesFor(ctx context.Context, userID string) ([]models.Match, error) {
	if userID == "" {
		return nil, apperrors.InvalidArg("user id is required")
	}

	matches, err := s.Matches.ListForUser(ctx, userID)
	if err != nil {
		return nil, apperrors.Unavailable("failed to list matches", err)
	}
	return matches, nil
}

package services

import (
	"context"
	"errors"
	"log"
	"sort"
	"time"

	"kindling_server/models"
	apperrors "kindling_server/pkg/errors"

	"github.com/google/uuid"
)

// ConversationService owns conversation lifecycle: exactly-once creation,
// request transitions, per-user deletion and listing. All operations are
// addressed by the caller plus the other participant; the canonical pair key
// is resolved internally so callers can never address a pair in two ways.
type ConversationService struct {
	Store    ConversationStore
	Notifier Notifier
	Clock    func() time.Time
}

func NewConversationService(store ConversationStore, notifier Notifier) *ConversationService {
	return &ConversationService{Store: store, Notifier: notifier, Clock: time.Now}
}

func (s *ConversationService) now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now()
}

// ConversationView is a conversation annotated with the requesting
// participant's own unread counter, for listing.
type ConversationView struct {
	models.Conversation
	UnreadCount int `json:"unreadCount"`
}

// CreateOrGet returns the one conversation for the unordered pair
// (callerID, otherID), creating it if absent. Any number of concurrent
// callers converge on the same row: the fast path is a point read, creation
// is an insert-if-absent on the unique pair key, and losing that race is
// resolved by re-reading the winner's row, never surfaced as an error.
func (s *ConversationService) CreateOrGet(ctx context.Context, callerID, otherID string) (*models.Conversation, bool, error) {
	pair, key, err := ResolvePair(callerID, otherID)
	if err != nil {
		return nil, false, err
	}

	conv, err := s.Store.GetByKey(ctx, key)
	if err == nil {
		return conv, false, nil
	}
	if !errors.Is(err, ErrConversationNotFound) {
		return nil, false, apperrors.Unavailable("failed to look up conversation", err)
	}

	now := s.now().UTC().Format(time.RFC3339Nano)
	fresh := &models.Conversation{
		ConversationKey:  key,
		ID:               uuid.NewString(),
		Participants:     pair[:],
		Messages:         []models.Message{},
		RequestStatus:    models.RequestStatusPending,
		RequestInitiator: callerID,
		UnreadCounts:     map[string]int{pair[0]: 0, pair[1]: 0},
		LastOpenedAt:     map[string]string{pair[0]: now, pair[1]: now},
		CreatedAt:        now,
		LastUpdatedAt:    now,
	}

	err = s.Store.Insert(ctx, fresh)
	if err == nil {
		log.Printf("conversation %s created for pair %s", fresh.ID, key)
		s.Notifier.Notify(pair[:], models.EventConversationCreated, models.ConversationCreatedEvent{
			ConversationID: fresh.ID,
			Participants:   pair[:],
			InitiatedBy:    callerID,
			CreatedAt:      now,
		})
		return fresh, true, nil
	}
	if !errors.Is(err, ErrConversationExists) {
		return nil, false, apperrors.Unavailable("failed to create conversation", err)
	}

	// Lost the creation race: another caller's insert won. Their row is the
	// conversation; return it exactly as the fast path would have.
	winner, err := s.Store.GetByKey(ctx, key)
	if err != nil {
		return nil, false, apperrors.Unavailable("failed to read conversation after creation conflict", err)
	}
	return winner, false, nil
}

// get loads the pair's conversation and verifies the caller is a participant.
func (s *ConversationService) get(ctx context.Context, callerID, otherID string) (*models.Conversation, string, error) {
	_, key, err := ResolvePair(callerID, otherID)
	if err != nil {
		return nil, "", err
	}

	conv, err := s.Store.GetByKey(ctx, key)
	if errors.Is(err, ErrConversationNotFound) {
		return nil, "", apperrors.NotFound("conversation not found")
	}
	if err != nil {
		return nil, "", apperrors.Unavailable("failed to load conversation", err)
	}
	if !conv.HasParticipant(callerID) {
		return nil, "", apperrors.Forbidden("caller is not a participant")
	}
	return conv, key, nil
}

// Accept transitions a pending chat request to accepted.
func (s *ConversationService) Accept(ctx context.Context, callerID, otherID string) error {
	conv, key, err := s.get(ctx, callerID, otherID)
	if err != nil {
		return err
	}
	if conv.RequestStatus == models.RequestStatusBlocked {
		return apperrors.InvalidArg("conversation is blocked")
	}

	now := s.now().UTC().Format(time.RFC3339Nano)
	if err := s.Store.SetRequestStatus(ctx, key, models.RequestStatusAccepted, now); err != nil {
		return apperrors.Unavailable("failed to accept conversation", err)
	}
	return nil
}

// Block records the caller in blockedBy and forces the status to blocked,
// whatever state the conversation was in.
func (s *ConversationService) Block(ctx context.Context, callerID, otherID string) error {
	_, key, err := s.get(ctx, callerID, otherID)
	if err != nil {
		return err
	}

	now := s.now().UTC().Format(time.RFC3339Nano)
	if err := s.Store.Block(ctx, key, callerID, now); err != nil {
		return apperrors.Unavailable("failed to block conversation", err)
	}
	return nil
}

// Delete soft-deletes for the caller: the ledger is cleared and the caller
// recorded in deletedBy. Once every participant has deleted, the row is
// erased for good.
func (s *ConversationService) Delete(ctx context.Context, callerID, otherID string) error {
	conv, key, err := s.get(ctx, callerID, otherID)
	if err != nil {
		return err
	}

	now := s.now().UTC().Format(time.RFC3339Nano)
	updated, err := s.Store.SoftDelete(ctx, key, callerID, conv.Participants, now)
	if err != nil {
		return apperrors.Unavailable("failed to delete conversation", err)
	}

	if updated.DeletedByAll() {
		log.Printf("conversation %s abandoned by all participants, erasing", updated.ID)
		if err := s.Store.Delete(ctx, key); err != nil {
			return apperrors.Unavailable("failed to erase conversation", err)
		}
	}
	return nil
}

// List returns the caller's visible conversations, most recently updated
// first, each annotated with the caller's unread counter.
func (s *ConversationService) List(ctx context.Context, callerID string) ([]ConversationView, error) {
	if callerID == "" {
		return nil, apperrors.InvalidArg("caller id is required")
	}

	convs, err := s.Store.ListForParticipant(ctx, callerID)
	if err != nil {
		return nil, apperrors.Unavailable("failed to list conversations", err)
	}

	views := make([]ConversationView, 0, len(convs))
	for _, conv := range convs {
		views = append(views, ConversationView{
			Conversation: conv,
			UnreadCount:  conv.UnreadFor(callerID),
		})
	}
	sort.SliceStable(views, func(i, j int) bool {
		ti, _ := time.Parse(time.RFC3339Nano, views[i].LastUpdatedAt)
		tj, _ := time.Parse(time.RFC3339Nano, views[j].LastUpdatedAt)
		return ti.After(tj)
	})
	return views, nil
}

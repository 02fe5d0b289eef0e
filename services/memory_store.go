package services

import (
	"context"
	"sync"

	"kindling_server/models"
)

// In-memory implementations of the store interfaces. They honor the same
// contract as the DynamoDB stores (insert-if-absent conflicts, atomic
// append bookkeeping) behind a mutex, which makes them usable both as a
// local-development backend and as the fixture for concurrency tests.

type MemoryConversationStore struct {
	mu    sync.Mutex
	items map[string]*models.Conversation
}

func NewMemoryConversationStore() *MemoryConversationStore {
	return &MemoryConversationStore{items: map[string]*models.Conversation{}}
}

func copyConversation(c *models.Conversation) *models.Conversation {
	dup := *c
	dup.Participants = append([]string(nil), c.Participants...)
	dup.Messages = append([]models.Message(nil), c.Messages...)
	dup.BlockedBy = append([]string(nil), c.BlockedBy...)
	dup.DeletedBy = append([]string(nil), c.DeletedBy...)
	dup.UnreadCounts = map[string]int{}
	for k, v := range c.UnreadCounts {
		dup.UnreadCounts[k] = v
	}
	dup.LastOpenedAt = map[string]string{}
	for k, v := range c.LastOpenedAt {
		dup.LastOpenedAt[k] = v
	}
	return &dup
}

func (s *MemoryConversationStore) GetByKey(_ context.Context, key string) (*models.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.items[key]
	if !ok {
		return nil, ErrConversationNotFound
	}
	return copyConversation(conv), nil
}

func (s *MemoryConversationStore) Insert(_ context.Context, conv *models.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[conv.ConversationKey]; ok {
		return ErrConversationExists
	}
	s.items[conv.ConversationKey] = copyConversation(conv)
	return nil
}

func (s *MemoryConversationStore) AppendMessage(_ context.Context, key string, msg models.Message, recipient string, now string) (*models.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.items[key]
	if !ok {
		return nil, ErrConversationNotFound
	}

	conv.Messages = append(conv.Messages, msg)
	conv.LastUpdatedAt = now
	conv.LastOpenedAt[msg.SenderID] = now
	conv.UnreadCounts[msg.SenderID] = 0
	conv.UnreadCounts[recipient]++
	conv.Revision++
	return copyConversation(conv), nil
}

func (s *MemoryConversationStore) ReplaceMessages(_ context.Context, key string, messages []models.Message, unreadCounts map[string]int, expectedRevision int64, now string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.items[key]
	if !ok {
		return ErrConversationNotFound
	}
	if conv.Revision != expectedRevision {
		return ErrStaleConversation
	}
	conv.Messages = append([]models.Message(nil), messages...)
	conv.UnreadCounts = map[string]int{}
	for p, n := range unreadCounts {
		conv.UnreadCounts[p] = n
	}
	conv.LastUpdatedAt = now
	conv.Revision++
	return nil
}

func (s *MemoryConversationStore) MarkAllRead(_ context.Context, key, participant string, messages []models.Message, expectedRevision int64, now string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.items[key]
	if !ok {
		return ErrConversationNotFound
	}
	if conv.Revision != expectedRevision {
		return ErrStaleConversation
	}
	conv.Messages = append([]models.Message(nil), messages...)
	conv.UnreadCounts[participant] = 0
	conv.LastOpenedAt[participant] = now
	conv.LastUpdatedAt = now
	conv.Revision++
	return nil
}

func (s *MemoryConversationStore) SetRequestStatus(_ context.Context, key string, status models.RequestStatus, now string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.items[key]
	if !ok {
		return ErrConversationNotFound
	}
	conv.RequestStatus = status
	conv.LastUpdatedAt = now
	return nil
}

func (s *MemoryConversationStore) Block(_ context.Context, key, participant string, now string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.items[key]
	if !ok {
		return ErrConversationNotFound
	}
	conv.RequestStatus = models.RequestStatusBlocked
	if !contains(conv.BlockedBy, participant) {
		conv.BlockedBy = append(conv.BlockedBy, participant)
	}
	conv.LastUpdatedAt = now
	return nil
}

func (s *MemoryConversationStore) SoftDelete(_ context.Context, key, participant string, participants []string, now string) (*models.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.items[key]
	if !ok {
		return nil, ErrConversationNotFound
	}
	conv.Messages = nil
	for _, p := range participants {
		conv.UnreadCounts[p] = 0
	}
	if !contains(conv.DeletedBy, participant) {
		conv.DeletedBy = append(conv.DeletedBy, participant)
	}
	conv.LastUpdatedAt = now
	conv.Revision++
	return copyConversation(conv), nil
}

func (s *MemoryConversationStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, key)
	return nil
}

func (s *MemoryConversationStore) ListForParticipant(_ context.Context, userID string) ([]models.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Conversation
	for _, conv := range s.items {
		if conv.HasParticipant(userID) && !conv.DeletedFor(userID) {
			out = append(out, *copyConversation(conv))
		}
	}
	return out, nil
}

func (s *MemoryConversationStore) ListAll(_ context.Context) ([]models.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Conversation
	for _, conv := range s.items {
		out = append(out, *copyConversation(conv))
	}
	return out, nil
}

func (s *MemoryConversationStore) Save(_ context.Context, conv *models.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[conv.ConversationKey] = copyConversation(conv)
	return nil
}

type MemorySwipeStore struct {
	mu    sync.Mutex
	items map[string]models.Swipe
}

func NewMemorySwipeStore() *MemorySwipeStore {
	return &MemorySwipeStore{items: map[string]models.Swipe{}}
}

func swipeKey(actorID, targetID string) string {
	return actorID + "\x00" + targetID
}

func (s *MemorySwipeStore) Insert(_ context.Context, swipe models.Swipe) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := swipeKey(swipe.ActorID, swipe.TargetID)
	if _, ok := s.items[k]; ok {
		return ErrSwipeExists
	}
	s.items[k] = swipe
	return nil
}

func (s *MemorySwipeStore) Get(_ context.Context, actorID, targetID string) (*models.Swipe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	swipe, ok := s.items[swipeKey(actorID, targetID)]
	if !ok {
		return nil, ErrSwipeNotFound
	}
	return &swipe, nil
}

func (s *MemorySwipeStore) ListByActor(_ context.Context, actorID string) ([]models.Swipe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Swipe
	for _, swipe := range s.items {
		if swipe.ActorID == actorID {
			out = append(out, swipe)
		}
	}
	return out, nil
}

type MemoryMatchStore struct {
	mu    sync.Mutex
	items map[string]models.Match
}

func NewMemoryMatchStore() *MemoryMatchStore {
	return &MemoryMatchStore{items: map[string]models.Match{}}
}

func (s *MemoryMatchStore) Insert(_ context.Context, match models.Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[match.PairKey]; ok {
		return ErrMatchExists
	}
	s.items[match.PairKey] = match
	return nil
}

func (s *MemoryMatchStore) GetByPairKey(_ context.Context, pairKey string) (*models.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	match, ok := s.items[pairKey]
	if !ok {
		return nil, ErrMatchNotFound
	}
	return &match, nil
}

func (s *MemoryMatchStore) ListForUser(_ context.Context, userID string) ([]models.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Match
	for _, match := range s.items {
		if match.Involves(userID) {
			out = append(out, match)
		}
	}
	return out, nil
}

func (s *MemoryMatchStore) Touch(_ context.Context, pairKey, now string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	match, ok := s.items[pairKey]
	if !ok {
		return ErrMatchNotFound
	}
	match.LastInteractedAt = now
	s.items[pairKey] = match
	return nil
}

type MemoryProfileStore struct {
	mu    sync.Mutex
	items map[string]models.UserProfile
}

func NewMemoryProfileStore() *MemoryProfileStore {
	return &MemoryProfileStore{items: map[string]models.UserProfile{}}
}

func (s *MemoryProfileStore) Put(profile models.UserProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[profile.UserID] = profile
}

func (s *MemoryProfileStore) Get(_ context.Context, userID string) (*models.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	profile, ok := s.items[userID]
	if !ok {
		return nil, ErrProfileNotFound
	}
	return &profile, nil
}

func contains(values []string, v string) bool {
	for _, item := range values {
		if item == v {
			return true
		}
	}
	return false
}

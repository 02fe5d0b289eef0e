package services

import (
	"context"
	"errors"
	"fmt"

	"kindling_server/models"
	"kindling_server/utils"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrConversationExists   = errors.New("conversation already exists for key")

	// ErrStaleConversation means a whole-ledger rewrite lost to a concurrent
	// write; the caller reloads and reapplies.
	ErrStaleConversation = errors.New("conversation modified concurrently")
)

// ConversationStore is the storage collaborator for conversations. The
// contract mirrors what the exactly-once design needs from any backend:
// point lookup by canonical key, insert-if-absent with a distinct conflict
// result, and single-operation message appends that adjust the read-state
// bookkeeping atomically.
type ConversationStore interface {
	GetByKey(ctx context.Context, key string) (*models.Conversation, error)
	// Insert creates the conversation only if its key is free, returning
	// ErrConversationExists when a concurrent caller won the race.
	Insert(ctx context.Context, conv *models.Conversation) error
	// AppendMessage pushes msg onto the ledger and, in the same atomic
	// update, bumps lastUpdatedAt, resets the sender's read state and
	// increments the recipient's unread counter.
	AppendMessage(ctx context.Context, key string, msg models.Message, recipient string, now string) (*models.Conversation, error)
	// ReplaceMessages swaps the ledger wholesale (edit, delete, flag,
	// single-message read) together with the unread counters recomputed
	// from it, so the counters can never drift from the ledger. The write
	// only applies when the row is still at expectedRevision; otherwise
	// ErrStaleConversation is returned and the caller retries from a fresh
	// read, so a rewrite can never erase a concurrently appended message.
	ReplaceMessages(ctx context.Context, key string, messages []models.Message, unreadCounts map[string]int, expectedRevision int64, now string) error
	MarkAllRead(ctx context.Context, key, participant string, messages []models.Message, expectedRevision int64, now string) error
	SetRequestStatus(ctx context.Context, key string, status models.RequestStatus, now string) error
	Block(ctx context.Context, key, participant string, now string) error
	// SoftDelete clears the ledger, zeroes every participant's unread
	// counter and records the deleting participant. Returns the updated
	// conversation so the caller can decide on hard deletion.
	SoftDelete(ctx context.Context, key, participant string, participants []string, now string) (*models.Conversation, error)
	Delete(ctx context.Context, key string) error
	ListForParticipant(ctx context.Context, userID string) ([]models.Conversation, error)
	ListAll(ctx context.Context) ([]models.Conversation, error)
	// Save overwrites the conversation unconditionally. Repair-tool use only.
	Save(ctx context.Context, conv *models.Conversation) error
}

// DynamoConversationStore keeps each conversation as a single item keyed by
// the canonical pair key, message ledger embedded.
type DynamoConversationStore struct {
	Dynamo *DynamoService
}

func NewDynamoConversationStore(dynamo *DynamoService) *DynamoConversationStore {
	return &DynamoConversationStore{Dynamo: dynamo}
}

func (s *DynamoConversationStore) GetByKey(ctx context.Context, key string) (*models.Conversation, error) {
	item, err := s.Dynamo.GetItem(ctx, models.ConversationsTable, utils.Key("conversationKey", key))
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}

	var conv models.Conversation
	if err := attributevalue.UnmarshalMap(item, &conv); err != nil {
		return nil, fmt.Errorf("failed to unmarshal conversation: %w", err)
	}
	return &conv, nil
}

func (s *DynamoConversationStore) Insert(ctx context.Context, conv *models.Conversation) error {
	err := s.Dynamo.PutItemIfAbsent(ctx, models.ConversationsTable, conv, "conversationKey")
	if errors.Is(err, ErrConditionalCheckFailed) {
		return ErrConversationExists
	}
	return err
}

func (s *DynamoConversationStore) AppendMessage(ctx context.Context, key string, msg models.Message, recipient string, now string) (*models.Conversation, error) {
	msgAttr, err := attributevalue.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}

	// One UpdateItem so two near-simultaneous sends can never lose each
	// other's message or counter adjustment. The recipient counter is
	// incremented with SET arithmetic because ADD only works on top-level
	// attributes, not nested document paths.
	updateExpression := "SET #msgs = list_append(if_not_exists(#msgs, :emptyList), :newMsg), " +
		"lastUpdatedAt = :now, lastOpenedAt.#sender = :now, unreadCounts.#sender = :zero, " +
		"unreadCounts.#recipient = if_not_exists(unreadCounts.#recipient, :zero) + :one, " +
		"revision = if_not_exists(revision, :zero) + :one"

	attrs, err := s.Dynamo.UpdateItem(ctx, models.ConversationsTable, updateExpression,
		utils.Key("conversationKey", key),
		map[string]types.AttributeValue{
			":emptyList": &types.AttributeValueMemberL{Value: []types.AttributeValue{}},
			":newMsg":    &types.AttributeValueMemberL{Value: []types.AttributeValue{msgAttr}},
			":now":       utils.S(now),
			":zero":      utils.N(0),
			":one":       utils.N(1),
		},
		map[string]string{
			"#msgs":      "messages",
			"#sender":    msg.SenderID,
			"#recipient": recipient,
		},
	)
	if err != nil {
		return nil, err
	}

	var conv models.Conversation
	if err := attributevalue.UnmarshalMap(attrs, &conv); err != nil {
		return nil, fmt.Errorf("failed to unmarshal conversation: %w", err)
	}
	return &conv, nil
}

func (s *DynamoConversationStore) ReplaceMessages(ctx context.Context, key string, messages []models.Message, unreadCounts map[string]int, expectedRevision int64, now string) error {
	msgsAttr, err := attributevalue.Marshal(messages)
	if err != nil {
		return fmt.Errorf("failed to marshal messages: %w", err)
	}

	counts := map[string]types.AttributeValue{}
	for p, n := range unreadCounts {
		counts[p] = utils.N(n)
	}

	_, err = s.Dynamo.UpdateItemConditional(ctx, models.ConversationsTable,
		"SET #msgs = :msgs, unreadCounts = :counts, lastUpdatedAt = :now, revision = :nextRev",
		"revision = :expectedRev",
		utils.Key("conversationKey", key),
		map[string]types.AttributeValue{
			":msgs":        msgsAttr,
			":counts":      &types.AttributeValueMemberM{Value: counts},
			":now":         utils.S(now),
			":expectedRev": utils.N(int(expectedRevision)),
			":nextRev":     utils.N(int(expectedRevision) + 1),
		},
		map[string]string{"#msgs": "messages"},
	)
	if errors.Is(err, ErrConditionalCheckFailed) {
		return ErrStaleConversation
	}
	return err
}

func (s *DynamoConversationStore) MarkAllRead(ctx context.Context, key, participant string, messages []models.Message, expectedRevision int64, now string) error {
	msgsAttr, err := attributevalue.Marshal(messages)
	if err != nil {
		return fmt.Errorf("failed to marshal messages: %w", err)
	}

	_, err = s.Dynamo.UpdateItemConditional(ctx, models.ConversationsTable,
		"SET #msgs = :msgs, unreadCounts.#p = :zero, lastOpenedAt.#p = :now, lastUpdatedAt = :now, revision = :nextRev",
		"revision = :expectedRev",
		utils.Key("conversationKey", key),
		map[string]types.AttributeValue{
			":msgs":        msgsAttr,
			":zero":        utils.N(0),
			":now":         utils.S(now),
			":expectedRev": utils.N(int(expectedRevision)),
			":nextRev":     utils.N(int(expectedRevision) + 1),
		},
		map[string]string{"#msgs": "messages", "#p": participant},
	)
	if errors.Is(err, ErrConditionalCheckFailed) {
		return ErrStaleConversation
	}
	return err
}

func (s *DynamoConversationStore) SetRequestStatus(ctx context.Context, key string, status models.RequestStatus, now string) error {
	_, err := s.Dynamo.UpdateItem(ctx, models.ConversationsTable,
		"SET requestStatus = :status, lastUpdatedAt = :now",
		utils.Key("conversationKey", key),
		map[string]types.AttributeValue{":status": utils.S(string(status)), ":now": utils.S(now)},
		nil,
	)
	return err
}

func (s *DynamoConversationStore) Block(ctx context.Context, key, participant string, now string) error {
	_, err := s.Dynamo.UpdateItem(ctx, models.ConversationsTable,
		"SET requestStatus = :status, lastUpdatedAt = :now ADD blockedBy :user",
		utils.Key("conversationKey", key),
		map[string]types.AttributeValue{
			":status": utils.S(string(models.RequestStatusBlocked)),
			":now":    utils.S(now),
			":user":   utils.SS([]string{participant}),
		},
		nil,
	)
	return err
}

func (s *DynamoConversationStore) SoftDelete(ctx context.Context, key, participant string, participants []string, now string) (*models.Conversation, error) {
	zeroed := map[string]types.AttributeValue{}
	for _, p := range participants {
		zeroed[p] = utils.N(0)
	}

	// Bumps revision: clearing the ledger must invalidate any in-flight
	// rewrite that loaded the pre-delete messages.
	attrs, err := s.Dynamo.UpdateItem(ctx, models.ConversationsTable,
		"SET #msgs = :emptyList, unreadCounts = :zeroed, lastUpdatedAt = :now, "+
			"revision = if_not_exists(revision, :zero) + :one ADD deletedBy :user",
		utils.Key("conversationKey", key),
		map[string]types.AttributeValue{
			":emptyList": &types.AttributeValueMemberL{Value: []types.AttributeValue{}},
			":zeroed":    &types.AttributeValueMemberM{Value: zeroed},
			":now":       utils.S(now),
			":zero":      utils.N(0),
			":one":       utils.N(1),
			":user":      utils.SS([]string{participant}),
		},
		map[string]string{"#msgs": "messages"},
	)
	if err != nil {
		return nil, err
	}

	var conv models.Conversation
	if err := attributevalue.UnmarshalMap(attrs, &conv); err != nil {
		return nil, fmt.Errorf("failed to unmarshal conversation: %w", err)
	}
	return &conv, nil
}

func (s *DynamoConversationStore) Delete(ctx context.Context, key string) error {
	return s.Dynamo.DeleteItem(ctx, models.ConversationsTable, utils.Key("conversationKey", key))
}

func (s *DynamoConversationStore) ListForParticipant(ctx context.Context, userID string) ([]models.Conversation, error) {
	items, err := s.Dynamo.ScanAllItems(ctx, models.ConversationsTable,
		"contains(participants, :uid) AND NOT contains(deletedBy, :uid)",
		map[string]types.AttributeValue{":uid": utils.S(userID)},
		nil,
	)
	if err != nil {
		return nil, err
	}

	var convs []models.Conversation
	if err := attributevalue.UnmarshalListOfMaps(items, &convs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal conversations: %w", err)
	}
	return convs, nil
}

func (s *DynamoConversationStore) ListAll(ctx context.Context) ([]models.Conversation, error) {
	items, err := s.Dynamo.ScanAllItems(ctx, models.ConversationsTable, "", nil, nil)
	if err != nil {
		return nil, err
	}

	var convs []models.Conversation
	if err := attributevalue.UnmarshalListOfMaps(items, &convs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal conversations: %w", err)
	}
	return convs, nil
}

func (s *DynamoConversationStore) Save(ctx context.Context, conv *models.Conversation) error {
	return s.Dynamo.PutItem(ctx, models.ConversationsTable, conv)
}

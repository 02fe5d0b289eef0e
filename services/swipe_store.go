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
	ErrSwipeNotFound = errors.New("swipe not found")
	ErrSwipeExists   = errors.New("swipe already recorded for pair")
)

// SwipeStore persists directional swipe actions. Insert is one-shot per
// ordered (actor, target) pair.
type SwipeStore interface {
	Insert(ctx context.Context, swipe models.Swipe) error
	Get(ctx context.Context, actorID, targetID string) (*models.Swipe, error)
	ListByActor(ctx context.Context, actorID string) ([]models.Swipe, error)
}

// DynamoSwipeStore keys swipes on (actorId, targetId) so the composite key
// itself enforces at most one authoritative swipe per ordered pair.
type DynamoSwipeStore struct {
	Dynamo *DynamoService
}

func NewDynamoSwipeStore(dynamo *DynamoService) *DynamoSwipeStore {
	return &DynamoSwipeStore{Dynamo: dynamo}
}

func (s *DynamoSwipeStore) Insert(ctx context.Context, swipe models.Swipe) error {
	err := s.Dynamo.PutItemIfAbsent(ctx, models.SwipesTable, swipe, "actorId")
	if errors.Is(err, ErrConditionalCheckFailed) {
		return ErrSwipeExists
	}
	return err
}

func (s *DynamoSwipeStore) Get(ctx context.Context, actorID, targetID string) (*models.Swipe, error) {
	item, err := s.Dynamo.GetItem(ctx, models.SwipesTable,
		utils.CompositeKey("actorId", actorID, "targetId", targetID))
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return nil, ErrSwipeNotFound
		}
		return nil, err
	}

	var swipe models.Swipe
	if err := attributevalue.UnmarshalMap(item, &swipe); err != nil {
		return nil, fmt.Errorf("failed to unmarshal swipe: %w", err)
	}
	return &swipe, nil
}

func (s *DynamoSwipeStore) ListByActor(ctx context.Context, actorID string) ([]models.Swipe, error) {
	items, err := s.Dynamo.QueryItems(ctx, models.SwipesTable,
		"actorId = :actor",
		map[string]types.AttributeValue{":actor": utils.S(actorID)},
		nil, 500)
	if err != nil {
		return nil, err
	}

	var swipes []models.Swipe
	if err := attributevalue.UnmarshalListOfMaps(items, &swipes); err != nil {
		return nil, fmt.Errorf("failed to unmarshal swipes: %w", err)
	}
	return swipes, nil
}

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
	ErrMatchNotFound = errors.New("match not found")
	ErrMatchExists   = errors.New("match already exists for pair")
)

// MatchStore persists materialized matches, at most one per unordered pair.
type MatchStore interface {
	Insert(ctx context.Context, match models.Match) error
	GetByPairKey(ctx context.Context, pairKey string) (*models.Match, error)
	ListForUser(ctx context.Context, userID string) ([]models.Match, error)
	Touch(ctx context.Context, pairKey, now string) error
}

// DynamoMatchStore keys matches on the canonical pair key; the same
// insert-if-absent discipline as conversations keeps creation exactly-once.
type DynamoMatchStore struct {
	Dynamo *DynamoService
}

func NewDynamoMatchStore(dynamo *DynamoService) *DynamoMatchStore {
	return &DynamoMatchStore{Dynamo: dynamo}
}

func (s *DynamoMatchStore) Insert(ctx context.Context, match models.Match) error {
	err := s.Dynamo.PutItemIfAbsent(ctx, models.MatchesTable, match, "pairKey")
	if errors.Is(err, ErrConditionalCheckFailed) {
		return ErrMatchExists
	}
	return err
}

func (s *DynamoMatchStore) GetByPairKey(ctx context.Context, pairKey string) (*models.Match, error) {
	item, err := s.Dynamo.GetItem(ctx, models.MatchesTable, utils.Key("pairKey", pairKey))
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}

	var match models.Match
	if err := attributevalue.UnmarshalMap(item, &match); err != nil {
		return nil, fmt.Errorf("failed to unmarshal match: %w", err)
	}
	return &match, nil
}

// ListForUser queries both sides of the pair via the user GSIs; a user can
// appear as either user1Id or user2Id depending on sort order.
func (s *DynamoMatchStore) ListForUser(ctx context.Context, userID string) ([]models.Match, error) {
	var matches []models.Match

	for _, q := range []struct{ index, attr string }{
		{models.MatchUser1Index, "user1Id"},
		{models.MatchUser2Index, "user2Id"},
	} {
		items, err := s.Dynamo.QueryItemsWithIndex(ctx, models.MatchesTable, q.index,
			fmt.Sprintf("%s = :uid", q.attr),
			map[string]types.AttributeValue{":uid": utils.S(userID)},
			nil, 500)
		if err != nil {
			return nil, err
		}

		var page []models.Match
		if err := attributevalue.UnmarshalListOfMaps(items, &page); err != nil {
			return nil, fmt.Errorf("failed to unmarshal matches: %w", err)
		}
		matches = append(matches, page...)
	}
	return matches, nil
}

func (s *DynamoMatchStore) Touch(ctx context.Context, pairKey, now string) error {
	// Guarded so touching a pair that never matched cannot upsert a
	// phantom row.
	_, err := s.Dynamo.UpdateItemIfExists(ctx, models.MatchesTable,
		"SET lastInteractedAt = :now",
		"pairKey",
		utils.Key("pairKey", pairKey),
		map[string]types.AttributeValue{":now": utils.S(now)},
		nil,
	)
	if errors.Is(err, ErrConditionalCheckFailed) {
		return ErrMatchNotFound
	}
	return err
}

package services

import (
	"context"
	"errors"
	"fmt"

	"kindling_server/models"
	"kindling_server/utils"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
)

var ErrProfileNotFound = errors.New("user profile not found")

// ProfileStore reads the slim profile fields the match policy scores on.
type ProfileStore interface {
	Get(ctx context.Context, userID string) (*models.UserProfile, error)
}

type DynamoProfileStore struct {
	Dynamo *DynamoService
}

func NewDynamoProfileStore(dynamo *DynamoService) *DynamoProfileStore {
	return &DynamoProfileStore{Dynamo: dynamo}
}

func (s *DynamoProfileStore) Get(ctx context.Context, userID string) (*models.UserProfile, error) {
	item, err := s.Dynamo.GetItem(ctx, models.UserProfilesTable, utils.Key("userId", userID))
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}

	var profile models.UserProfile
	if err := attributevalue.UnmarshalMap(item, &profile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile: %w", err)
	}
	return &profile, nil
}

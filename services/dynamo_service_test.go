package services

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDynamoClient scripts responses per call; unset functions panic, which
// keeps tests honest about what they exercise.
type fakeDynamoClient struct {
	getItem    func(*dynamodb.GetItemInput) (*dynamodb.GetItemOutput, error)
	putItem    func(*dynamodb.PutItemInput) (*dynamodb.PutItemOutput, error)
	updateItem func(*dynamodb.UpdateItemInput) (*dynamodb.UpdateItemOutput, error)
	scan       func(*dynamodb.ScanInput) (*dynamodb.ScanOutput, error)
}

func (f *fakeDynamoClient) GetItem(_ context.Context, params *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	return f.getItem(params)
}

func (f *fakeDynamoClient) PutItem(_ context.Context, params *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	return f.putItem(params)
}

func (f *fakeDynamoClient) UpdateItem(_ context.Context, params *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	return f.updateItem(params)
}

func (f *fakeDynamoClient) DeleteItem(_ context.Context, _ *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	return &dynamodb.DeleteItemOutput{}, nil
}

func (f *fakeDynamoClient) Query(_ context.Context, _ *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	return &dynamodb.QueryOutput{}, nil
}

func (f *fakeDynamoClient) Scan(_ context.Context, params *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	return f.scan(params)
}

func (f *fakeDynamoClient) BatchWriteItem(_ context.Context, _ *dynamodb.BatchWriteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error) {
	return &dynamodb.BatchWriteItemOutput{}, nil
}

func TestGetItemMissingItem(t *testing.T) {
	svc := &DynamoService{Client: &fakeDynamoClient{
		getItem: func(*dynamodb.GetItemInput) (*dynamodb.GetItemOutput, error) {
			return &dynamodb.GetItemOutput{}, nil
		},
	}}

	_, err := svc.GetItem(context.Background(), "Conversations", map[string]types.AttributeValue{})
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestPutItemIfAbsentSetsConditionAndMapsConflict(t *testing.T) {
	var captured *dynamodb.PutItemInput
	client := &fakeDynamoClient{
		putItem: func(input *dynamodb.PutItemInput) (*dynamodb.PutItemOutput, error) {
			captured = input
			return nil, &types.ConditionalCheckFailedException{}
		},
	}
	svc := &DynamoService{Client: client}

	err := svc.PutItemIfAbsent(context.Background(), "Conversations",
		map[string]string{"conversationKey": "alice#bob"}, "conversationKey")

	assert.ErrorIs(t, err, ErrConditionalCheckFailed)
	require.NotNil(t, captured)
	require.NotNil(t, captured.ConditionExpression)
	assert.Equal(t, "attribute_not_exists(#pk)", *captured.ConditionExpression)
	assert.Equal(t, "conversationKey", captured.ExpressionAttributeNames["#pk"])
}

func TestPutItemIfAbsentPassesThroughOtherErrors(t *testing.T) {
	client := &fakeDynamoClient{
		putItem: func(*dynamodb.PutItemInput) (*dynamodb.PutItemOutput, error) {
			return nil, errors.New("throttled")
		},
	}
	svc := &DynamoService{Client: client}

	err := svc.PutItemIfAbsent(context.Background(), "Conversations",
		map[string]string{"conversationKey": "alice#bob"}, "conversationKey")

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrConditionalCheckFailed)
}

func TestUpdateItemMapsConditionalFailure(t *testing.T) {
	client := &fakeDynamoClient{
		updateItem: func(*dynamodb.UpdateItemInput) (*dynamodb.UpdateItemOutput, error) {
			return nil, &types.ConditionalCheckFailedException{}
		},
	}
	svc := &DynamoService{Client: client}

	_, err := svc.UpdateItem(context.Background(), "Conversations", "SET #a = :v",
		map[string]types.AttributeValue{"conversationKey": &types.AttributeValueMemberS{Value: "alice#bob"}},
		map[string]types.AttributeValue{":v": &types.AttributeValueMemberS{Value: "x"}},
		map[string]string{"#a": "attr"})

	assert.ErrorIs(t, err, ErrConditionalCheckFailed)
}

func TestUpdateItemValidatesInput(t *testing.T) {
	svc := &DynamoService{Client: &fakeDynamoClient{}}

	_, err := svc.UpdateItem(context.Background(), "Conversations", "",
		map[string]types.AttributeValue{"conversationKey": &types.AttributeValueMemberS{Value: "alice#bob"}},
		nil, nil)
	assert.Error(t, err)

	_, err = svc.UpdateItem(context.Background(), "Conversations", "SET #a = :v",
		map[string]types.AttributeValue{}, nil, nil)
	assert.Error(t, err)
}

func TestScanAllItemsFollowsPagination(t *testing.T) {
	pageKey := map[string]types.AttributeValue{"conversationKey": &types.AttributeValueMemberS{Value: "k"}}
	calls := 0
	client := &fakeDynamoClient{
		scan: func(input *dynamodb.ScanInput) (*dynamodb.ScanOutput, error) {
			calls++
			if calls == 1 {
				assert.Nil(t, input.ExclusiveStartKey)
				return &dynamodb.ScanOutput{
					Items:            []map[string]types.AttributeValue{{"id": &types.AttributeValueMemberS{Value: "1"}}},
					LastEvaluatedKey: pageKey,
				}, nil
			}
			assert.Equal(t, pageKey, input.ExclusiveStartKey)
			return &dynamodb.ScanOutput{
				Items: []map[string]types.AttributeValue{{"id": &types.AttributeValueMemberS{Value: "2"}}},
			}, nil
		},
	}
	svc := &DynamoService{Client: client}

	items, err := svc.ScanAllItems(context.Background(), "Conversations", "", nil, nil)
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, 2, calls)
}

package utils

import (
	"strconv"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// S wraps a string as a DynamoDB attribute value.
func S(v string) types.AttributeValue {
	return &types.AttributeValueMemberS{Value: v}
}

// N wraps an integer as a DynamoDB number attribute value.
func N(v int) types.AttributeValue {
	return &types.AttributeValueMemberN{Value: strconv.Itoa(v)}
}

// SS wraps a string slice as a DynamoDB string set.
func SS(values []string) types.AttributeValue {
	return &types.AttributeValueMemberSS{Value: values}
}

// Key builds a single-attribute primary key.
func Key(attribute, value string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{attribute: S(value)}
}

// CompositeKey builds a two-attribute (partition + sort) primary key.
func CompositeKey(pkAttr, pkValue, skAttr, skValue string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{pkAttr: S(pkValue), skAttr: S(skValue)}
}

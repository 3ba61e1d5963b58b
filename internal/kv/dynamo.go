package kv

import (
	"context"
	"fmt"

	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/tabledine/tabledine/internal/aws"
)

// DynamoStore keeps values in a DynamoDB table with string partition key "kv_key"
// and the payload under "kv_value".
type DynamoStore struct {
	client    aws.DynamoDBAPI
	tableName string
}

// NewDynamoStore returns a Store backed by the given table.
func NewDynamoStore(client aws.DynamoDBAPI, tableName string) *DynamoStore {
	return &DynamoStore{
		client:    client,
		tableName: tableName,
	}
}

func (s *DynamoStore) Get(ctx context.Context, key string) (string, bool, error) {
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"kv_key": &types.AttributeValueMemberS{Value: key},
		},
	})
	if err != nil {
		return "", false, fmt.Errorf("get item: %w", err)
	}
	if len(out.Item) == 0 {
		return "", false, nil
	}
	v, ok := out.Item["kv_value"].(*types.AttributeValueMemberS)
	if !ok {
		return "", false, fmt.Errorf("kv_value missing or not a string for key %q", key)
	}
	return v.Value, true, nil
}

func (s *DynamoStore) Set(ctx context.Context, key, value string) error {
	_, err := s.client.PutItem(ctx, &dyn.PutItemInput{
		TableName: &s.tableName,
		Item: map[string]types.AttributeValue{
			"kv_key":   &types.AttributeValueMemberS{Value: key},
			"kv_value": &types.AttributeValueMemberS{Value: value},
		},
	})
	if err != nil {
		return fmt.Errorf("put item: %w", err)
	}
	return nil
}

func (s *DynamoStore) Remove(ctx context.Context, key string) error {
	_, err := s.client.DeleteItem(ctx, &dyn.DeleteItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"kv_key": &types.AttributeValueMemberS{Value: key},
		},
	})
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}

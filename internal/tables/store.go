package tables

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/google/uuid"
	"github.com/tabledine/tabledine/internal/aws"
)

// ErrNotFound is returned when no table matches the lookup.
var ErrNotFound = errors.New("table not found")

// Store encapsulates table operations. The table uses restaurant_id as
// partition key and the numeric table number as sort key, so listing comes
// back in table-number order and number lookups are point reads.
type Store struct {
	client    aws.DynamoDBAPI
	tableName string
	newID     func() string
}

// NewStore creates a new tables Store.
func NewStore(client aws.DynamoDBAPI, tableName string) *Store {
	return &Store{
		client:    client,
		tableName: tableName,
		newID:     uuid.NewString,
	}
}

// Create adds a table with the next free number for the restaurant
// (highest + 1, starting at 1) and returns it. capacity <= 0 falls back to
// DefaultCapacity.
func (s *Store) Create(ctx context.Context, restaurantID string, capacity int) (*Table, error) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	highest, err := s.highest(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	next := 1
	if highest != nil {
		next = highest.Number + 1
	}

	t := Table{
		ID:           s.newID(),
		RestaurantID: restaurantID,
		Number:       next,
		Status:       StatusAvailable,
		Capacity:     capacity,
	}
	item, err := attributevalue.MarshalMap(t)
	if err != nil {
		return nil, fmt.Errorf("marshal table: %w", err)
	}
	_, err = s.client.PutItem(ctx, &dyn.PutItemInput{
		TableName:           &s.tableName,
		Item:                item,
		ConditionExpression: awsString("attribute_not_exists(restaurant_id)"),
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "ConditionalCheckFailedException" {
			return nil, fmt.Errorf("table number %d already taken for restaurant %s", next, restaurantID)
		}
		return nil, fmt.Errorf("put table: %w", err)
	}
	return &t, nil
}

// Resolve maps a human-facing table number to the backing table record.
// Returns ErrNotFound when the restaurant has no such number.
func (s *Store) Resolve(ctx context.Context, restaurantID string, number int) (*Table, error) {
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"restaurant_id": &types.AttributeValueMemberS{Value: restaurantID},
			"number":        &types.AttributeValueMemberN{Value: strconv.Itoa(number)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get table: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, ErrNotFound
	}
	var t Table
	if err := attributevalue.UnmarshalMap(out.Item, &t); err != nil {
		return nil, fmt.Errorf("unmarshal table: %w", err)
	}
	return &t, nil
}

// List returns all tables of a restaurant in number order.
func (s *Store) List(ctx context.Context, restaurantID string) ([]Table, error) {
	out, err := s.client.Query(ctx, &dyn.QueryInput{
		TableName:              &s.tableName,
		KeyConditionExpression: awsString("restaurant_id = :rid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":rid": &types.AttributeValueMemberS{Value: restaurantID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("query tables: %w", err)
	}
	var ts []Table
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &ts); err != nil {
		return nil, fmt.Errorf("unmarshal tables: %w", err)
	}
	return ts, nil
}

// RemoveHighest deletes the highest-numbered table of the restaurant, keeping
// numbering dense from the top the way tables were added. Returns ErrNotFound
// when the restaurant has no tables.
func (s *Store) RemoveHighest(ctx context.Context, restaurantID string) (*Table, error) {
	highest, err := s.highest(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	if highest == nil {
		return nil, ErrNotFound
	}
	_, err = s.client.DeleteItem(ctx, &dyn.DeleteItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"restaurant_id": &types.AttributeValueMemberS{Value: restaurantID},
			"number":        &types.AttributeValueMemberN{Value: strconv.Itoa(highest.Number)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("delete table: %w", err)
	}
	return highest, nil
}

// UpdateStatus sets the table status (Available / Occupied / Reserved).
func (s *Store) UpdateStatus(ctx context.Context, restaurantID string, number int, status string) error {
	_, err := s.client.UpdateItem(ctx, &dyn.UpdateItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"restaurant_id": &types.AttributeValueMemberS{Value: restaurantID},
			"number":        &types.AttributeValueMemberN{Value: strconv.Itoa(number)},
		},
		UpdateExpression:         awsString("SET #s = :status"),
		ExpressionAttributeNames: map[string]string{"#s": "status"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":status": &types.AttributeValueMemberS{Value: status},
		},
		ConditionExpression: awsString("attribute_exists(restaurant_id)"),
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "ConditionalCheckFailedException" {
			return ErrNotFound
		}
		return fmt.Errorf("update table status: %w", err)
	}
	return nil
}

// highest returns the highest-numbered table or nil when there are none.
func (s *Store) highest(ctx context.Context, restaurantID string) (*Table, error) {
	limit := int32(1)
	out, err := s.client.Query(ctx, &dyn.QueryInput{
		TableName:              &s.tableName,
		KeyConditionExpression: awsString("restaurant_id = :rid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":rid": &types.AttributeValueMemberS{Value: restaurantID},
		},
		ScanIndexForward: awsBool(false),
		Limit:            &limit,
	})
	if err != nil {
		return nil, fmt.Errorf("query highest table: %w", err)
	}
	if len(out.Items) == 0 {
		return nil, nil
	}
	var t Table
	if err := attributevalue.UnmarshalMap(out.Items[0], &t); err != nil {
		return nil, fmt.Errorf("unmarshal table: %w", err)
	}
	return &t, nil
}

func awsString(s string) *string { return &s }
func awsBool(b bool) *bool       { return &b }

package help

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"github.com/tabledine/tabledine/internal/aws"
)

// RestaurantIndexName is the GSI for listing a restaurant's help requests
// (partition restaurant_id, sort created_at).
const RestaurantIndexName = "restaurant_id-created_at-index"

// ErrNotFound is returned when a help request does not exist.
var ErrNotFound = errors.New("help request not found")

// Store encapsulates operations on the help requests table.
type Store struct {
	client    aws.DynamoDBAPI
	tableName string
	nowFunc   func() time.Time
	newID     func() string
}

// NewStore creates a new help request Store.
func NewStore(client aws.DynamoDBAPI, tableName string) *Store {
	return &Store{
		client:    client,
		tableName: tableName,
		nowFunc:   time.Now,
		newID:     uuid.NewString,
	}
}

// Create persists a new Pending request and returns it.
func (s *Store) Create(ctx context.Context, restaurantID string, tableNumber int, description string) (*Request, error) {
	now := s.nowFunc()
	req := Request{
		ID:           s.newID(),
		RestaurantID: restaurantID,
		TableNumber:  tableNumber,
		Description:  description,
		Status:       StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	item, err := attributevalue.MarshalMap(req)
	if err != nil {
		return nil, fmt.Errorf("marshal help request: %w", err)
	}
	_, err = s.client.PutItem(ctx, &dyn.PutItemInput{
		TableName: &s.tableName,
		Item:      item,
	})
	if err != nil {
		return nil, fmt.Errorf("put help request: %w", err)
	}
	return &req, nil
}

// Get fetches a help request by id. Returns ErrNotFound when absent.
func (s *Store) Get(ctx context.Context, id string) (*Request, error) {
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"request_id": &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get help request: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, ErrNotFound
	}
	var req Request
	if err := attributevalue.UnmarshalMap(out.Item, &req); err != nil {
		return nil, fmt.Errorf("unmarshal help request: %w", err)
	}
	return &req, nil
}

// ListByRestaurant returns a restaurant's help requests, newest first.
func (s *Store) ListByRestaurant(ctx context.Context, restaurantID string) ([]Request, error) {
	out, err := s.client.Query(ctx, &dyn.QueryInput{
		TableName:              &s.tableName,
		IndexName:              awsString(RestaurantIndexName),
		KeyConditionExpression: awsString("restaurant_id = :rid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":rid": &types.AttributeValueMemberS{Value: restaurantID},
		},
		ScanIndexForward: awsBool(false),
	})
	if err != nil {
		return nil, fmt.Errorf("query help requests: %w", err)
	}
	var reqs []Request
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &reqs); err != nil {
		return nil, fmt.Errorf("unmarshal help requests: %w", err)
	}
	return reqs, nil
}

// Respond sets the status and optional staff response of a request.
func (s *Store) Respond(ctx context.Context, id, status, response string) error {
	now := s.nowFunc()
	_, err := s.client.UpdateItem(ctx, &dyn.UpdateItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"request_id": &types.AttributeValueMemberS{Value: id},
		},
		UpdateExpression:         awsString("SET #s = :status, #r = :response, updated_at = :ua"),
		ExpressionAttributeNames: map[string]string{"#s": "status", "#r": "response"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":status":   &types.AttributeValueMemberS{Value: status},
			":response": &types.AttributeValueMemberS{Value: response},
			":ua":       &types.AttributeValueMemberS{Value: now.Format(time.RFC3339)},
		},
		ConditionExpression: awsString("attribute_exists(request_id)"),
	})
	if err != nil {
		var cc *types.ConditionalCheckFailedException
		if errors.As(err, &cc) {
			return ErrNotFound
		}
		return fmt.Errorf("update help request: %w", err)
	}
	return nil
}

func awsString(s string) *string { return &s }
func awsBool(b bool) *bool       { return &b }

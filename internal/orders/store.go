package orders

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/tabledine/tabledine/internal/aws"
)

// TableIndexName is the GSI used for per-table status queries
// (partition table_key, sort created_at).
const TableIndexName = "table_key-created_at-index"

// ErrStatusMismatch is returned by UpdateStatus when the order is not in the
// expected status.
var ErrStatusMismatch = errors.New("status mismatch/conditional failed")

// ErrAlreadyExists is returned by Create when the order id is taken.
var ErrAlreadyExists = errors.New("order already exists")

// Store encapsulates operations on the orders table.
type Store struct {
	client    aws.DynamoDBAPI
	tableName string
	nowFunc   func() time.Time
}

// NewStore creates a new orders Store.
func NewStore(client aws.DynamoDBAPI, tableName string) *Store {
	return &Store{
		client:    client,
		tableName: tableName,
		nowFunc:   time.Now,
	}
}

// TableKey builds the GSI partition key for a restaurant+table pair.
func TableKey(restaurantID string, tableNumber int) string {
	return restaurantID + "#" + strconv.Itoa(tableNumber)
}

// Create persists a new order. order.OrderID must be set by the caller;
// CreatedAt/UpdatedAt and the per-table index key are filled in here.
func (s *Store) Create(ctx context.Context, order Order) error {
	now := s.nowFunc()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.UpdatedAt = now
	order.TableKey = TableKey(order.RestaurantID, order.TableNumber)

	item, err := attributevalue.MarshalMap(order)
	if err != nil {
		return fmt.Errorf("marshal order: %w", err)
	}
	_, err = s.client.PutItem(ctx, &dyn.PutItemInput{
		TableName:           &s.tableName,
		Item:                item,
		ConditionExpression: awsString("attribute_not_exists(order_id)"),
	})
	if err != nil {
		var cc *types.ConditionalCheckFailedException
		if errors.As(err, &cc) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("put order: %w", err)
	}
	return nil
}

// Get fetches an order by order_id. Returns (nil, nil) if not found.
func (s *Store) Get(ctx context.Context, orderID string) (*Order, error) {
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"order_id": &types.AttributeValueMemberS{Value: orderID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var o Order
	if err := attributevalue.UnmarshalMap(out.Item, &o); err != nil {
		return nil, fmt.Errorf("unmarshal order: %w", err)
	}
	return &o, nil
}

// UpdateStatus conditionally updates the order status from expected -> newStatus.
// Returns ErrStatusMismatch if the order is not currently in expectedStatus.
func (s *Store) UpdateStatus(ctx context.Context, orderID, expectedStatus, newStatus string) error {
	now := s.nowFunc()
	input := &dyn.UpdateItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"order_id": &types.AttributeValueMemberS{Value: orderID},
		},
		UpdateExpression:         awsString("SET #s = :new, updated_at = :ua"),
		ExpressionAttributeNames: map[string]string{"#s": "status"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":new":      &types.AttributeValueMemberS{Value: newStatus},
			":expected": &types.AttributeValueMemberS{Value: expectedStatus},
			":ua":       &types.AttributeValueMemberS{Value: now.Format(time.RFC3339)},
		},
		ConditionExpression: awsString("#s = :expected"),
	}

	_, err := s.client.UpdateItem(ctx, input)
	if err != nil {
		var cc *types.ConditionalCheckFailedException
		if errors.As(err, &cc) {
			return ErrStatusMismatch
		}
		return fmt.Errorf("update item: %w", err)
	}
	return nil
}

// SetStatus updates the order status unconditionally. Used by staff edits
// where the previous status is not known to the caller.
func (s *Store) SetStatus(ctx context.Context, orderID, newStatus string) error {
	now := s.nowFunc()
	_, err := s.client.UpdateItem(ctx, &dyn.UpdateItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"order_id": &types.AttributeValueMemberS{Value: orderID},
		},
		UpdateExpression:         awsString("SET #s = :new, updated_at = :ua"),
		ExpressionAttributeNames: map[string]string{"#s": "status"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":new": &types.AttributeValueMemberS{Value: newStatus},
			":ua":  &types.AttributeValueMemberS{Value: now.Format(time.RFC3339)},
		},
		ConditionExpression: awsString("attribute_exists(order_id)"),
	})
	if err != nil {
		var cc *types.ConditionalCheckFailedException
		if errors.As(err, &cc) {
			return ErrStatusMismatch
		}
		return fmt.Errorf("update item: %w", err)
	}
	return nil
}

// RecentByTable returns the orders placed from a restaurant+table pair, most
// recent first.
func (s *Store) RecentByTable(ctx context.Context, restaurantID string, tableNumber int) ([]Order, error) {
	out, err := s.client.Query(ctx, &dyn.QueryInput{
		TableName:              &s.tableName,
		IndexName:              awsString(TableIndexName),
		KeyConditionExpression: awsString("table_key = :tk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":tk": &types.AttributeValueMemberS{Value: TableKey(restaurantID, tableNumber)},
		},
		ScanIndexForward: awsBool(false),
	})
	if err != nil {
		return nil, fmt.Errorf("query orders by table: %w", err)
	}
	var os []Order
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &os); err != nil {
		return nil, fmt.Errorf("unmarshal orders: %w", err)
	}
	return os, nil
}

// HasActiveOrder reports whether the table currently has a Pending or
// In Progress order. Creation is rejected while one exists.
func (s *Store) HasActiveOrder(ctx context.Context, restaurantID string, tableNumber int) (bool, error) {
	recent, err := s.RecentByTable(ctx, restaurantID, tableNumber)
	if err != nil {
		return false, err
	}
	for i := range recent {
		if recent[i].Active() {
			return true, nil
		}
	}
	return false, nil
}

func awsString(s string) *string { return &s }
func awsBool(b bool) *bool       { return &b }

package catalog

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/tabledine/tabledine/internal/aws"
)

// ErrNotFound is returned when a catalog record does not exist.
var ErrNotFound = errors.New("catalog record not found")

// Sort-key prefixes for the single-table layout. Every record of a
// restaurant lives under the same partition key (restaurant_id).
const (
	skMenuPrefix     = "MENU#"
	skCategoryPrefix = "CATEGORY#"
	skItemPrefix     = "ITEM#"
	skItemCounter    = "COUNTER#item"
)

// Store encapsulates catalog operations against a single DynamoDB table
// keyed by restaurant_id (partition) and sk (sort).
type Store struct {
	client    aws.DynamoDBAPI
	tableName string
}

// NewStore creates a new catalog Store.
func NewStore(client aws.DynamoDBAPI, tableName string) *Store {
	return &Store{
		client:    client,
		tableName: tableName,
	}
}

func (s *Store) put(ctx context.Context, restaurantID, sk string, record interface{}) error {
	item, err := attributevalue.MarshalMap(record)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	item["restaurant_id"] = &types.AttributeValueMemberS{Value: restaurantID}
	item["sk"] = &types.AttributeValueMemberS{Value: sk}

	_, err = s.client.PutItem(ctx, &dyn.PutItemInput{
		TableName: &s.tableName,
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("put item: %w", err)
	}
	return nil
}

func (s *Store) get(ctx context.Context, restaurantID, sk string, out interface{}) error {
	res, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"restaurant_id": &types.AttributeValueMemberS{Value: restaurantID},
			"sk":            &types.AttributeValueMemberS{Value: sk},
		},
	})
	if err != nil {
		return fmt.Errorf("get item: %w", err)
	}
	if len(res.Item) == 0 {
		return ErrNotFound
	}
	if err := attributevalue.UnmarshalMap(res.Item, out); err != nil {
		return fmt.Errorf("unmarshal item: %w", err)
	}
	return nil
}

func (s *Store) delete(ctx context.Context, restaurantID, sk string) error {
	_, err := s.client.DeleteItem(ctx, &dyn.DeleteItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"restaurant_id": &types.AttributeValueMemberS{Value: restaurantID},
			"sk":            &types.AttributeValueMemberS{Value: sk},
		},
	})
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}

// queryPrefix fetches every record of a restaurant whose sort key begins
// with prefix and unmarshals the page into out (a pointer to a slice).
func (s *Store) queryPrefix(ctx context.Context, restaurantID, prefix string, out interface{}) error {
	res, err := s.client.Query(ctx, &dyn.QueryInput{
		TableName:              &s.tableName,
		KeyConditionExpression: awsString("restaurant_id = :rid AND begins_with(sk, :prefix)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":rid":    &types.AttributeValueMemberS{Value: restaurantID},
			":prefix": &types.AttributeValueMemberS{Value: prefix},
		},
	})
	if err != nil {
		return fmt.Errorf("query: %w", err)
	}
	if err := attributevalue.UnmarshalListOfMaps(res.Items, out); err != nil {
		return fmt.Errorf("unmarshal query page: %w", err)
	}
	return nil
}

// PutMenu creates or replaces a menu.
func (s *Store) PutMenu(ctx context.Context, m Menu) error {
	return s.put(ctx, m.RestaurantID, skMenuPrefix+m.ID, m)
}

// ListMenus returns all menus of a restaurant.
func (s *Store) ListMenus(ctx context.Context, restaurantID string) ([]Menu, error) {
	var menus []Menu
	if err := s.queryPrefix(ctx, restaurantID, skMenuPrefix, &menus); err != nil {
		return nil, err
	}
	return menus, nil
}

// DeleteMenu removes a menu. Items keep their menu_id reference; dangling
// references are treated as "no menu" by readers.
func (s *Store) DeleteMenu(ctx context.Context, restaurantID, menuID string) error {
	return s.delete(ctx, restaurantID, skMenuPrefix+menuID)
}

// PutCategory creates or replaces a category.
func (s *Store) PutCategory(ctx context.Context, c Category) error {
	return s.put(ctx, c.RestaurantID, skCategoryPrefix+c.ID, c)
}

// ListCategories returns all categories of a restaurant.
func (s *Store) ListCategories(ctx context.Context, restaurantID string) ([]Category, error) {
	var categories []Category
	if err := s.queryPrefix(ctx, restaurantID, skCategoryPrefix, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// DeleteCategory removes a category.
func (s *Store) DeleteCategory(ctx context.Context, restaurantID, categoryID string) error {
	return s.delete(ctx, restaurantID, skCategoryPrefix+categoryID)
}

// CreateItem allocates the next numeric item id for the restaurant and
// persists the item under it. The allocated id is written back into item.
func (s *Store) CreateItem(ctx context.Context, item *MenuItem) error {
	id, err := s.nextItemID(ctx, item.RestaurantID)
	if err != nil {
		return err
	}
	item.ID = id
	return s.put(ctx, item.RestaurantID, itemSK(id), *item)
}

// UpdateItem replaces an existing item. The id must already be allocated.
func (s *Store) UpdateItem(ctx context.Context, item MenuItem) error {
	if item.ID <= 0 {
		return fmt.Errorf("update item: id must be positive, got %d", item.ID)
	}
	return s.put(ctx, item.RestaurantID, itemSK(item.ID), item)
}

// GetItem fetches one menu item. Returns ErrNotFound when absent.
func (s *Store) GetItem(ctx context.Context, restaurantID string, itemID int) (*MenuItem, error) {
	var item MenuItem
	if err := s.get(ctx, restaurantID, itemSK(itemID), &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// ListItems returns all menu items of a restaurant.
func (s *Store) ListItems(ctx context.Context, restaurantID string) ([]MenuItem, error) {
	var items []MenuItem
	if err := s.queryPrefix(ctx, restaurantID, skItemPrefix, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// DeleteItem removes a menu item.
func (s *Store) DeleteItem(ctx context.Context, restaurantID string, itemID int) error {
	return s.delete(ctx, restaurantID, itemSK(itemID))
}

// nextItemID increments the per-restaurant item counter and returns the new
// value. The counter row is created on first use.
func (s *Store) nextItemID(ctx context.Context, restaurantID string) (int, error) {
	out, err := s.client.UpdateItem(ctx, &dyn.UpdateItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"restaurant_id": &types.AttributeValueMemberS{Value: restaurantID},
			"sk":            &types.AttributeValueMemberS{Value: skItemCounter},
		},
		UpdateExpression: awsString("SET next_id = if_not_exists(next_id, :zero) + :inc"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":zero": &types.AttributeValueMemberN{Value: "0"},
			":inc":  &types.AttributeValueMemberN{Value: "1"},
		},
		ReturnValues: types.ReturnValueUpdatedNew,
	})
	if err != nil {
		return 0, fmt.Errorf("increment item counter: %w", err)
	}
	n, ok := out.Attributes["next_id"].(*types.AttributeValueMemberN)
	if !ok {
		return 0, fmt.Errorf("item counter returned no next_id")
	}
	id, err := strconv.Atoi(n.Value)
	if err != nil {
		return 0, fmt.Errorf("parse item counter: %w", err)
	}
	return id, nil
}

func itemSK(id int) string {
	return skItemPrefix + strconv.Itoa(id)
}

func awsString(s string) *string { return &s }

package orders

import (
	"context"
	"errors"
	"sync"

	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// ordersMock is a small in-memory stand-in for the orders table, including
// the per-table GSI. Not production-grade; just enough for these tests.
type ordersMock struct {
	mu    sync.Mutex
	items []map[string]types.AttributeValue // insertion order = creation order
}

func newOrdersMock() *ordersMock {
	return &ordersMock{}
}

func (m *ordersMock) find(orderID string) map[string]types.AttributeValue {
	for _, it := range m.items {
		if id, ok := it["order_id"].(*types.AttributeValueMemberS); ok && id.Value == orderID {
			return it
		}
	}
	return nil
}

func (m *ordersMock) PutItem(ctx context.Context, params *dyn.PutItemInput, optFns ...func(*dyn.Options)) (*dyn.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := params.Item["order_id"].(*types.AttributeValueMemberS)
	if !ok {
		return nil, errors.New("missing order_id")
	}
	if params.ConditionExpression != nil && *params.ConditionExpression == "attribute_not_exists(order_id)" {
		if m.find(id.Value) != nil {
			return nil, &types.ConditionalCheckFailedException{}
		}
	}
	m.items = append(m.items, params.Item)
	return &dyn.PutItemOutput{}, nil
}

func (m *ordersMock) GetItem(ctx context.Context, params *dyn.GetItemInput, optFns ...func(*dyn.Options)) (*dyn.GetItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := params.Key["order_id"].(*types.AttributeValueMemberS)
	if !ok {
		return nil, errors.New("missing key")
	}
	item := m.find(id.Value)
	if item == nil {
		return &dyn.GetItemOutput{}, nil
	}
	return &dyn.GetItemOutput{Item: item}, nil
}

func (m *ordersMock) UpdateItem(ctx context.Context, params *dyn.UpdateItemInput, optFns ...func(*dyn.Options)) (*dyn.UpdateItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := params.Key["order_id"].(*types.AttributeValueMemberS)
	if !ok {
		return nil, errors.New("missing key")
	}
	item := m.find(id.Value)
	if params.ConditionExpression != nil {
		switch *params.ConditionExpression {
		case "attribute_exists(order_id)":
			if item == nil {
				return nil, &types.ConditionalCheckFailedException{}
			}
		case "#s = :expected":
			if item == nil {
				return nil, &types.ConditionalCheckFailedException{}
			}
			expected := params.ExpressionAttributeValues[":expected"].(*types.AttributeValueMemberS)
			current, _ := item["status"].(*types.AttributeValueMemberS)
			if current == nil || current.Value != expected.Value {
				return nil, &types.ConditionalCheckFailedException{}
			}
		}
	}
	if item == nil {
		return nil, errors.New("item not found")
	}
	if v, ok := params.ExpressionAttributeValues[":new"]; ok {
		item["status"] = v
	}
	if v, ok := params.ExpressionAttributeValues[":ua"]; ok {
		item["updated_at"] = v
	}
	return &dyn.UpdateItemOutput{Attributes: item}, nil
}

func (m *ordersMock) DeleteItem(ctx context.Context, params *dyn.DeleteItemInput, optFns ...func(*dyn.Options)) (*dyn.DeleteItemOutput, error) {
	return nil, errors.New("not supported by mock")
}

// Query supports the table_key GSI only: newest first, like the real index
// sorted by created_at descending.
func (m *ordersMock) Query(ctx context.Context, params *dyn.QueryInput, optFns ...func(*dyn.Options)) (*dyn.QueryOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if params.IndexName == nil || *params.IndexName != TableIndexName {
		return nil, errors.New("mock only supports the table_key index")
	}
	tk, ok := params.ExpressionAttributeValues[":tk"].(*types.AttributeValueMemberS)
	if !ok {
		return nil, errors.New("missing :tk")
	}
	var out []map[string]types.AttributeValue
	for i := len(m.items) - 1; i >= 0; i-- {
		if k, ok := m.items[i]["table_key"].(*types.AttributeValueMemberS); ok && k.Value == tk.Value {
			out = append(out, m.items[i])
		}
	}
	return &dyn.QueryOutput{Items: out}, nil
}

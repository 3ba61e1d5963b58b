package catalog

import (
	"context"
	"errors"
	"strconv"
	"strings"

	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// catalogMock is an in-memory stand-in for the single-table catalog layout:
// items keyed by restaurant_id + sk, plus the item id counter row.
type catalogMock struct {
	items map[string]map[string]types.AttributeValue // "<rid>|<sk>" -> item
}

func newCatalogMock() *catalogMock {
	return &catalogMock{items: map[string]map[string]types.AttributeValue{}}
}

func compositeKey(attrs map[string]types.AttributeValue) (string, error) {
	rid, ok := attrs["restaurant_id"].(*types.AttributeValueMemberS)
	if !ok {
		return "", errors.New("missing restaurant_id")
	}
	sk, ok := attrs["sk"].(*types.AttributeValueMemberS)
	if !ok {
		return "", errors.New("missing sk")
	}
	return rid.Value + "|" + sk.Value, nil
}

func (m *catalogMock) PutItem(ctx context.Context, params *dyn.PutItemInput, optFns ...func(*dyn.Options)) (*dyn.PutItemOutput, error) {
	k, err := compositeKey(params.Item)
	if err != nil {
		return nil, err
	}
	m.items[k] = params.Item
	return &dyn.PutItemOutput{}, nil
}

func (m *catalogMock) GetItem(ctx context.Context, params *dyn.GetItemInput, optFns ...func(*dyn.Options)) (*dyn.GetItemOutput, error) {
	k, err := compositeKey(params.Key)
	if err != nil {
		return nil, err
	}
	item, ok := m.items[k]
	if !ok {
		return &dyn.GetItemOutput{}, nil
	}
	return &dyn.GetItemOutput{Item: item}, nil
}

func (m *catalogMock) DeleteItem(ctx context.Context, params *dyn.DeleteItemInput, optFns ...func(*dyn.Options)) (*dyn.DeleteItemOutput, error) {
	k, err := compositeKey(params.Key)
	if err != nil {
		return nil, err
	}
	delete(m.items, k)
	return &dyn.DeleteItemOutput{}, nil
}

// UpdateItem only serves the item id counter expression.
func (m *catalogMock) UpdateItem(ctx context.Context, params *dyn.UpdateItemInput, optFns ...func(*dyn.Options)) (*dyn.UpdateItemOutput, error) {
	k, err := compositeKey(params.Key)
	if err != nil {
		return nil, err
	}
	item, ok := m.items[k]
	if !ok {
		item = map[string]types.AttributeValue{
			"restaurant_id": params.Key["restaurant_id"],
			"sk":            params.Key["sk"],
			"next_id":       &types.AttributeValueMemberN{Value: "0"},
		}
		m.items[k] = item
	}
	n := item["next_id"].(*types.AttributeValueMemberN)
	next := incrementN(n.Value)
	item["next_id"] = &types.AttributeValueMemberN{Value: next}
	return &dyn.UpdateItemOutput{
		Attributes: map[string]types.AttributeValue{
			"next_id": &types.AttributeValueMemberN{Value: next},
		},
	}, nil
}

func (m *catalogMock) Query(ctx context.Context, params *dyn.QueryInput, optFns ...func(*dyn.Options)) (*dyn.QueryOutput, error) {
	rid, ok := params.ExpressionAttributeValues[":rid"].(*types.AttributeValueMemberS)
	if !ok {
		return nil, errors.New("missing :rid")
	}
	prefix, ok := params.ExpressionAttributeValues[":prefix"].(*types.AttributeValueMemberS)
	if !ok {
		return nil, errors.New("missing :prefix")
	}
	var out []map[string]types.AttributeValue
	for k, item := range m.items {
		if strings.HasPrefix(k, rid.Value+"|"+prefix.Value) {
			out = append(out, item)
		}
	}
	return &dyn.QueryOutput{Items: out}, nil
}

func incrementN(v string) string {
	n, _ := strconv.Atoi(v)
	return strconv.Itoa(n + 1)
}

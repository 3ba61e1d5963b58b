package tables

import (
	"context"
	"errors"
	"sort"
	"strconv"

	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// tablesMock is an in-memory stand-in for the tables table, keyed by
// restaurant_id + number and sorted by number like the real sort key.
type tablesMock struct {
	items map[string][]map[string]types.AttributeValue // restaurant_id -> rows
}

func newTablesMock() *tablesMock {
	return &tablesMock{items: map[string][]map[string]types.AttributeValue{}}
}

func attrNumber(attrs map[string]types.AttributeValue, name string) (int, error) {
	n, ok := attrs[name].(*types.AttributeValueMemberN)
	if !ok {
		return 0, errors.New("missing " + name)
	}
	return strconv.Atoi(n.Value)
}

func (m *tablesMock) find(restaurantID string, number int) map[string]types.AttributeValue {
	for _, row := range m.items[restaurantID] {
		if n, err := attrNumber(row, "number"); err == nil && n == number {
			return row
		}
	}
	return nil
}

func (m *tablesMock) PutItem(ctx context.Context, params *dyn.PutItemInput, optFns ...func(*dyn.Options)) (*dyn.PutItemOutput, error) {
	rid, ok := params.Item["restaurant_id"].(*types.AttributeValueMemberS)
	if !ok {
		return nil, errors.New("missing restaurant_id")
	}
	number, err := attrNumber(params.Item, "number")
	if err != nil {
		return nil, err
	}
	if params.ConditionExpression != nil && m.find(rid.Value, number) != nil {
		return nil, &types.ConditionalCheckFailedException{}
	}
	rows := append(m.items[rid.Value], params.Item)
	sort.Slice(rows, func(i, j int) bool {
		a, _ := attrNumber(rows[i], "number")
		b, _ := attrNumber(rows[j], "number")
		return a < b
	})
	m.items[rid.Value] = rows
	return &dyn.PutItemOutput{}, nil
}

func (m *tablesMock) GetItem(ctx context.Context, params *dyn.GetItemInput, optFns ...func(*dyn.Options)) (*dyn.GetItemOutput, error) {
	rid, ok := params.Key["restaurant_id"].(*types.AttributeValueMemberS)
	if !ok {
		return nil, errors.New("missing restaurant_id")
	}
	number, err := attrNumber(params.Key, "number")
	if err != nil {
		return nil, err
	}
	row := m.find(rid.Value, number)
	if row == nil {
		return &dyn.GetItemOutput{}, nil
	}
	return &dyn.GetItemOutput{Item: row}, nil
}

func (m *tablesMock) UpdateItem(ctx context.Context, params *dyn.UpdateItemInput, optFns ...func(*dyn.Options)) (*dyn.UpdateItemOutput, error) {
	rid, ok := params.Key["restaurant_id"].(*types.AttributeValueMemberS)
	if !ok {
		return nil, errors.New("missing restaurant_id")
	}
	number, err := attrNumber(params.Key, "number")
	if err != nil {
		return nil, err
	}
	row := m.find(rid.Value, number)
	if row == nil {
		return nil, &types.ConditionalCheckFailedException{}
	}
	if v, ok := params.ExpressionAttributeValues[":status"]; ok {
		row["status"] = v
	}
	return &dyn.UpdateItemOutput{}, nil
}

func (m *tablesMock) DeleteItem(ctx context.Context, params *dyn.DeleteItemInput, optFns ...func(*dyn.Options)) (*dyn.DeleteItemOutput, error) {
	rid, ok := params.Key["restaurant_id"].(*types.AttributeValueMemberS)
	if !ok {
		return nil, errors.New("missing restaurant_id")
	}
	number, err := attrNumber(params.Key, "number")
	if err != nil {
		return nil, err
	}
	rows := m.items[rid.Value][:0]
	for _, row := range m.items[rid.Value] {
		if n, _ := attrNumber(row, "number"); n == number {
			continue
		}
		rows = append(rows, row)
	}
	m.items[rid.Value] = rows
	return &dyn.DeleteItemOutput{}, nil
}

func (m *tablesMock) Query(ctx context.Context, params *dyn.QueryInput, optFns ...func(*dyn.Options)) (*dyn.QueryOutput, error) {
	rid, ok := params.ExpressionAttributeValues[":rid"].(*types.AttributeValueMemberS)
	if !ok {
		return nil, errors.New("missing :rid")
	}
	rows := m.items[rid.Value]
	out := make([]map[string]types.AttributeValue, len(rows))
	copy(out, rows)
	if params.ScanIndexForward != nil && !*params.ScanIndexForward {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	if params.Limit != nil && int(*params.Limit) < len(out) {
		out = out[:*params.Limit]
	}
	return &dyn.QueryOutput{Items: out}, nil
}

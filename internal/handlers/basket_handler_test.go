package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/gin-gonic/gin"

	"github.com/tabledine/tabledine/internal/basket"
	"github.com/tabledine/tabledine/internal/catalog"
	"github.com/tabledine/tabledine/internal/tables"
)

// checkoutMock is an in-memory stand-in for every table the checkout path
// touches: tables, catalog, orders (with the per-table GSI) and the basket
// kv table. Rows are keyed per logical table name.
type checkoutMock struct {
	rows          map[string]map[string]map[string]types.AttributeValue
	basketDeletes int
}

func newCheckoutMock() *checkoutMock {
	return &checkoutMock{rows: map[string]map[string]map[string]types.AttributeValue{}}
}

func (m *checkoutMock) table(name string) map[string]map[string]types.AttributeValue {
	if m.rows[name] == nil {
		m.rows[name] = map[string]map[string]types.AttributeValue{}
	}
	return m.rows[name]
}

// rowKey derives the mock's map key from whichever primary key the request
// carries.
func rowKey(attrs map[string]types.AttributeValue) (string, error) {
	if k, ok := attrs["kv_key"].(*types.AttributeValueMemberS); ok {
		return k.Value, nil
	}
	if k, ok := attrs["order_id"].(*types.AttributeValueMemberS); ok {
		return k.Value, nil
	}
	rid, ok := attrs["restaurant_id"].(*types.AttributeValueMemberS)
	if !ok {
		return "", errors.New("unrecognized key shape")
	}
	if sk, ok := attrs["sk"].(*types.AttributeValueMemberS); ok {
		return rid.Value + "|" + sk.Value, nil
	}
	if n, ok := attrs["number"].(*types.AttributeValueMemberN); ok {
		return rid.Value + "|" + n.Value, nil
	}
	return "", errors.New("unrecognized key shape")
}

func (m *checkoutMock) PutItem(ctx context.Context, params *dyn.PutItemInput, optFns ...func(*dyn.Options)) (*dyn.PutItemOutput, error) {
	k, err := rowKey(params.Item)
	if err != nil {
		return nil, err
	}
	m.table(*params.TableName)[k] = params.Item
	return &dyn.PutItemOutput{}, nil
}

func (m *checkoutMock) GetItem(ctx context.Context, params *dyn.GetItemInput, optFns ...func(*dyn.Options)) (*dyn.GetItemOutput, error) {
	k, err := rowKey(params.Key)
	if err != nil {
		return nil, err
	}
	row, ok := m.table(*params.TableName)[k]
	if !ok {
		return &dyn.GetItemOutput{}, nil
	}
	return &dyn.GetItemOutput{Item: row}, nil
}

func (m *checkoutMock) DeleteItem(ctx context.Context, params *dyn.DeleteItemInput, optFns ...func(*dyn.Options)) (*dyn.DeleteItemOutput, error) {
	k, err := rowKey(params.Key)
	if err != nil {
		return nil, err
	}
	if _, ok := params.Key["kv_key"]; ok {
		m.basketDeletes++
	}
	delete(m.table(*params.TableName), k)
	return &dyn.DeleteItemOutput{}, nil
}

func (m *checkoutMock) UpdateItem(ctx context.Context, params *dyn.UpdateItemInput, optFns ...func(*dyn.Options)) (*dyn.UpdateItemOutput, error) {
	k, err := rowKey(params.Key)
	if err != nil {
		return nil, err
	}
	row, ok := m.table(*params.TableName)[k]
	if !ok {
		return nil, &types.ConditionalCheckFailedException{}
	}
	if v, has := params.ExpressionAttributeValues[":new"]; has {
		row["status"] = v
	}
	return &dyn.UpdateItemOutput{}, nil
}

// Query serves the orders GSI only; checkout uses it for the
// duplicate-active-order guard.
func (m *checkoutMock) Query(ctx context.Context, params *dyn.QueryInput, optFns ...func(*dyn.Options)) (*dyn.QueryOutput, error) {
	tk, ok := params.ExpressionAttributeValues[":tk"].(*types.AttributeValueMemberS)
	if !ok {
		return nil, errors.New("mock only supports the table_key index")
	}
	var out []map[string]types.AttributeValue
	for _, row := range m.table(*params.TableName) {
		if k, ok := row["table_key"].(*types.AttributeValueMemberS); ok && k.Value == tk.Value {
			out = append(out, row)
		}
	}
	return &dyn.QueryOutput{Items: out}, nil
}

type stubSQS struct {
	err   error
	calls int
}

func (s *stubSQS) SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &sqs.SendMessageOutput{}, nil
}

// seedCheckout fills the mock with one table, one catalog item and a
// persisted one-line basket for rest-1 table 4.
func seedCheckout(t *testing.T, mock *checkoutMock, cfg HandlerConfig) {
	t.Helper()

	tbl, err := attributevalue.MarshalMap(tables.Table{
		ID: "tbl-1", RestaurantID: "rest-1", Number: 4,
		Status: tables.StatusOccupied, Capacity: 4,
	})
	if err != nil {
		t.Fatalf("marshal table: %v", err)
	}
	mock.table(cfg.TablesTable)["rest-1|4"] = tbl

	item, err := attributevalue.MarshalMap(catalog.MenuItem{
		ID: 1, RestaurantID: "rest-1", Name: "Margherita", Price: 9.5, IsAvailable: true,
	})
	if err != nil {
		t.Fatalf("marshal menu item: %v", err)
	}
	item["sk"] = &types.AttributeValueMemberS{Value: "ITEM#1"}
	mock.table(cfg.CatalogTable)["rest-1|ITEM#1"] = item

	lines := []basket.LineItem{
		{Item: basket.ItemRef{ItemID: 1, UnitPrice: 9.5}, Quantity: 2},
	}
	data, err := json.Marshal(lines)
	if err != nil {
		t.Fatalf("marshal basket: %v", err)
	}
	mock.table(cfg.BasketTable)[basketKey("rest-1", 4)] = map[string]types.AttributeValue{
		"kv_key":   &types.AttributeValueMemberS{Value: basketKey("rest-1", 4)},
		"kv_value": &types.AttributeValueMemberS{Value: string(data)},
	}
}

func checkoutRouter(mock *checkoutMock, sqsClient *stubSQS) (*gin.Engine, HandlerConfig) {
	gin.SetMode(gin.TestMode)
	cfg := HandlerConfig{
		DynamoDBClient: mock,
		SQSClient:      sqsClient,
		OrdersTable:    "orders",
		CatalogTable:   "catalog",
		TablesTable:    "tables",
		BasketTable:    "baskets",
		QueueURL:       "https://sqs.test/orders",
	}
	r := gin.New()
	RegisterBasketRoutes(r, cfg)
	return r, cfg
}

func postCheckout(r *gin.Engine) *httptest.ResponseRecorder {
	body := bytes.NewBufferString(`{"menu":"menu-1"}`)
	req := httptest.NewRequest(http.MethodPost, "/restaurants/rest-1/tables/4/basket/checkout", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCheckout_PublishFailureKeepsBasket(t *testing.T) {
	mock := newCheckoutMock()
	sqsClient := &stubSQS{err: errors.New("queue unavailable")}
	r, cfg := checkoutRouter(mock, sqsClient)
	seedCheckout(t, mock, cfg)

	w := postCheckout(r)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d: %s", w.Code, w.Body.String())
	}
	if sqsClient.calls != 1 {
		t.Fatalf("expected one publish attempt, got %d", sqsClient.calls)
	}
	if mock.basketDeletes != 0 {
		t.Fatalf("failed submission must not clear the basket, saw %d deletes", mock.basketDeletes)
	}
	row, ok := mock.table(cfg.BasketTable)[basketKey("rest-1", 4)]
	if !ok {
		t.Fatal("persisted basket vanished after failed checkout")
	}
	stored := row["kv_value"].(*types.AttributeValueMemberS).Value
	var lines []basket.LineItem
	if err := json.Unmarshal([]byte(stored), &lines); err != nil {
		t.Fatalf("unmarshal persisted basket: %v", err)
	}
	if len(lines) != 1 || lines[0].Quantity != 2 {
		t.Fatalf("persisted basket changed on failure: %+v", lines)
	}
}

func TestCheckout_SuccessClearsBasket(t *testing.T) {
	mock := newCheckoutMock()
	sqsClient := &stubSQS{}
	r, cfg := checkoutRouter(mock, sqsClient)
	seedCheckout(t, mock, cfg)

	w := postCheckout(r)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if mock.basketDeletes != 1 {
		t.Fatalf("expected the persisted basket to be cleared once, saw %d deletes", mock.basketDeletes)
	}
	if _, ok := mock.table(cfg.BasketTable)[basketKey("rest-1", 4)]; ok {
		t.Fatal("persisted basket should be gone after a successful checkout")
	}
	if len(mock.table(cfg.OrdersTable)) != 1 {
		t.Fatalf("expected one stored order, got %d", len(mock.table(cfg.OrdersTable)))
	}
	for _, row := range mock.table(cfg.OrdersTable) {
		status := row["status"].(*types.AttributeValueMemberS).Value
		if status != "Pending" {
			t.Fatalf("expected Pending order, got %q", status)
		}
		n, _ := strconv.Atoi(row["table_number"].(*types.AttributeValueMemberN).Value)
		if n != 4 {
			t.Fatalf("expected table 4, got %d", n)
		}
	}
}

package orders

import (
	"context"
	"errors"
	"testing"
	"time"
)

func testOrder(id string, tableNumber int, status string) Order {
	return Order{
		OrderID:      id,
		RestaurantID: "rest-1",
		TableID:      "tbl-uuid",
		TableNumber:  tableNumber,
		Status:       status,
		Items: []OrderItem{
			{MenuItemID: 10, Quantity: 2},
		},
	}
}

func TestStore_CreateAndGet(t *testing.T) {
	mock := newOrdersMock()
	s := NewStore(mock, "orders-table")
	ctx := context.Background()

	if err := s.Create(ctx, testOrder("order-1", 3, StatusPending)); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := s.Get(ctx, "order-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil {
		t.Fatal("expected order, got nil")
	}
	if got.Status != StatusPending || got.TableNumber != 3 {
		t.Fatalf("unexpected order: %+v", got)
	}
	if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
		t.Fatalf("timestamps not set: %+v", got)
	}
	if got.TableKey != TableKey("rest-1", 3) {
		t.Fatalf("table key not derived: %q", got.TableKey)
	}
}

func TestStore_CreateDuplicateID(t *testing.T) {
	mock := newOrdersMock()
	s := NewStore(mock, "orders-table")
	ctx := context.Background()

	if err := s.Create(ctx, testOrder("order-1", 1, StatusPending)); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := s.Create(ctx, testOrder("order-1", 1, StatusPending)); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestStore_GetMissingReturnsNilNil(t *testing.T) {
	s := NewStore(newOrdersMock(), "orders-table")
	got, err := s.Get(context.Background(), "nope")
	if err != nil || got != nil {
		t.Fatalf("expected (nil, nil), got (%+v, %v)", got, err)
	}
}

func TestStore_UpdateStatusConditional(t *testing.T) {
	mock := newOrdersMock()
	s := NewStore(mock, "orders-table")
	s.nowFunc = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	if err := s.Create(ctx, testOrder("order-1", 1, StatusPending)); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := s.UpdateStatus(ctx, "order-1", StatusPending, StatusInProgress); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	// repeating the same transition must fail the condition
	err := s.UpdateStatus(ctx, "order-1", StatusPending, StatusInProgress)
	if !errors.Is(err, ErrStatusMismatch) {
		t.Fatalf("expected ErrStatusMismatch, got %v", err)
	}

	got, err := s.Get(ctx, "order-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != StatusInProgress {
		t.Fatalf("expected In Progress, got %q", got.Status)
	}
}

func TestStore_SetStatusUnknownOrder(t *testing.T) {
	s := NewStore(newOrdersMock(), "orders-table")
	err := s.SetStatus(context.Background(), "nope", StatusCancelled)
	if !errors.Is(err, ErrStatusMismatch) {
		t.Fatalf("expected ErrStatusMismatch for unknown order, got %v", err)
	}
}

func TestStore_RecentByTableNewestFirst(t *testing.T) {
	mock := newOrdersMock()
	s := NewStore(mock, "orders-table")
	ctx := context.Background()

	for _, o := range []Order{
		testOrder("order-1", 2, StatusCompleted),
		testOrder("order-2", 2, StatusPending),
		testOrder("other-table", 5, StatusPending),
	} {
		if err := s.Create(ctx, o); err != nil {
			t.Fatalf("Create %s: %v", o.OrderID, err)
		}
	}

	recent, err := s.RecentByTable(ctx, "rest-1", 2)
	if err != nil {
		t.Fatalf("RecentByTable: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 orders for table 2, got %d", len(recent))
	}
	if recent[0].OrderID != "order-2" {
		t.Fatalf("expected newest order first, got %q", recent[0].OrderID)
	}
}

func TestStore_HasActiveOrder(t *testing.T) {
	mock := newOrdersMock()
	s := NewStore(mock, "orders-table")
	ctx := context.Background()

	if err := s.Create(ctx, testOrder("order-1", 2, StatusCompleted)); err != nil {
		t.Fatalf("Create: %v", err)
	}
	active, err := s.HasActiveOrder(ctx, "rest-1", 2)
	if err != nil {
		t.Fatalf("HasActiveOrder: %v", err)
	}
	if active {
		t.Fatal("completed orders must not count as active")
	}

	if err := s.Create(ctx, testOrder("order-2", 2, StatusPending)); err != nil {
		t.Fatalf("Create: %v", err)
	}
	active, err = s.HasActiveOrder(ctx, "rest-1", 2)
	if err != nil {
		t.Fatalf("HasActiveOrder: %v", err)
	}
	if !active {
		t.Fatal("pending order must count as active")
	}
}

package orders

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/tabledine/tabledine/internal/basket"
	"github.com/tabledine/tabledine/internal/tables"
)

// ErrMissingContext means the routing context required for a submission
// (restaurant, table number, menu) is incomplete.
var ErrMissingContext = errors.New("restaurant, table number and menu are required")

// ErrTableNotFound means the human-facing table number has no backing record.
var ErrTableNotFound = errors.New("table not found for submission")

// ErrEmptyBasket means there is nothing to submit.
var ErrEmptyBasket = errors.New("basket is empty")

// InvalidLineItemError names a basket line that cannot be translated into an
// order item. It indicates a programming error upstream, not user input.
type InvalidLineItemError struct {
	ItemID int
	Reason string
}

func (e *InvalidLineItemError) Error() string {
	return fmt.Sprintf("invalid line item %d: %s", e.ItemID, e.Reason)
}

// TableResolver maps a human-facing table number to the backing table record.
type TableResolver interface {
	Resolve(ctx context.Context, restaurantID string, number int) (*tables.Table, error)
}

// Submission is the validated wire payload for order creation.
type Submission struct {
	RestaurantID string           `json:"restaurant"`
	TableID      string           `json:"table"`
	TableNumber  int              `json:"table_number"`
	MenuID       string           `json:"menu,omitempty"`
	OrderItems   []SubmissionItem `json:"order_items"`
}

// SubmissionItem is one translated order line.
type SubmissionItem struct {
	MenuItemID        int    `json:"menu_item"`
	Quantity          int    `json:"quantity"`
	SelectedChoiceIDs []int  `json:"selected_options"`
	SpecialRequest    string `json:"special_request"`
}

// Translate converts a basket plus its table context into a Submission.
// It rejects the whole submission on the first invalid line item and never
// mutates the basket, so a failed attempt can be corrected and retried.
// Clearing the basket after a successful network submission is the caller's
// job.
func Translate(ctx context.Context, b *basket.Basket, restaurantID string, tableNumber int, menuID string, resolver TableResolver) (*Submission, error) {
	if restaurantID == "" || tableNumber <= 0 || menuID == "" {
		return nil, ErrMissingContext
	}

	table, err := resolver.Resolve(ctx, restaurantID, tableNumber)
	if err != nil {
		if errors.Is(err, tables.ErrNotFound) {
			return nil, fmt.Errorf("%w: restaurant %s table %d", ErrTableNotFound, restaurantID, tableNumber)
		}
		return nil, fmt.Errorf("resolve table: %w", err)
	}

	lines := b.Items()
	if len(lines) == 0 {
		return nil, ErrEmptyBasket
	}

	items := make([]SubmissionItem, 0, len(lines))
	for _, li := range lines {
		if li.Item.ItemID <= 0 {
			return nil, &InvalidLineItemError{ItemID: li.Item.ItemID, Reason: "catalog item id must be a positive integer"}
		}
		if li.Quantity <= 0 {
			return nil, &InvalidLineItemError{ItemID: li.Item.ItemID, Reason: fmt.Sprintf("quantity must be positive, got %d", li.Quantity)}
		}
		items = append(items, SubmissionItem{
			MenuItemID:        li.Item.ItemID,
			Quantity:          li.Quantity,
			SelectedChoiceIDs: choiceIDs(li.SelectedOptions),
			SpecialRequest:    li.SpecialRequest,
		})
	}

	return &Submission{
		RestaurantID: restaurantID,
		TableID:      table.ID,
		TableNumber:  tableNumber,
		MenuID:       menuID,
		OrderItems:   items,
	}, nil
}

// choiceIDs collects the chosen choice ids in option-group name order so the
// output is deterministic. Entries with no id are skipped, mirroring the
// defensive filtering the ordering endpoint expects.
func choiceIDs(opts map[string]basket.SelectedOption) []int {
	names := make([]string, 0, len(opts))
	for name := range opts {
		names = append(names, name)
	}
	sort.Strings(names)

	ids := make([]int, 0, len(names))
	for _, name := range names {
		if opts[name].ChoiceID == 0 {
			continue
		}
		ids = append(ids, opts[name].ChoiceID)
	}
	return ids
}

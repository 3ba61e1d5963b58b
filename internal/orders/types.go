package orders

import "time"

// Order statuses. The customer-facing poller mirrors these strings verbatim;
// transition legality is enforced only where status is written.
const (
	StatusPending    = "Pending"
	StatusInProgress = "In Progress"
	StatusCompleted  = "Completed"
	StatusCancelled  = "Cancelled"
)

// OrderItem is one line of a placed order.
type OrderItem struct {
	MenuItemID        int     `json:"menu_item" dynamodbav:"menu_item"`
	MenuItemName      string  `json:"menu_item_name,omitempty" dynamodbav:"menu_item_name,omitempty"`
	Quantity          int     `json:"quantity" dynamodbav:"quantity"`
	SelectedChoiceIDs []int   `json:"selected_options,omitempty" dynamodbav:"selected_options,omitempty"`
	SpecialRequest    string  `json:"special_request,omitempty" dynamodbav:"special_request,omitempty"`
	TotalPrice        float64 `json:"total_price,omitempty" dynamodbav:"total_price,omitempty"`
}

// Order represents the item stored in the orders DynamoDB table.
type Order struct {
	OrderID        string      `json:"id" dynamodbav:"order_id"` // PK
	RestaurantID   string      `json:"restaurant" dynamodbav:"restaurant_id"`
	TableID        string      `json:"table" dynamodbav:"table_id"`
	TableNumber    int         `json:"table_number" dynamodbav:"table_number"`
	MenuID         string      `json:"menu,omitempty" dynamodbav:"menu_id,omitempty"`
	Status         string      `json:"status" dynamodbav:"status"`
	AdditionalInfo string      `json:"additional_info,omitempty" dynamodbav:"additional_info,omitempty"`
	Items          []OrderItem `json:"items" dynamodbav:"items"`
	CreatedAt      time.Time   `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at" dynamodbav:"updated_at"`

	// TableKey is the GSI partition key for per-table queries:
	// "<restaurant_id>#<table_number>".
	TableKey string `json:"-" dynamodbav:"table_key"`
}

// Active reports whether the order still occupies its table.
func (o *Order) Active() bool {
	return o.Status == StatusPending || o.Status == StatusInProgress
}

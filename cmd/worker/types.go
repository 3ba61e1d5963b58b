package main

// OrderPlacedMessage is the payload sent from API -> SQS -> Worker when a
// customer order is created.
type OrderPlacedMessage struct {
	OrderID       string `json:"order_id"`
	RestaurantID  string `json:"restaurant"`
	TableNumber   int    `json:"table_number"`
	CorrelationID string `json:"correlation_id,omitempty"`
}

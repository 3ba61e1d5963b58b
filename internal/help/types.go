package help

import "time"

// Help request statuses
const (
	StatusPending  = "Pending"
	StatusAccepted = "Accepted"
	StatusResolved = "Resolved"
	StatusDeclined = "Declined"
)

// Request is a call for staff attention raised from a table.
type Request struct {
	ID           string    `json:"id" dynamodbav:"request_id"` // PK
	RestaurantID string    `json:"restaurant" dynamodbav:"restaurant_id"`
	TableNumber  int       `json:"table_number" dynamodbav:"table_number"`
	Description  string    `json:"description,omitempty" dynamodbav:"description,omitempty"`
	Status       string    `json:"status" dynamodbav:"status"`
	Response     string    `json:"response,omitempty" dynamodbav:"response,omitempty"`
	CreatedAt    time.Time `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" dynamodbav:"updated_at"`
}

// ValidStatus reports whether s is one of the known statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusAccepted, StatusResolved, StatusDeclined:
		return true
	}
	return false
}

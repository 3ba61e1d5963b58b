package tables

// Table statuses
const (
	StatusAvailable = "Available"
	StatusOccupied  = "Occupied"
	StatusReserved  = "Reserved"
)

// DefaultCapacity is assigned when a table is created without one.
const DefaultCapacity = 4

// Table is one physical table of a restaurant. ID is the internal identifier
// orders reference; Number is the human-facing 1-based number printed next to
// the QR code, unique per restaurant.
type Table struct {
	ID           string `json:"id" dynamodbav:"id"`
	RestaurantID string `json:"restaurant" dynamodbav:"restaurant_id"`
	Number       int    `json:"number" dynamodbav:"number"`
	Status       string `json:"status" dynamodbav:"status"`
	Capacity     int    `json:"capacity" dynamodbav:"capacity"`
}

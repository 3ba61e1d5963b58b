package validation

// OrderItemRequest is a single line of an order creation payload.
type OrderItemRequest struct {
	MenuItem        int    `json:"menu_item" validate:"required,gt=0"`               // catalog item id
	Quantity        int    `json:"quantity" validate:"required,min=1"`               // must be >= 1
	SelectedOptions []int  `json:"selected_options,omitempty" validate:"omitempty,dive,gt=0"` // choice ids
	SpecialRequest  string `json:"special_request,omitempty"`
}

// CreateOrderRequest is the payload for POST /orders.
type CreateOrderRequest struct {
	Restaurant     string             `json:"restaurant" validate:"required"`
	TableNumber    int                `json:"table_number" validate:"required,min=1"`
	Menu           string             `json:"menu" validate:"required"`
	AdditionalInfo string             `json:"additional_info,omitempty"`
	Items          []OrderItemRequest `json:"items" validate:"required,min=1,dive"` // at least one item
}

// SelectedOptionRequest is one chosen choice, keyed by its option-group name
// in the enclosing map.
type SelectedOptionRequest struct {
	ID int `json:"id" validate:"required,gt=0"`
}

// AddBasketItemRequest adds a catalog item to a table's basket. Prices are
// never taken from the client; the handler pins them from the catalog.
type AddBasketItemRequest struct {
	ItemID          int                              `json:"item_id" validate:"required,gt=0"`
	Menu            string                           `json:"menu,omitempty"`
	Quantity        int                              `json:"quantity,omitempty"` // <= 0 is coerced to 1
	SelectedOptions map[string]SelectedOptionRequest `json:"selected_options,omitempty" validate:"omitempty,dive"`
	SpecialRequest  string                           `json:"special_request,omitempty"`
}

// UpdateBasketItemRequest changes the quantity of an existing basket line,
// identified by item id plus selected options.
type UpdateBasketItemRequest struct {
	ItemID          int                              `json:"item_id" validate:"required,gt=0"`
	SelectedOptions map[string]SelectedOptionRequest `json:"selected_options,omitempty" validate:"omitempty,dive"`
	Quantity        int                              `json:"quantity" validate:"required,min=1"`
}

// RemoveBasketItemRequest deletes a basket line by identity.
type RemoveBasketItemRequest struct {
	ItemID          int                              `json:"item_id" validate:"required,gt=0"`
	SelectedOptions map[string]SelectedOptionRequest `json:"selected_options,omitempty" validate:"omitempty,dive"`
}

// CheckoutRequest turns a table's basket into an order.
type CheckoutRequest struct {
	Menu           string `json:"menu" validate:"required"`
	AdditionalInfo string `json:"additional_info,omitempty"`
}

// CreateMenuRequest adds a menu to a restaurant.
type CreateMenuRequest struct {
	Name     string `json:"name" validate:"required"`
	Language string `json:"language,omitempty"`
}

// CreateCategoryRequest adds a display category.
type CreateCategoryRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
}

// ChoiceRequest is one selectable value in an option group.
type ChoiceRequest struct {
	ID            int     `json:"id" validate:"required,gt=0"`
	Name          string  `json:"name" validate:"required"`
	PriceModifier float64 `json:"price_modifier,omitempty"`
}

// OptionGroupRequest is one customization axis of a menu item.
type OptionGroupRequest struct {
	ID      int             `json:"id" validate:"required,gt=0"`
	Name    string          `json:"name" validate:"required"`
	Choices []ChoiceRequest `json:"choices,omitempty" validate:"omitempty,dive"`
}

// MenuItemRequest creates or replaces a menu item.
type MenuItemRequest struct {
	Name        string               `json:"name" validate:"required"`
	Description string               `json:"description,omitempty"`
	Price       float64              `json:"price" validate:"required,gt=0"`
	Menu        string               `json:"menu,omitempty"`
	Category    string               `json:"category,omitempty"`
	ImageURL    string               `json:"image_url,omitempty"`
	IsAvailable *bool                `json:"is_available,omitempty"` // defaults to true
	Options     []OptionGroupRequest `json:"options,omitempty" validate:"omitempty,dive"`
}

// CreateTableRequest adds a table; the number is assigned server-side.
type CreateTableRequest struct {
	Capacity int `json:"capacity,omitempty" validate:"omitempty,gt=0"`
}

// UpdateTableStatusRequest changes a table's occupancy status.
type UpdateTableStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// UpdateOrderStatusRequest is the staff-side status edit.
type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// CreateHelpRequest raises a help request from a table.
type CreateHelpRequest struct {
	Restaurant  string `json:"restaurant" validate:"required"`
	TableNumber int    `json:"table_number" validate:"required,min=1"`
	Description string `json:"description,omitempty"`
}

// RespondHelpRequest is the staff-side status/response edit.
type RespondHelpRequest struct {
	Status   string `json:"status" validate:"required"`
	Response string `json:"response,omitempty"`
}

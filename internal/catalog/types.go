package catalog

// Choice is one selectable value of an option group, with an additive price
// modifier (e.g. "Large" +1.50).
type Choice struct {
	ID            int     `json:"id" dynamodbav:"id"`
	Name          string  `json:"name" dynamodbav:"name"`
	PriceModifier float64 `json:"price_modifier" dynamodbav:"price_modifier"`
}

// OptionGroup is a named customization axis of a menu item (e.g. "Size").
type OptionGroup struct {
	ID      int      `json:"id" dynamodbav:"id"`
	Name    string   `json:"name" dynamodbav:"name"`
	Choices []Choice `json:"choices,omitempty" dynamodbav:"choices,omitempty"`
}

// Menu is one published menu of a restaurant. Restaurants may expose several
// language-specific menus concurrently.
type Menu struct {
	ID           string `json:"id" dynamodbav:"id"`
	RestaurantID string `json:"restaurant" dynamodbav:"restaurant_id"`
	Name         string `json:"name" dynamodbav:"name"`
	Language     string `json:"language,omitempty" dynamodbav:"language,omitempty"`
}

// Category groups menu items for display.
type Category struct {
	ID           string `json:"id" dynamodbav:"id"`
	RestaurantID string `json:"restaurant" dynamodbav:"restaurant_id"`
	Name         string `json:"name" dynamodbav:"name"`
	Description  string `json:"description,omitempty" dynamodbav:"description,omitempty"`
	ImageURL     string `json:"image_url,omitempty" dynamodbav:"image_url,omitempty"`
}

// MenuItem is a purchasable catalog item. IDs are numeric and allocated once
// per restaurant; they stay stable across edits so baskets and orders can
// reference them.
type MenuItem struct {
	ID           int           `json:"id" dynamodbav:"id"`
	RestaurantID string        `json:"restaurant" dynamodbav:"restaurant_id"`
	MenuID       string        `json:"menu,omitempty" dynamodbav:"menu_id,omitempty"`
	CategoryID   string        `json:"category,omitempty" dynamodbav:"category_id,omitempty"`
	Name         string        `json:"name" dynamodbav:"name"`
	Description  string        `json:"description,omitempty" dynamodbav:"description,omitempty"`
	Price        float64       `json:"price" dynamodbav:"price"`
	ImageURL     string        `json:"image_url,omitempty" dynamodbav:"image_url,omitempty"`
	IsAvailable  bool          `json:"is_available" dynamodbav:"is_available"`
	Options      []OptionGroup `json:"options,omitempty" dynamodbav:"options,omitempty"`
}

// Choice returns the choice with the given id across all option groups,
// or nil when the item has no such choice.
func (mi *MenuItem) Choice(choiceID int) *Choice {
	for gi := range mi.Options {
		for ci := range mi.Options[gi].Choices {
			if mi.Options[gi].Choices[ci].ID == choiceID {
				return &mi.Options[gi].Choices[ci]
			}
		}
	}
	return nil
}

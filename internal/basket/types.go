package basket

// SelectedOption is one chosen choice within an option group.
type SelectedOption struct {
	ChoiceID      int     `json:"choice_id"`
	ChoiceName    string  `json:"choice_name,omitempty"`
	PriceModifier float64 `json:"price_modifier"`
}

// ItemRef identifies a purchasable catalog item. UnitPrice is fixed at
// add-time so later menu edits do not reprice a basket mid-session.
type ItemRef struct {
	ItemID    int     `json:"item_id"`
	UnitPrice float64 `json:"unit_price"`
	MenuID    string  `json:"menu_id,omitempty"`
}

// LineItem is one basket entry: a catalog item, the chosen options keyed by
// option-group name (at most one choice per group), and a quantity.
type LineItem struct {
	Item            ItemRef                   `json:"item"`
	SelectedOptions map[string]SelectedOption `json:"selected_options,omitempty"`
	Quantity        int                       `json:"quantity"`
	SpecialRequest  string                    `json:"special_request,omitempty"`
}

// UnitPriceWithOptions is the base price plus all option modifiers.
func (li LineItem) UnitPriceWithOptions() float64 {
	price := li.Item.UnitPrice
	for _, opt := range li.SelectedOptions {
		price += opt.PriceModifier
	}
	return price
}

// LineTotal is the option-adjusted unit price times quantity.
func (li LineItem) LineTotal() float64 {
	return li.UnitPriceWithOptions() * float64(li.Quantity)
}

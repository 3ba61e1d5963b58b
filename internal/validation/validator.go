package validation

import (
	"fmt"

	validatorv10 "github.com/go-playground/validator/v10"
)

// New returns a configured validator with custom struct-level validation registered.
func New() *validatorv10.Validate {
	v := validatorv10.New()

	// register struct-level validation for CreateOrderRequest to reject
	// duplicate choice selections within a single order line.
	v.RegisterStructValidation(createOrderStructValidation, CreateOrderRequest{})

	return v
}

// createOrderStructValidation verifies no order line selects the same choice twice.
func createOrderStructValidation(sl validatorv10.StructLevel) {
	req := sl.Current().Interface().(CreateOrderRequest)

	for i, item := range req.Items {
		seen := make(map[int]bool, len(item.SelectedOptions))
		for _, choiceID := range item.SelectedOptions {
			if seen[choiceID] {
				sl.ReportError(item.SelectedOptions, fmt.Sprintf("items[%d].selected_options", i),
					"SelectedOptions", "unique_choices", fmt.Sprintf("choice %d selected twice", choiceID))
				break
			}
			seen[choiceID] = true
		}
	}
}

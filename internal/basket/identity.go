package basket

import (
	"sort"
	"strconv"
	"strings"
)

// IdentityKey returns the canonical identity of a line item: the catalog item
// id plus its selected options serialized in option-group name order. Two
// line items whose options were selected in a different order share a key.
func (li LineItem) IdentityKey() string {
	names := make([]string, 0, len(li.SelectedOptions))
	for name := range li.SelectedOptions {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(strconv.Itoa(li.Item.ItemID))
	for _, name := range names {
		b.WriteByte('|')
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(strconv.Itoa(li.SelectedOptions[name].ChoiceID))
	}
	return b.String()
}

// SameConfiguration reports whether two line items represent the same
// orderable configuration. Pure; quantity plays no part in identity.
func SameConfiguration(a, b LineItem) bool {
	return a.IdentityKey() == b.IdentityKey()
}

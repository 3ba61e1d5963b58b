package basket

// Basket is the in-progress, unsubmitted set of chosen items for one table
// session. It has a single owner and is not safe for concurrent use.
// Subscribers are invoked synchronously after every mutation.
type Basket struct {
	lines       []LineItem
	subscribers []func(lines []LineItem)
}

// New returns an empty basket.
func New() *Basket {
	return &Basket{}
}

// Subscribe registers fn to run after every mutation with a snapshot of the
// current line items. Used to mirror the basket into durable storage without
// coupling the aggregate to I/O.
func (b *Basket) Subscribe(fn func(lines []LineItem)) {
	b.subscribers = append(b.subscribers, fn)
}

func (b *Basket) notify() {
	if len(b.subscribers) == 0 {
		return
	}
	snapshot := b.Items()
	for _, fn := range b.subscribers {
		fn(snapshot)
	}
}

// Add merges item into an existing line with the same identity key, adding
// quantities, or appends it. A zero or negative incoming quantity is coerced
// to 1. Never fails.
func (b *Basket) Add(item LineItem) {
	if item.Quantity <= 0 {
		item.Quantity = 1
	}
	key := item.IdentityKey()
	for i := range b.lines {
		if b.lines[i].IdentityKey() == key {
			b.lines[i].Quantity += item.Quantity
			b.notify()
			return
		}
	}
	b.lines = append(b.lines, item)
	b.notify()
}

// UpdateQuantity sets the quantity of the line matching target's identity
// key. Requests for a quantity of zero or less are ignored: dropping a line
// goes through Remove, never through a zero update.
func (b *Basket) UpdateQuantity(target LineItem, quantity int) {
	if quantity <= 0 {
		return
	}
	key := target.IdentityKey()
	for i := range b.lines {
		if b.lines[i].IdentityKey() == key {
			b.lines[i].Quantity = quantity
			b.notify()
			return
		}
	}
}

// Remove deletes every line matching target's identity key. By construction
// there is at most one.
func (b *Basket) Remove(target LineItem) {
	key := target.IdentityKey()
	kept := b.lines[:0]
	removed := false
	for _, li := range b.lines {
		if li.IdentityKey() == key {
			removed = true
			continue
		}
		kept = append(kept, li)
	}
	b.lines = kept
	if removed {
		b.notify()
	}
}

// Clear empties the basket. Used after a confirmed order placement.
func (b *Basket) Clear() {
	if len(b.lines) == 0 {
		return
	}
	b.lines = nil
	b.notify()
}

// Items returns a copy of the line items in insertion order.
func (b *Basket) Items() []LineItem {
	out := make([]LineItem, len(b.lines))
	copy(out, b.lines)
	return out
}

// Len returns the number of distinct lines.
func (b *Basket) Len() int {
	return len(b.lines)
}

// Total sums the line totals. Recomputed on every read so option price
// changes can never leave a stale cached value behind.
func (b *Basket) Total() float64 {
	var total float64
	for _, li := range b.lines {
		total += li.LineTotal()
	}
	return total
}

// replace swaps in hydrated lines without notifying subscribers, so loading
// persisted state does not immediately write it back.
func (b *Basket) replace(lines []LineItem) {
	b.lines = lines
}

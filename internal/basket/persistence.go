package basket

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/tabledine/tabledine/internal/kv"
)

// StorageKey is the default key the basket is mirrored under.
const StorageKey = "basket"

// Persistence mirrors a basket into a kv.Store after every mutation and
// hydrates it at startup. Storage failures never reach the aggregate: writes
// are logged and dropped, corrupt persisted data is discarded and the session
// starts with an empty basket.
type Persistence struct {
	store kv.Store
	key   string
	log   *slog.Logger
}

// NewPersistence returns a persistence adapter writing under key, or
// StorageKey when key is empty.
func NewPersistence(store kv.Store, key string, log *slog.Logger) *Persistence {
	if key == "" {
		key = StorageKey
	}
	if log == nil {
		log = slog.Default()
	}
	return &Persistence{store: store, key: key, log: log}
}

// Attach subscribes the adapter to b so every mutation is mirrored to storage.
func (p *Persistence) Attach(b *Basket) {
	b.Subscribe(func(lines []LineItem) {
		data, err := json.Marshal(lines)
		if err != nil {
			p.log.Error("marshal basket", "key", p.key, "error", err)
			return
		}
		if err := p.store.Set(context.Background(), p.key, string(data)); err != nil {
			p.log.Warn("basket persist failed", "key", p.key, "error", err)
		}
	})
}

// Hydrate loads persisted line items into b. Missing or corrupt data is the
// ignore-and-fallback path: b stays empty and no error escapes.
func (p *Persistence) Hydrate(ctx context.Context, b *Basket) {
	raw, ok, err := p.store.Get(ctx, p.key)
	if err != nil {
		p.log.Warn("basket hydrate failed, starting empty", "key", p.key, "error", err)
		return
	}
	if !ok {
		return
	}
	var lines []LineItem
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		p.log.Warn("discarding corrupt persisted basket", "key", p.key, "error", err)
		return
	}
	b.replace(lines)
}

// Clear removes the persisted copy. Called alongside Basket.Clear once an
// order has been accepted.
func (p *Persistence) Clear(ctx context.Context) error {
	return p.store.Remove(ctx, p.key)
}

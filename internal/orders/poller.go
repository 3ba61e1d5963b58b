package orders

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultPollInterval matches the customer UI's refresh cadence.
const DefaultPollInterval = 10 * time.Second

// StatusFetcher returns the recent orders of a restaurant+table pair, most
// recent first. *Store satisfies it via RecentByTable.
type StatusFetcher interface {
	RecentByTable(ctx context.Context, restaurantID string, tableNumber int) ([]Order, error)
}

// Snapshot is what a poller subscription observes on each successful fetch.
// HasOrder is false when the table has no orders; Status then carries the
// last known status so the display does not regress.
type Snapshot struct {
	Status   string
	HasOrder bool
	Order    *Order
}

// Poller re-fetches the latest order for one restaurant+table on a fixed
// interval and pushes snapshots to onUpdate. Fetch errors are logged and
// swallowed: the previous status stays on display and the next tick retries.
// Start issues an immediate fetch before the first tick. The caller owns the
// handle and must call Stop exactly once on teardown; a fetch already in
// flight when Stop lands is simply discarded.
type Poller struct {
	fetcher      StatusFetcher
	restaurantID string
	tableNumber  int
	interval     time.Duration
	onUpdate     func(Snapshot)
	log          *slog.Logger

	lastStatus string
	started    bool
	stopOnce   sync.Once
	done       chan struct{}
	finished   chan struct{}
}

// NewPoller builds a poller for one restaurant+table subscription.
// interval <= 0 falls back to DefaultPollInterval.
func NewPoller(fetcher StatusFetcher, restaurantID string, tableNumber int, interval time.Duration, onUpdate func(Snapshot), log *slog.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if log == nil {
		log = slog.Default()
	}
	return &Poller{
		fetcher:      fetcher,
		restaurantID: restaurantID,
		tableNumber:  tableNumber,
		interval:     interval,
		onUpdate:     onUpdate,
		log:          log,
		done:         make(chan struct{}),
		finished:     make(chan struct{}),
	}
}

// Start begins polling in its own goroutine: one immediate fetch, then one
// per tick until Stop.
func (p *Poller) Start(ctx context.Context) {
	p.started = true
	go p.run(ctx)
}

// Stop cancels the subscription. Safe to call once per the ownership
// contract; extra calls are no-ops, as is stopping a poller that was never
// started. After a Start, Stop blocks until the polling goroutine has exited
// so no update can arrive after Stop returns.
func (p *Poller) Stop() {
	p.stopOnce.Do(func() { close(p.done) })
	if !p.started {
		return
	}
	<-p.finished
}

func (p *Poller) run(ctx context.Context) {
	defer close(p.finished)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.poll(ctx)
	for {
		select {
		case <-p.done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

func (p *Poller) poll(ctx context.Context) {
	recent, err := p.fetcher.RecentByTable(ctx, p.restaurantID, p.tableNumber)
	if err != nil {
		// Transient failures are invisible to the user; the next tick retries.
		p.log.Warn("order status fetch failed",
			"restaurant", p.restaurantID, "table_number", p.tableNumber, "error", err)
		return
	}

	select {
	case <-p.done:
		// stopped while the fetch was in flight; discard the response
		return
	default:
	}

	if len(recent) == 0 {
		p.onUpdate(Snapshot{Status: p.lastStatus, HasOrder: false})
		return
	}
	latest := recent[0]
	p.lastStatus = latest.Status
	p.onUpdate(Snapshot{Status: latest.Status, HasOrder: true, Order: &latest})
}

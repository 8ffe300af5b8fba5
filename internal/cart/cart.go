package cart

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/funnelcart/internal/catalog"
	"github.com/angelmondragon/funnelcart/internal/discount"
	"github.com/angelmondragon/funnelcart/internal/history"
	"github.com/angelmondragon/funnelcart/internal/profile"
	"github.com/angelmondragon/funnelcart/pkg/enums"
	pkgerrors "github.com/angelmondragon/funnelcart/pkg/errors"
	"github.com/angelmondragon/funnelcart/pkg/logger"
	"github.com/angelmondragon/funnelcart/pkg/metrics"
	"github.com/angelmondragon/funnelcart/pkg/money"
)

// Line is one cart entry. A line is identified by (PackageID, IsUpsell);
// adding the same identity merges quantities instead of appending.
type Line struct {
	ID                string          `json:"id"`
	PackageID         int             `json:"package_id"`
	Quantity          int             `json:"quantity"`
	IsUpsell          bool            `json:"is_upsell"`
	OriginalPackageID *int            `json:"original_package_id,omitempty"`
	UnitTotal         decimal.Decimal `json:"unit_total"`
	RetailTotal       decimal.Decimal `json:"retail_total"`
	Subtotal          decimal.Decimal `json:"subtotal"`
	Discount          decimal.Decimal `json:"discount"`
	FinalTotal        decimal.Decimal `json:"final_total"`
}

// ShippingMethod is the selected fulfillment option; its price flows into
// the totals' shipping component.
type ShippingMethod struct {
	RefID int             `json:"ref_id"`
	Code  string          `json:"code"`
	Price decimal.Decimal `json:"price"`
}

// Totals is the reconciled money breakdown for the current ledger.
type Totals struct {
	Subtotal          money.Amount    `json:"subtotal"`
	Discounts         money.Amount    `json:"discounts"`
	Shipping          money.Amount    `json:"shipping"`
	Tax               money.Amount    `json:"tax"`
	Total             money.Amount    `json:"total"`
	Savings           money.Amount    `json:"savings"`
	SavingsPercentage decimal.Decimal `json:"savings_percentage"`
}

// State is an immutable snapshot of the ledger as of the last committed
// mutation. Readers and subscribers only ever see committed states.
type State struct {
	CartID          string             `json:"cart_id"`
	Items           []Line             `json:"items"`
	Totals          Totals             `json:"totals"`
	AppliedCoupons  []discount.Applied `json:"applied_coupons"`
	ActiveProfileID string             `json:"active_profile_id,omitempty"`
	ShippingMethod  *ShippingMethod    `json:"shipping_method,omitempty"`
	IsEmpty         bool               `json:"is_empty"`
}

// Observer receives the committed state after every mutation.
type Observer func(State)

// Options wires a cart's collaborators.
type Options struct {
	ID          string
	Catalog     catalog.Lookup
	Coupons     *discount.Registry
	Profiles    *profile.Registry
	History     history.Recorder
	Logger      *logger.Logger
	Metrics     *metrics.EngineMetrics
	Currency    enums.Currency
	TaxRate     decimal.Decimal
	QueueBuffer int
}

// Cart is the authoritative checkout ledger. All mutations run through a
// serialized queue; everything below the queue is single-goroutine code.
type Cart struct {
	id       string
	catalog  catalog.Lookup
	coupons  *discount.Registry
	profiles *profile.Registry
	history  history.Recorder
	logg     *logger.Logger
	currency enums.Currency
	taxRate  decimal.Decimal

	queue *mutationQueue

	// Owned by the queue's drain goroutine.
	lines           []Line
	applied         []discount.Applied
	activeProfileID string
	snapshot        []Line
	shipping        *ShippingMethod

	mu          sync.RWMutex
	published   State
	subscribers map[int]Observer
	nextSubID   int
}

// New builds a cart and starts its mutation queue.
func New(opts Options) (*Cart, error) {
	if opts.Catalog == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "catalog lookup is required")
	}
	if opts.Profiles == nil {
		opts.Profiles = profile.NewRegistry()
	}
	if opts.ID == "" {
		opts.ID = uuid.NewString()
	}
	if opts.Currency == "" {
		opts.Currency = enums.CurrencyUSD
	}
	if opts.Logger == nil {
		opts.Logger = logger.New(logger.Options{ServiceName: "funnelcart"})
	}

	c := &Cart{
		id:          opts.ID,
		catalog:     opts.Catalog,
		coupons:     opts.Coupons,
		profiles:    opts.Profiles,
		history:     opts.History,
		logg:        opts.Logger,
		currency:    opts.Currency,
		taxRate:     opts.TaxRate,
		subscribers: map[int]Observer{},
	}
	c.queue = newMutationQueue(c.id, opts.QueueBuffer, opts.Metrics)
	c.published = c.buildState()
	return c, nil
}

// ID returns the cart identifier.
func (c *Cart) ID() string {
	return c.id
}

// Close drains pending mutations and stops the queue.
func (c *Cart) Close() {
	c.queue.Close()
}

// State returns the last committed snapshot.
func (c *Cart) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.published
}

// IsEmpty reports whether the committed ledger has no lines.
func (c *Cart) IsEmpty() bool {
	return c.State().IsEmpty
}

// HasItem reports whether the committed ledger holds the given package.
func (c *Cart) HasItem(packageID int) bool {
	for _, line := range c.State().Items {
		if line.PackageID == packageID {
			return true
		}
	}
	return false
}

// Subscribe registers an observer called after each committed mutation with
// the committed state. The returned function cancels the subscription.
// Observers run on the mutation goroutine: calling a cart mutation from the
// callback deadlocks, so observers that need to mutate must do so from
// another goroutine.
func (c *Cart) Subscribe(fn Observer) func() {
	c.mu.Lock()
	id := c.nextSubID
	c.nextSubID++
	c.subscribers[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subscribers, id)
		c.mu.Unlock()
	}
}

// commit recomputes totals, publishes the new state, and notifies observers.
// Runs on the drain goroutine only.
func (c *Cart) commit() {
	c.recompute()
	state := c.buildState()

	c.mu.Lock()
	c.published = state
	observers := make([]Observer, 0, len(c.subscribers))
	for _, fn := range c.subscribers {
		observers = append(observers, fn)
	}
	c.mu.Unlock()

	for _, fn := range observers {
		fn(state)
	}
}

// recompute reprices every line and the totals against the current coupons.
func (c *Cart) recompute() {
	views := make([]discount.LineView, len(c.lines))
	for i := range c.lines {
		line := &c.lines[i]
		line.Subtotal = line.UnitTotal.Mul(decimal.NewFromInt(int64(line.Quantity)))
		views[i] = discount.LineView{ID: line.ID, PackageID: line.PackageID, Total: line.Subtotal}
	}

	allocated := discount.Allocate(views, c.applied)
	for i := range c.lines {
		line := &c.lines[i]
		line.Discount = allocated[line.ID]
		line.FinalTotal = line.Subtotal.Sub(line.Discount)
	}
}

// buildState assembles a deep-copied snapshot of the ledger.
func (c *Cart) buildState() State {
	items := make([]Line, len(c.lines))
	copy(items, c.lines)
	coupons := make([]discount.Applied, len(c.applied))
	copy(coupons, c.applied)

	var shipping *ShippingMethod
	if c.shipping != nil {
		method := *c.shipping
		shipping = &method
	}

	return State{
		CartID:          c.id,
		Items:           items,
		Totals:          c.computeTotals(),
		AppliedCoupons:  coupons,
		ActiveProfileID: c.activeProfileID,
		ShippingMethod:  shipping,
		IsEmpty:         len(items) == 0,
	}
}

// computeTotals reconciles the money breakdown from the already-repriced
// lines. Savings combines the retail-vs-current gap with coupon discounts.
func (c *Cart) computeTotals() Totals {
	subtotal := decimal.Zero
	discounts := decimal.Zero
	retailSubtotal := decimal.Zero
	for _, line := range c.lines {
		subtotal = subtotal.Add(line.Subtotal)
		discounts = discounts.Add(line.Discount)
		retailSubtotal = retailSubtotal.Add(line.RetailTotal.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}

	shipping := decimal.Zero
	if c.shipping != nil {
		shipping = c.shipping.Price
	}

	taxable := subtotal.Sub(discounts)
	if taxable.IsNegative() {
		taxable = decimal.Zero
	}
	tax := taxable.Mul(c.taxRate).Round(2)
	total := taxable.Add(shipping).Add(tax)

	retailGap := retailSubtotal.Sub(subtotal)
	if retailGap.IsNegative() {
		retailGap = decimal.Zero
	}
	savings := retailGap.Add(discounts)

	savingsPct := decimal.Zero
	if retailSubtotal.IsPositive() {
		savingsPct = savings.Div(retailSubtotal).Mul(decimal.NewFromInt(100)).Round(2)
		if savingsPct.IsNegative() {
			savingsPct = decimal.Zero
		}
		if savingsPct.GreaterThan(decimal.NewFromInt(100)) {
			savingsPct = decimal.NewFromInt(100)
		}
	}

	return Totals{
		Subtotal:          money.NewAmount(subtotal, c.currency),
		Discounts:         money.NewAmount(discounts, c.currency),
		Shipping:          money.NewAmount(shipping, c.currency),
		Tax:               money.NewAmount(tax, c.currency),
		Total:             money.NewAmount(total, c.currency),
		Savings:           money.NewAmount(savings, c.currency),
		SavingsPercentage: savingsPct,
	}
}

// record persists a history event; persistence failures are logged, never
// surfaced, so checkout flow does not stall on the event store.
func (c *Cart) record(ctx context.Context, event history.Event) {
	if c.history == nil {
		return
	}
	event.CartID = c.id
	if err := c.history.Record(ctx, event); err != nil {
		c.logg.Error(c.logg.WithCartID(ctx, c.id), "failed to record cart event", err)
	}
}

func intPtr(v int) *int {
	return &v
}

func strPtr(v string) *string {
	return &v
}

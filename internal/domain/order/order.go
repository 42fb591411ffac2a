package order

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Item is one product line within an order: name, unit price in hryvnias,
// and quantity. Items are immutable values; an edit replaces the whole item.
type Item struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

// Valid reports whether the item satisfies the row constraints:
// non-blank name, price > 0, quantity > 0.
func (it Item) Valid() bool {
	return strings.TrimSpace(it.Name) != "" && it.Price.IsPositive() && it.Quantity > 0
}

// Order is a stored customer order, keyed by its user-assigned number.
type Order struct {
	Number       string    `json:"orderNumber"`
	Items        []Item    `json:"items"`
	DateCreated  time.Time `json:"dateCreated"`
	DateModified time.Time `json:"dateModified"`
}

// Total returns the order total as the sum of price times quantity over all
// items.
func (o *Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range o.Items {
		total = total.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}

// Clone returns a deep copy of the order. Stores hand out clones so callers
// can't mutate persisted state behind the store's back.
func (o *Order) Clone() Order {
	c := *o
	c.Items = make([]Item, len(o.Items))
	copy(c.Items, o.Items)
	return c
}

// Repository defines persistence operations for orders. At most one record
// exists per number; Save fully overwrites the record under its key.
// Repositories perform no Order validation — that is the Service's concern.
type Repository interface {
	GetAll(ctx context.Context) (map[string]Order, error)
	Save(ctx context.Context, number string, o Order) error
	Get(ctx context.Context, number string) (*Order, error)
	Exists(ctx context.Context, number string) (bool, error)
}

// FilterItems drops rows that fail the Item constraints and trims item
// names. Entry forms keep blank rows around, so a save request routinely
// carries a tail of empty items.
func FilterItems(items []Item) []Item {
	kept := make([]Item, 0, len(items))
	for _, it := range items {
		it.Name = strings.TrimSpace(it.Name)
		if it.Valid() {
			kept = append(kept, it)
		}
	}
	return kept
}

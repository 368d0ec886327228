package cart

import (
	"github.com/shopspring/decimal"
)

// StorageKey is the fixed storage key the serialized line items live under
const StorageKey = "artcase_cart"

// Product is the snapshot of a product taken when it is added to the cart
type Product struct {
	ID       string          `json:"id"`
	Title    string          `json:"title"`
	Price    decimal.Decimal `json:"price"`
	ImageURL string          `json:"imageUrl"`
}

// LineItem is one entry of the cart. Title, price and image are snapshotted at add time.
type LineItem struct {
	ID       string          `json:"id"`
	Title    string          `json:"title"`
	Price    decimal.Decimal `json:"price"`
	ImageURL string          `json:"imageUrl"`
	Quantity int             `json:"quantity"`
}

// Subtotal returns price * quantity
func (i LineItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// AddOutcome tells whether AddItem created a new line or bumped an existing one
type AddOutcome int

const (
	Added AddOutcome = iota + 1
	Increased
)

// Cart holds line items in first-add order with at most one line per product id.
// The zero value is an empty cart.
type Cart struct {
	items []LineItem
}

// New creates a cart from previously persisted items.
// Entries that break the cart invariants (empty id, non-positive quantity,
// negative price, duplicate id) are dropped.
func New(items []LineItem) *Cart {
	c := &Cart{}
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if item.ID == "" || item.Quantity < 1 || item.Price.IsNegative() {
			continue
		}
		if _, dup := seen[item.ID]; dup {
			continue
		}
		seen[item.ID] = struct{}{}
		c.items = append(c.items, item)
	}
	return c
}

// AddItem increments the quantity of an existing line in place or appends a new line with quantity 1
func (c *Cart) AddItem(p Product) AddOutcome {
	if idx := c.indexOf(p.ID); idx >= 0 {
		c.items[idx].Quantity++
		return Increased
	}
	c.items = append(c.items, LineItem{
		ID:       p.ID,
		Title:    p.Title,
		Price:    p.Price,
		ImageURL: p.ImageURL,
		Quantity: 1,
	})
	return Added
}

// DecreaseQuantity decrements the line's quantity, removing it when it would reach zero.
// It reports whether the cart changed.
func (c *Cart) DecreaseQuantity(id string) bool {
	idx := c.indexOf(id)
	if idx < 0 {
		return false
	}
	if c.items[idx].Quantity == 1 {
		c.removeAt(idx)
		return true
	}
	c.items[idx].Quantity--
	return true
}

// Remove deletes the line with the given id. It reports whether the cart changed.
func (c *Cart) Remove(id string) bool {
	idx := c.indexOf(id)
	if idx < 0 {
		return false
	}
	c.removeAt(idx)
	return true
}

// Clear empties the cart
func (c *Cart) Clear() {
	c.items = nil
}

// Items returns a copy of the line items in cart order
func (c *Cart) Items() []LineItem {
	out := make([]LineItem, len(c.items))
	copy(out, c.items)
	return out
}

// Item returns the line for id, if present
func (c *Cart) Item(id string) (LineItem, bool) {
	if idx := c.indexOf(id); idx >= 0 {
		return c.items[idx], true
	}
	return LineItem{}, false
}

// Len returns the number of distinct lines
func (c *Cart) Len() int {
	return len(c.items)
}

// IsEmpty reports whether the cart has no lines
func (c *Cart) IsEmpty() bool {
	return len(c.items) == 0
}

// TotalQuantity sums the quantities of all lines
func (c *Cart) TotalQuantity() int {
	total := 0
	for _, item := range c.items {
		total += item.Quantity
	}
	return total
}

// TotalPrice sums price * quantity over all lines
func (c *Cart) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.items {
		total = total.Add(item.Subtotal())
	}
	return total
}

func (c *Cart) indexOf(id string) int {
	for i := range c.items {
		if c.items[i].ID == id {
			return i
		}
	}
	return -1
}

func (c *Cart) removeAt(idx int) {
	c.items = append(c.items[:idx], c.items[idx+1:]...)
	if len(c.items) == 0 {
		c.items = nil
	}
}

// Package cart holds a visitor's local bag. It is a purely in-memory store:
// no network calls, no durable persistence. Prices are snapshotted at
// add-time and never revalidated; the backend recomputes authoritative
// pricing at order creation.
package cart

import (
	"sync"

	"khojstudio.pk/khoj-web/internal/api"
)

// ProductSnapshot is the slice of a catalog product captured when the item
// entered the bag. The live catalog price may drift afterwards; that is
// expected.
type ProductSnapshot struct {
	ID        string
	Name      string
	UnitPrice int64
	ImageURL  string
}

// Item is one (product, size) line in the bag.
type Item struct {
	Product  ProductSnapshot
	Size     string
	Quantity int
}

// Key identifies an item by its (productID, size) pair.
type Key struct {
	ProductID string
	Size      string
}

// Cart is one visitor's bag. Safe for concurrent use; a browser can issue
// overlapping fragment requests against the same visit.
type Cart struct {
	mu         sync.Mutex
	items      []Item
	drawerOpen bool
}

// New returns an empty bag.
func New() *Cart {
	return &Cart{}
}

// Snapshot converts a catalog product into its add-time snapshot.
func Snapshot(p api.Product) ProductSnapshot {
	return ProductSnapshot{
		ID:        p.ID,
		Name:      p.Name,
		UnitPrice: p.Price,
		ImageURL:  p.MainImage(),
	}
}

// AddItem merges quantity into an existing (product, size) line or appends a
// new one, and opens the drawer. Quantities below one count as one.
func (c *Cart) AddItem(p ProductSnapshot, size string, quantity int) {
	if quantity < 1 {
		quantity = 1
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		if c.items[i].Product.ID == p.ID && c.items[i].Size == size {
			c.items[i].Quantity += quantity
			c.drawerOpen = true
			return
		}
	}
	c.items = append(c.items, Item{Product: p, Size: size, Quantity: quantity})
	c.drawerOpen = true
}

// RemoveItem deletes the matching line. Removing an absent line is a no-op.
func (c *Cart) RemoveItem(productID, size string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removeLocked(productID, size)
}

func (c *Cart) removeLocked(productID, size string) {
	for i := range c.items {
		if c.items[i].Product.ID == productID && c.items[i].Size == size {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return
		}
	}
}

// UpdateQuantity sets (not adds) the line's quantity. A quantity of zero or
// less removes the line entirely.
func (c *Cart) UpdateQuantity(productID, size string, quantity int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if quantity <= 0 {
		c.removeLocked(productID, size)
		return
	}
	for i := range c.items {
		if c.items[i].Product.ID == productID && c.items[i].Size == size {
			c.items[i].Quantity = quantity
			return
		}
	}
}

// Clear empties the bag. Called exactly once, right after order creation
// succeeds.
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
}

// Items returns a copy of the current lines in insertion order.
func (c *Cart) Items() []Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// IsEmpty reports whether the bag has no lines.
func (c *Cart) IsEmpty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items) == 0
}

// TotalItems sums quantities across all lines.
func (c *Cart) TotalItems() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := 0
	for _, it := range c.items {
		total += it.Quantity
	}
	return total
}

// Subtotal sums quantity x snapshot unit price across all lines.
func (c *Cart) Subtotal() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	var total int64
	for _, it := range c.items {
		total += int64(it.Quantity) * it.Product.UnitPrice
	}
	return total
}

// OrderLines projects the bag into the order-creation wire shape: product,
// size, and quantity only.
func (c *Cart) OrderLines() []api.OrderLine {
	c.mu.Lock()
	defer c.mu.Unlock()
	lines := make([]api.OrderLine, 0, len(c.items))
	for _, it := range c.items {
		lines = append(lines, api.OrderLine{
			ProductID: it.Product.ID,
			Size:      it.Size,
			Quantity:  it.Quantity,
		})
	}
	return lines
}

// DrawerOpen reports whether the slide-out bag should be shown.
func (c *Cart) DrawerOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.drawerOpen
}

// CloseDrawer hides the slide-out bag.
func (c *Cart) CloseDrawer() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.drawerOpen = false
}

// OpenDrawer shows the slide-out bag.
func (c *Cart) OpenDrawer() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.drawerOpen = true
}

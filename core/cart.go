package core

import (
	"slices"
	"sync"

	"github.com/huangsam/storesync/schema"
)

// Cart is the locally held cart of one user. Lines merge on identity and
// keep their insertion order for display. All methods are safe for concurrent use
// and never fail.
type Cart struct {
	mu     sync.Mutex
	userID string
	lines  []schema.CartLine
}

// NewCart creates an empty cart.
func NewCart(userID string) *Cart {
	return &Cart{userID: userID}
}

// CartFromSnapshot creates a cart holding a copy of snap's lines.
func CartFromSnapshot(snap schema.CartSnapshot) *Cart {
	c := NewCart(snap.UserID)
	c.Restore(snap)
	return c
}

// UserID returns the owner of the cart.
func (c *Cart) UserID() string {
	return c.userID
}

// AddLine increases the quantity of the line with the same identity, or appends
// a new line. A non-positive quantity is ignored.
func (c *Cart) AddLine(id schema.LineIdentity, qty int, unitPrice schema.Money, fields schema.LineFields) {
	if qty <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.indexLocked(id); i >= 0 {
		c.lines[i].Quantity += qty
		return
	}
	c.lines = append(c.lines, schema.CartLine{
		Identity:   id,
		Quantity:   qty,
		UnitPrice:  unitPrice,
		LineFields: fields,
	})
}

// SetQuantity replaces the quantity of a line. Zero or less removes it.
// Setting a quantity on a missing line does nothing.
func (c *Cart) SetQuantity(id schema.LineIdentity, qty int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexLocked(id)
	if i < 0 {
		return
	}
	if qty <= 0 {
		c.lines = slices.Delete(c.lines, i, i+1)
		return
	}
	c.lines[i].Quantity = qty
}

// RemoveLine deletes a line. Removing a missing line is a no-op.
func (c *Cart) RemoveLine(id schema.LineIdentity) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.indexLocked(id); i >= 0 {
		c.lines = slices.Delete(c.lines, i, i+1)
	}
}

// TotalPrice sums unit price times quantity over every line.
func (c *Cart) TotalPrice() schema.Money {
	c.mu.Lock()
	defer c.mu.Unlock()

	var total schema.Money
	for _, l := range c.lines {
		total += l.Subtotal()
	}
	return total
}

// Count returns the total number of units in the cart.
func (c *Cart) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

// Lines returns a copy of the lines in display order.
func (c *Cart) Lines() []schema.CartLine {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.lines)
}

// Line returns the line with the given identity.
func (c *Cart) Line(id schema.LineIdentity) (schema.CartLine, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexLocked(id); i >= 0 {
		return c.lines[i], true
	}
	return schema.CartLine{}, false
}

// Snapshot returns an independent copy of the cart.
func (c *Cart) Snapshot() schema.CartSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return schema.CartSnapshot{UserID: c.userID, Lines: slices.Clone(c.lines)}
}

// Restore replaces the lines with a copy of snap's lines.
func (c *Cart) Restore(snap schema.CartSnapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = slices.Clone(snap.Lines)
}

func (c *Cart) indexLocked(id schema.LineIdentity) int {
	return slices.IndexFunc(c.lines, func(l schema.CartLine) bool { return l.Identity == id })
}

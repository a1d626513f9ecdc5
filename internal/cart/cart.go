// Package cart holds the in-memory shopping cart model. Lines carry no
// price snapshot: totals and checkout line items always re-derive price and
// display data from the live catalog, so a catalog price change is reflected
// in every open cart immediately.
package cart

import (
	"errors"

	"github.com/Southwavecodes/Southwaveapp/internal/domain"
)

var (
	ErrInvalidQuantity = errors.New("quantity must not be negative")
	ErrLineNotFound    = errors.New("cart line not found")
	ErrVariantRequired = errors.New("product requires a size/color selection")
)

// Line is one cart entry. Identity key = (product id, size, color).
type Line struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size,omitempty"`
	Color     string `json:"color,omitempty"`
}

func (l *Line) sameKey(productID, size, color string) bool {
	return l.ProductID == productID && l.Size == size && l.Color == color
}

// Cart is an ordered sequence of lines; no two lines share an identity key.
type Cart struct {
	Lines []Line `json:"lines"`
}

// AddItem merges into an existing line with the same identity key, otherwise
// appends a new line. A product declaring sizes or colors must have the
// matching attribute selected.
func (c *Cart) AddItem(p *domain.Product, quantity int, size, color string) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if (p.HasSizes() && size == "") || (p.HasColors() && color == "") {
		return ErrVariantRequired
	}

	for i := range c.Lines {
		if c.Lines[i].sameKey(p.ID, size, color) {
			c.Lines[i].Quantity += quantity
			return nil
		}
	}

	c.Lines = append(c.Lines, Line{
		ProductID: p.ID,
		Quantity:  quantity,
		Size:      size,
		Color:     color,
	})
	return nil
}

// UpdateQuantity sets the quantity of the line at index; zero removes the
// line. Negative quantities and out-of-range indexes are rejected without
// touching any other line.
func (c *Cart) UpdateQuantity(index, quantity int) error {
	if quantity < 0 {
		return ErrInvalidQuantity
	}
	if index < 0 || index >= len(c.Lines) {
		return ErrLineNotFound
	}
	if quantity == 0 {
		c.Lines = append(c.Lines[:index], c.Lines[index+1:]...)
		return nil
	}
	c.Lines[index].Quantity = quantity
	return nil
}

// RemoveLine deletes the line at index.
func (c *Cart) RemoveLine(index int) error {
	return c.UpdateQuantity(index, 0)
}

// Clear drops every line.
func (c *Cart) Clear() {
	c.Lines = nil
}

// ItemCount is the sum of quantities across all lines (the badge count).
func (c *Cart) ItemCount() int {
	count := 0
	for _, l := range c.Lines {
		count += l.Quantity
	}
	return count
}

// Total sums price x quantity over all lines in exact integer minor units,
// resolving each line's current price through priceOf.
func (c *Cart) Total(priceOf func(productID string) (int64, error)) (int64, error) {
	var total int64
	for _, l := range c.Lines {
		price, err := priceOf(l.ProductID)
		if err != nil {
			return 0, err
		}
		total += price * int64(l.Quantity)
	}
	return total, nil
}

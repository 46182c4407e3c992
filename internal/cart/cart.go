// Package cart holds the client-local shopping cart. Line items are menu
// snapshots (name and price captured at add time) and the cart itself lives
// in an HMAC-signed cookie until checkout.
package cart

type Item struct {
	MenuItemID     int64  `json:"menu_item_id"`
	Name           string `json:"name"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	Quantity       int64  `json:"quantity"`
}

type Cart struct {
	Items []Item `json:"items"`
}

// Add merges quantity into an existing line for the same menu item, or
// appends a new line.
func (c *Cart) Add(it Item) {
	if it.Quantity <= 0 {
		it.Quantity = 1
	}
	for i := range c.Items {
		if c.Items[i].MenuItemID == it.MenuItemID {
			c.Items[i].Quantity += it.Quantity
			return
		}
	}
	c.Items = append(c.Items, it)
}

// SetQuantity updates a line's quantity; qty <= 0 removes the line.
func (c *Cart) SetQuantity(menuItemID, qty int64) bool {
	for i := range c.Items {
		if c.Items[i].MenuItemID == menuItemID {
			if qty <= 0 {
				c.Items = append(c.Items[:i], c.Items[i+1:]...)
			} else {
				c.Items[i].Quantity = qty
			}
			return true
		}
	}
	return false
}

func (c *Cart) Remove(menuItemID int64) bool {
	return c.SetQuantity(menuItemID, 0)
}

func (c *Cart) Clear() { c.Items = nil }

func (c *Cart) IsEmpty() bool { return len(c.Items) == 0 }

// TotalCents is the sum of unit price times quantity over all lines.
func (c *Cart) TotalCents() int64 {
	var total int64
	for _, it := range c.Items {
		total += it.UnitPriceCents * it.Quantity
	}
	return total
}

package core

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Three-tier shipping policy. The lower bound of each tier is inclusive.
var (
	freeShippingAt     = decimal.NewFromInt(500)
	reducedShippingAt  = decimal.NewFromInt(200)
	reducedShippingFee = decimal.NewFromInt(50)
	baseShippingFee    = decimal.NewFromInt(100)
)

// ShippingFor returns the shipping fee for a subtotal: free at 500 and
// above, 50 at 200 and above, 100 below that.
func ShippingFor(subtotal decimal.Decimal) decimal.Decimal {
	switch {
	case subtotal.GreaterThanOrEqual(freeShippingAt):
		return decimal.Zero
	case subtotal.GreaterThanOrEqual(reducedShippingAt):
		return reducedShippingFee
	default:
		return baseShippingFee
	}
}

// NewEmptyCart returns a cart with all derived fields at zero.
func NewEmptyCart(now time.Time) *Cart {
	return &Cart{
		Items:     []CartItem{},
		Subtotal:  decimal.Zero,
		Discount:  decimal.Zero,
		Shipping:  decimal.Zero,
		Total:     decimal.Zero,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// itemKey is the merge identity of a line: same product and same variant
// tuple means the same line.
func itemKey(productID int64, v *Variant) string {
	return strconv.FormatInt(productID, 10) + "#" + v.Key()
}

// FindItem returns the line matching the (product, variant) identity, or
// nil when no such line exists.
func (c *Cart) FindItem(productID int64, variant *Variant) *CartItem {
	key := itemKey(productID, variant)
	for i := range c.Items {
		it := &c.Items[i]
		if itemKey(it.Product.ID, it.Variant) == key {
			return it
		}
	}
	return nil
}

// ItemByID returns the line with the given opaque id, or nil.
func (c *Cart) ItemByID(itemID string) *CartItem {
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			return &c.Items[i]
		}
	}
	return nil
}

// Recompute re-derives every line total and the cart's derived fields
// from the item list and the current discount. It is a pure function of
// that state, independent of call history, and runs synchronously after
// every mutation so the totals are never observed stale.
func (c *Cart) Recompute(now time.Time) {
	subtotal := decimal.Zero
	for i := range c.Items {
		it := &c.Items[i]
		it.LineTotal = it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
		subtotal = subtotal.Add(it.LineTotal)
	}
	c.Subtotal = subtotal
	c.Shipping = ShippingFor(subtotal)
	c.Total = subtotal.Add(c.Shipping).Sub(c.Discount)
	c.UpdatedAt = now
}

// TotalItems returns the summed quantity across all lines.
func (c *Cart) TotalItems() int {
	if c == nil {
		return 0
	}
	n := 0
	for i := range c.Items {
		n += c.Items[i].Quantity
	}
	return n
}

// IsEmpty reports whether the cart holds no lines.
func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Items) == 0
}

// Summary projects the derived read-only view. A nil cart summarizes to
// all zeros.
func (c *Cart) Summary() CartSummary {
	if c == nil {
		return CartSummary{
			Subtotal: decimal.Zero,
			Discount: decimal.Zero,
			Shipping: decimal.Zero,
			Total:    decimal.Zero,
		}
	}
	return CartSummary{
		TotalItems: c.TotalItems(),
		Subtotal:   c.Subtotal,
		Discount:   c.Discount,
		Shipping:   c.Shipping,
		Total:      c.Total,
	}
}

// Clone returns a deep copy so published carts cannot be mutated behind
// the engine's back.
func (c *Cart) Clone() *Cart {
	if c == nil {
		return nil
	}
	out := *c
	out.Items = make([]CartItem, len(c.Items))
	copy(out.Items, c.Items)
	for i := range out.Items {
		if v := out.Items[i].Variant; v != nil {
			vc := *v
			out.Items[i].Variant = &vc
		}
		if cat := out.Items[i].Product.Category; cat != nil {
			cc := *cat
			out.Items[i].Product.Category = &cc
		}
	}
	if c.Coupon != nil {
		cp := *c.Coupon
		out.Coupon = &cp
	}
	return &out
}

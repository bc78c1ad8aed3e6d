package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cart is keyed by an opaque, client-generated code. It is ephemeral:
// created on first reference and deleted once converted into an order.
type Cart struct {
	ID        int64      `json:"id"`
	Code      string     `json:"cart_code"`
	Items     []CartItem `json:"items"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// CartItem references a product; the unit price is read from the product
// at fetch time, never stored on the line itself.
type CartItem struct {
	ID          int64           `json:"id"`
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
}

// Subtotal is the quantized sum of unit price times quantity over all lines.
func (c *Cart) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, item := range c.Items {
		sum = sum.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return QuantizeMoney(sum)
}

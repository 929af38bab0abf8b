package response

import (
	"github.com/shopspring/decimal"
)

// CartItem is a cart line joined with its catalog row at read time.
type CartItem struct {
	ProductID   string          `json:"product_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	ImageURL    string          `json:"image_url"`
	Price       decimal.Decimal `json:"price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Quantity    int32           `json:"quantity"`
	Stock       int32           `json:"stock"`
}

type Cart struct {
	CartItems []CartItem      `json:"cart_items"`
	Total     decimal.Decimal `json:"total"`
}

// NewCart sums line subtotals in decimal arithmetic.
func NewCart(items []CartItem) Cart {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal)
	}
	return Cart{CartItems: items, Total: total}
}

func (c Cart) IsEmpty() bool {
	return len(c.CartItems) == 0
}

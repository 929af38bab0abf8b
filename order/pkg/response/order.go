package response

import (
	"github.com/shopspring/decimal"
)

type Order struct {
	ID         string          `json:"id"`
	CustomerID string          `json:"customer_id"`
	Status     string          `json:"status"`
	Total      decimal.Decimal `json:"total"`
	CreatedAt  string          `json:"created_at"`
}

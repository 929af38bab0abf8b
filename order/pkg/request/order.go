package request

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateOrder struct {
	OrderDate  time.Time       `validate:"required"            json:"order_date"`
	Total      decimal.Decimal `validate:"price"               json:"total"`
	OrderItems []OrderItem     `validate:"required,gt=0,dive"  json:"order_items"`
	CustomerID string          `validate:"required"            json:"customer_id"`
	ID         uuid.UUID       `validate:"required"            json:"id"`
}

type OrderItem struct {
	ProductID string          `validate:"required"       json:"product_id"`
	Name      string          `                          json:"name"`
	Price     decimal.Decimal `validate:"price"          json:"price"`
	Subtotal  decimal.Decimal `validate:"price"          json:"subtotal"`
	Quantity  int32           `validate:"required,gte=1" json:"quantity"`
}

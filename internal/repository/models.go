package repository

import (
	"github.com/shopspring/decimal"
)

type Category struct {
	ID        string
	Name      string
	CreatedAt string
	UpdatedAt string
}

type Product struct {
	ID          string
	CategoryID  string
	Name        string
	Description string
	ImageUrl    string
	Price       decimal.Decimal
	Stock       int32
	CreatedAt   string
	UpdatedAt   string
}

type CartItem struct {
	ProductID string
	Quantity  int32
	CreatedAt string
	UpdatedAt string
}

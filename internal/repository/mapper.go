package repository

import (
	"github.com/shopspring/decimal"

	cartResponse "github.com/Alturino/salesrep/cart/pkg/response"
	catalogResponse "github.com/Alturino/salesrep/catalog/pkg/response"
)

func (p Product) Response() catalogResponse.Product {
	return catalogResponse.Product{
		ID:          p.ID,
		CategoryID:  p.CategoryID,
		Name:        p.Name,
		Description: p.Description,
		ImageURL:    p.ImageUrl,
		Price:       p.Price,
		Stock:       p.Stock,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func (c Category) Response() catalogResponse.Category {
	return catalogResponse.Category{
		ID:        c.ID,
		Name:      c.Name,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func (f FindCartItemsRow) Response() cartResponse.CartItem {
	return cartResponse.CartItem{
		ProductID:   f.ProductID,
		Name:        f.Name,
		Description: f.Description,
		ImageURL:    f.ImageUrl,
		Price:       f.Price,
		Subtotal:    f.Price.Mul(decimal.NewFromInt32(f.Quantity)),
		Quantity:    f.Quantity,
		Stock:       f.Stock,
	}
}

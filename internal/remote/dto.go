package remote

import (
	"github.com/shopspring/decimal"
)

// Envelope is the body shape of every remote response.
type Envelope[T any] struct {
	Data       T      `json:"data"`
	Status     string `json:"status"`
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode"`
}

type Category struct {
	ID        string `validate:"required" json:"id"`
	Name      string `validate:"required" json:"name"`
	CreatedAt string `                    json:"created_at"`
	UpdatedAt string `                    json:"updated_at"`
}

type Product struct {
	ImageURL    *string         `                    json:"image_url"`
	ID          string          `validate:"required" json:"id"`
	CategoryID  string          `validate:"required" json:"category_id"`
	Name        string          `validate:"required" json:"name"`
	Description string          `                    json:"description"`
	CreatedAt   string          `                    json:"created_at"`
	UpdatedAt   string          `                    json:"updated_at"`
	Price       decimal.Decimal `validate:"price"    json:"price"`
	Stock       int32           `validate:"gte=0"    json:"stock"`
}

type categoriesData struct {
	Categories []Category `validate:"dive" json:"categories"`
}

type productsData struct {
	Products []Product `validate:"dive" json:"products"`
}

type orderData struct {
	Order orderDTO `json:"order"`
}

type orderDTO struct {
	ID         string          `json:"id"`
	CustomerID string          `json:"customer_id"`
	Status     string          `json:"status"`
	CreatedAt  string          `json:"created_at"`
	Total      decimal.Decimal `json:"total"`
}

package cache

import (
	"context"
	"strings"

	"github.com/Alturino/salesrep/catalog/pkg/response"
	"github.com/Alturino/salesrep/internal/constants"
	inErrors "github.com/Alturino/salesrep/internal/errors"
	"github.com/Alturino/salesrep/internal/remote"
	"github.com/Alturino/salesrep/internal/repository"
	"github.com/Alturino/salesrep/internal/store"
)

type ProductSource interface {
	FetchProducts(c context.Context, categoryID string, contextID string) ([]remote.Product, error)
}

// Products is scoped by category id.
type Products = Repository[response.Product, repository.UpsertProductParams]

func NewProducts(st *store.Store, source ProductSource) Products {
	return NewRepository(st, Binding[response.Product, repository.UpsertProductParams]{
		Name:     "products",
		Table:    constants.TABLE_PRODUCTS,
		NotFound: inErrors.ErrProductNotFound,
		Fetch: func(c context.Context, categoryID string, contextID string) ([]repository.UpsertProductParams, error) {
			products, err := source.FetchProducts(c, categoryID, contextID)
			if err != nil {
				return nil, err
			}
			params := make([]repository.UpsertProductParams, len(products))
			for i, product := range products {
				params[i] = ProductParams(product)
			}
			return params, nil
		},
		Upsert: func(c context.Context, q *repository.Queries, param repository.UpsertProductParams) error {
			return q.UpsertProduct(c, param)
		},
		List: func(c context.Context, q *repository.Queries, categoryID string) ([]response.Product, error) {
			rows, err := q.FindProductsByCategoryId(c, categoryID)
			if err != nil {
				return nil, err
			}
			products := make([]response.Product, len(rows))
			for i, row := range rows {
				products[i] = row.Response()
			}
			return products, nil
		},
		Find: func(c context.Context, q *repository.Queries, id string) (response.Product, error) {
			row, err := q.FindProductById(c, id)
			if err != nil {
				return response.Product{}, err
			}
			return row.Response(), nil
		},
		Delete: func(c context.Context, q *repository.Queries, categoryID string) (int64, error) {
			return q.DeleteProductsByCategoryId(c, categoryID)
		},
		Compare: CompareProducts,
	})
}

// ProductParams maps a remote product to its row, substituting the
// placeholder image when the source has none.
func ProductParams(p remote.Product) repository.UpsertProductParams {
	imageURL := constants.PLACEHOLDER_IMAGE_URL
	if p.ImageURL != nil && strings.TrimSpace(*p.ImageURL) != "" {
		imageURL = *p.ImageURL
	}
	return repository.UpsertProductParams{
		ID:          p.ID,
		CategoryID:  p.CategoryID,
		Name:        p.Name,
		Description: p.Description,
		ImageUrl:    imageURL,
		Price:       p.Price,
		Stock:       p.Stock,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// CompareProducts orders by price descending, then id ascending.
func CompareProducts(a, b response.Product) int {
	if cmp := b.Price.Cmp(a.Price); cmp != 0 {
		return cmp
	}
	return strings.Compare(a.ID, b.ID)
}

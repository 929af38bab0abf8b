package cache

import (
	"context"
	"errors"
	"strings"

	"github.com/Alturino/salesrep/catalog/pkg/response"
	"github.com/Alturino/salesrep/internal/constants"
	"github.com/Alturino/salesrep/internal/remote"
	"github.com/Alturino/salesrep/internal/repository"
	"github.com/Alturino/salesrep/internal/store"
)

var ErrCategoryNotFound = errors.New("category not found")

type CategorySource interface {
	FetchCategories(c context.Context) ([]remote.Category, error)
}

// Categories ignores scope: the whole table is one scope.
type Categories = Repository[response.Category, repository.UpsertCategoryParams]

func NewCategories(st *store.Store, source CategorySource) Categories {
	return NewRepository(st, Binding[response.Category, repository.UpsertCategoryParams]{
		Name:     "categories",
		Table:    constants.TABLE_CATEGORIES,
		NotFound: ErrCategoryNotFound,
		Fetch: func(c context.Context, _ string, _ string) ([]repository.UpsertCategoryParams, error) {
			categories, err := source.FetchCategories(c)
			if err != nil {
				return nil, err
			}
			params := make([]repository.UpsertCategoryParams, len(categories))
			for i, category := range categories {
				params[i] = repository.UpsertCategoryParams{
					ID:        category.ID,
					Name:      category.Name,
					CreatedAt: category.CreatedAt,
					UpdatedAt: category.UpdatedAt,
				}
			}
			return params, nil
		},
		Upsert: func(c context.Context, q *repository.Queries, param repository.UpsertCategoryParams) error {
			return q.UpsertCategory(c, param)
		},
		List: func(c context.Context, q *repository.Queries, _ string) ([]response.Category, error) {
			rows, err := q.FindCategories(c)
			if err != nil {
				return nil, err
			}
			categories := make([]response.Category, len(rows))
			for i, row := range rows {
				categories[i] = row.Response()
			}
			return categories, nil
		},
		Find: func(c context.Context, q *repository.Queries, id string) (response.Category, error) {
			row, err := q.FindCategoryById(c, id)
			if err != nil {
				return response.Category{}, err
			}
			return row.Response(), nil
		},
		Delete: func(c context.Context, q *repository.Queries, _ string) (int64, error) {
			return q.DeleteCategories(c)
		},
		Compare: func(a, b response.Category) int {
			if cmp := strings.Compare(a.Name, b.Name); cmp != 0 {
				return cmp
			}
			return strings.Compare(a.ID, b.ID)
		},
	})
}

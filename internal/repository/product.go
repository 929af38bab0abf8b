package repository

import (
	"context"

	"github.com/shopspring/decimal"
)

const upsertProduct = `
INSERT INTO products (id, category_id, name, description, image_url, price, stock, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
    category_id = excluded.category_id,
    name = excluded.name,
    description = excluded.description,
    image_url = excluded.image_url,
    price = excluded.price,
    stock = excluded.stock,
    created_at = excluded.created_at,
    updated_at = excluded.updated_at
`

type UpsertProductParams struct {
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

// UpsertProduct overwrites the row unconditionally.
func (q *Queries) UpsertProduct(c context.Context, arg UpsertProductParams) error {
	_, err := q.db.ExecContext(c, upsertProduct,
		arg.ID,
		arg.CategoryID,
		arg.Name,
		arg.Description,
		arg.ImageUrl,
		arg.Price.String(),
		arg.Stock,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return err
}

const findProductById = `
SELECT id, category_id, name, description, image_url, price, stock, created_at, updated_at
FROM products
WHERE id = ?
`

func (q *Queries) FindProductById(c context.Context, id string) (Product, error) {
	row := q.db.QueryRowContext(c, findProductById, id)
	var i Product
	err := row.Scan(
		&i.ID,
		&i.CategoryID,
		&i.Name,
		&i.Description,
		&i.ImageUrl,
		&i.Price,
		&i.Stock,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const findProductsByCategoryId = `
SELECT id, category_id, name, description, image_url, price, stock, created_at, updated_at
FROM products
WHERE category_id = ?
ORDER BY id
`

func (q *Queries) FindProductsByCategoryId(c context.Context, categoryID string) ([]Product, error) {
	rows, err := q.db.QueryContext(c, findProductsByCategoryId, categoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Product{}
	for rows.Next() {
		var i Product
		if err := rows.Scan(
			&i.ID,
			&i.CategoryID,
			&i.Name,
			&i.Description,
			&i.ImageUrl,
			&i.Price,
			&i.Stock,
			&i.CreatedAt,
			&i.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const deleteProductsByCategoryId = `
DELETE FROM products WHERE category_id = ?
`

func (q *Queries) DeleteProductsByCategoryId(c context.Context, categoryID string) (int64, error) {
	result, err := q.db.ExecContext(c, deleteProductsByCategoryId, categoryID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

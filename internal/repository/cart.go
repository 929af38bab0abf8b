package repository

import (
	"context"

	"github.com/shopspring/decimal"
)

const findCartItemById = `
SELECT product_id, quantity, created_at, updated_at FROM cart_items WHERE product_id = ?
`

func (q *Queries) FindCartItemById(c context.Context, productID string) (CartItem, error) {
	row := q.db.QueryRowContext(c, findCartItemById, productID)
	var i CartItem
	err := row.Scan(&i.ProductID, &i.Quantity, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

const upsertCartItem = `
INSERT INTO cart_items (product_id, quantity, created_at, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT (product_id) DO UPDATE SET
    quantity = excluded.quantity,
    updated_at = excluded.updated_at
`

type UpsertCartItemParams struct {
	ProductID string
	Quantity  int32
	UpdatedAt string
}

// UpsertCartItem sets the absolute quantity of a line.
func (q *Queries) UpsertCartItem(c context.Context, arg UpsertCartItemParams) error {
	_, err := q.db.ExecContext(c, upsertCartItem, arg.ProductID, arg.Quantity, arg.UpdatedAt, arg.UpdatedAt)
	return err
}

const deleteCartItemById = `
DELETE FROM cart_items WHERE product_id = ?
`

func (q *Queries) DeleteCartItemById(c context.Context, productID string) (int64, error) {
	result, err := q.db.ExecContext(c, deleteCartItemById, productID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteCartItems = `
DELETE FROM cart_items
`

func (q *Queries) DeleteCartItems(c context.Context) (int64, error) {
	result, err := q.db.ExecContext(c, deleteCartItems)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// Lines whose product is gone from the catalog are dropped by the inner join.
const findCartItems = `
SELECT ci.product_id, ci.quantity, p.name, p.description, p.image_url, p.price, p.stock
FROM cart_items ci
INNER JOIN products p ON p.id = ci.product_id
ORDER BY ci.created_at, ci.product_id
`

type FindCartItemsRow struct {
	ProductID   string
	Quantity    int32
	Name        string
	Description string
	ImageUrl    string
	Price       decimal.Decimal
	Stock       int32
}

func (q *Queries) FindCartItems(c context.Context) ([]FindCartItemsRow, error) {
	rows, err := q.db.QueryContext(c, findCartItems)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []FindCartItemsRow{}
	for rows.Next() {
		var i FindCartItemsRow
		if err := rows.Scan(
			&i.ProductID,
			&i.Quantity,
			&i.Name,
			&i.Description,
			&i.ImageUrl,
			&i.Price,
			&i.Stock,
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

package repository

import (
	"context"
)

const upsertCategory = `
INSERT INTO categories (id, name, created_at, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
    name = excluded.name,
    created_at = excluded.created_at,
    updated_at = excluded.updated_at
`

type UpsertCategoryParams struct {
	ID        string
	Name      string
	CreatedAt string
	UpdatedAt string
}

func (q *Queries) UpsertCategory(c context.Context, arg UpsertCategoryParams) error {
	_, err := q.db.ExecContext(c, upsertCategory, arg.ID, arg.Name, arg.CreatedAt, arg.UpdatedAt)
	return err
}

const findCategoryById = `
SELECT id, name, created_at, updated_at FROM categories WHERE id = ?
`

func (q *Queries) FindCategoryById(c context.Context, id string) (Category, error) {
	row := q.db.QueryRowContext(c, findCategoryById, id)
	var i Category
	err := row.Scan(&i.ID, &i.Name, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

const findCategories = `
SELECT id, name, created_at, updated_at FROM categories ORDER BY name, id
`

func (q *Queries) FindCategories(c context.Context) ([]Category, error) {
	rows, err := q.db.QueryContext(c, findCategories)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Category{}
	for rows.Next() {
		var i Category
		if err := rows.Scan(&i.ID, &i.Name, &i.CreatedAt, &i.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const deleteCategories = `
DELETE FROM categories
`

func (q *Queries) DeleteCategories(c context.Context) (int64, error) {
	result, err := q.db.ExecContext(c, deleteCategories)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

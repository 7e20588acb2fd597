package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"homestock/internal/domain"
)

type CategoryRepo struct{ db *sqlx.DB }

func NewCategoryRepo(db *sqlx.DB) *CategoryRepo { return &CategoryRepo{db: db} }

func (r *CategoryRepo) ListByHome(ctx context.Context, homeID int64) ([]domain.Category, error) {
	out := []domain.Category{}
	err := r.db.SelectContext(ctx, &out, `
	  SELECT id, home_id, name
	  FROM categories
	  WHERE home_id = ?
	  ORDER BY name, id
	`, homeID)
	return out, err
}

func (r *CategoryRepo) Get(ctx context.Context, id int64) (domain.Category, error) {
	var c domain.Category
	err := r.db.GetContext(ctx, &c, `SELECT id, home_id, name FROM categories WHERE id = ?`, id)
	return c, err
}

func (r *CategoryRepo) Create(ctx context.Context, homeID int64, name string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `INSERT INTO categories(home_id, name) VALUES (?, ?)`, homeID, name)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// Delete removes a category that has no subcategories. It returns
// sql.ErrNoRows when the category is missing or still in use.
func (r *CategoryRepo) Delete(ctx context.Context, id int64) error {
	return mustAffect(r.db.ExecContext(ctx, `
		DELETE FROM categories
		WHERE id = ?
		  AND NOT EXISTS (SELECT 1 FROM subcategories WHERE category_id = categories.id)
	`, id))
}

func (r *CategoryRepo) CountSubcategories(ctx context.Context, id int64) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM subcategories WHERE category_id = ?`, id)
	return n, err
}

const subcategorySelect = `
  SELECT s.id, s.category_id, c.home_id, s.name
  FROM subcategories s
  JOIN categories c ON c.id = s.category_id`

func (r *CategoryRepo) GetSubcategory(ctx context.Context, id int64) (domain.Subcategory, error) {
	var s domain.Subcategory
	err := r.db.GetContext(ctx, &s, subcategorySelect+` WHERE s.id = ?`, id)
	return s, err
}

func (r *CategoryRepo) ListSubcategories(ctx context.Context, categoryID int64) ([]domain.Subcategory, error) {
	out := []domain.Subcategory{}
	err := r.db.SelectContext(ctx, &out, subcategorySelect+` WHERE s.category_id = ? ORDER BY s.name, s.id`, categoryID)
	return out, err
}

func (r *CategoryRepo) CreateSubcategory(ctx context.Context, categoryID int64, name string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `INSERT INTO subcategories(category_id, name) VALUES (?, ?)`, categoryID, name)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// DeleteSubcategory removes a subcategory that has no products. It returns
// sql.ErrNoRows when the subcategory is missing or still in use.
func (r *CategoryRepo) DeleteSubcategory(ctx context.Context, id int64) error {
	return mustAffect(r.db.ExecContext(ctx, `
		DELETE FROM subcategories
		WHERE id = ?
		  AND NOT EXISTS (SELECT 1 FROM products WHERE subcategory_id = subcategories.id)
	`, id))
}

func (r *CategoryRepo) CountProducts(ctx context.Context, subID int64) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM products WHERE subcategory_id = ?`, subID)
	return n, err
}

package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"homestock/internal/domain"
)

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

// stock_count is derived from the live batch rows on every read.
const productSelect = `
  SELECT
    p.id, p.home_id, p.subcategory_id, s.name AS subcategory_name,
    p.name, p.picture, p.mass, p.liquid,
    (SELECT COUNT(*) FROM batches b WHERE b.product_id = p.id) AS stock_count
  FROM products p
  JOIN subcategories s ON s.id = p.subcategory_id`

func (r *ProductRepo) Get(ctx context.Context, id int64) (domain.Product, error) {
	var p domain.Product
	err := r.db.GetContext(ctx, &p, productSelect+` WHERE p.id = ?`, id)
	return p, err
}

func (r *ProductRepo) ListByHome(ctx context.Context, homeID int64) ([]domain.Product, error) {
	out := []domain.Product{}
	err := r.db.SelectContext(ctx, &out, productSelect+` WHERE p.home_id = ? ORDER BY p.name, p.id`, homeID)
	return out, err
}

func (r *ProductRepo) ListBySubcategory(ctx context.Context, subID int64) ([]domain.Product, error) {
	out := []domain.Product{}
	err := r.db.SelectContext(ctx, &out, productSelect+` WHERE p.subcategory_id = ? ORDER BY p.name, p.id`, subID)
	return out, err
}

// ListMissingFromCart returns the household's products that have no line on
// the given cart.
func (r *ProductRepo) ListMissingFromCart(ctx context.Context, homeID, cartID int64) ([]domain.Product, error) {
	out := []domain.Product{}
	err := r.db.SelectContext(ctx, &out, productSelect+`
	  WHERE p.home_id = ?
	    AND NOT EXISTS (SELECT 1 FROM cart_lines cl WHERE cl.cart_id = ? AND cl.product_id = p.id)
	  ORDER BY p.name, p.id`, homeID, cartID)
	return out, err
}

type ProductInput struct {
	HomeID        int64
	SubcategoryID int64
	Name          string
	Picture       string
	Mass          *float64
	Liquid        *float64
}

func (r *ProductRepo) Create(ctx context.Context, in ProductInput) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO products(home_id, subcategory_id, name, picture, mass, liquid, created_at)
		VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`, in.HomeID, in.SubcategoryID, in.Name, in.Picture, in.Mass, in.Liquid)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *ProductRepo) Update(ctx context.Context, id int64, in ProductInput) error {
	return mustAffect(r.db.ExecContext(ctx, `
		UPDATE products
		SET subcategory_id = ?, name = ?, picture = ?, mass = ?, liquid = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, in.SubcategoryID, in.Name, in.Picture, in.Mass, in.Liquid, id))
}

// References counts the batches and cart lines pointing at a product.
func (r *ProductRepo) References(ctx context.Context, id int64) (batches, cartLines int, err error) {
	var refs struct {
		Batches   int `db:"batches"`
		CartLines int `db:"cart_lines"`
	}
	err = r.db.GetContext(ctx, &refs, `
		SELECT
		  (SELECT COUNT(*) FROM batches WHERE product_id = ?) AS batches,
		  (SELECT COUNT(*) FROM cart_lines WHERE product_id = ?) AS cart_lines
	`, id, id)
	return refs.Batches, refs.CartLines, err
}

// Delete removes a product no batch or cart line points at. The check and
// the delete are one statement, so nothing can cascade away in between. It
// returns sql.ErrNoRows when the product is missing or still referenced.
func (r *ProductRepo) Delete(ctx context.Context, id int64) error {
	return mustAffect(r.db.ExecContext(ctx, `
		DELETE FROM products
		WHERE id = ?
		  AND NOT EXISTS (SELECT 1 FROM batches WHERE product_id = products.id)
		  AND NOT EXISTS (SELECT 1 FROM cart_lines WHERE product_id = products.id)
	`, id))
}

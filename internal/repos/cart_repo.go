package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"homestock/internal/domain"
)

type CartRepo struct{ db *sqlx.DB }

func NewCartRepo(db *sqlx.DB) *CartRepo { return &CartRepo{db: db} }

// ByHome returns sql.ErrNoRows when the household has no cart yet.
func (r *CartRepo) ByHome(ctx context.Context, homeID int64) (domain.Cart, error) {
	var c domain.Cart
	err := r.db.GetContext(ctx, &c, `SELECT id, home_id FROM carts WHERE home_id = ?`, homeID)
	return c, err
}

// EnsureCart returns the household's cart, creating it on first access.
func (r *CartRepo) EnsureCart(ctx context.Context, homeID int64) (domain.Cart, error) {
	if _, err := r.db.ExecContext(ctx, `
		INSERT INTO carts(home_id, created_at, updated_at)
		VALUES (?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT(home_id) DO NOTHING
	`, homeID); err != nil {
		return domain.Cart{}, err
	}
	return r.ByHome(ctx, homeID)
}

// AddLine adds qty to the product's line, creating an unchecked line if none exists.
func (r *CartRepo) AddLine(ctx context.Context, cartID, productID int64, qty int) error {
	return inTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO cart_lines(cart_id, product_id, quantity, checked, created_at)
			VALUES (?, ?, ?, 0, CURRENT_TIMESTAMP)
			ON CONFLICT(cart_id, product_id) DO UPDATE
			SET quantity = cart_lines.quantity + excluded.quantity, updated_at = CURRENT_TIMESTAMP
		`, cartID, productID, qty); err != nil {
			return err
		}
		return touch(ctx, tx, cartID)
	})
}

type LinePatch struct {
	Quantity *int
	Checked  *bool
}

// UpdateLine applies only the fields set in patch. It returns sql.ErrNoRows
// when the line is not on the given cart.
func (r *CartRepo) UpdateLine(ctx context.Context, cartID, lineID int64, patch LinePatch) error {
	return inTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := mustAffect(tx.ExecContext(ctx, `
			UPDATE cart_lines
			SET quantity = COALESCE(?, quantity),
			    checked  = COALESCE(?, checked),
			    updated_at = CURRENT_TIMESTAMP
			WHERE id = ? AND cart_id = ?
		`, patch.Quantity, patch.Checked, lineID, cartID)); err != nil {
			return err
		}
		return touch(ctx, tx, cartID)
	})
}

// RemoveLine returns sql.ErrNoRows when the line is not on the given cart.
func (r *CartRepo) RemoveLine(ctx context.Context, cartID, lineID int64) error {
	return inTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := mustAffect(tx.ExecContext(ctx,
			`DELETE FROM cart_lines WHERE id = ? AND cart_id = ?`, lineID, cartID)); err != nil {
			return err
		}
		return touch(ctx, tx, cartID)
	})
}

// Clear empties the cart, or only its checked lines. The cart row stays.
func (r *CartRepo) Clear(ctx context.Context, cartID int64, onlyChecked bool) error {
	q := `DELETE FROM cart_lines WHERE cart_id = ?`
	if onlyChecked {
		q += ` AND checked = 1`
	}
	return inTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, q, cartID); err != nil {
			return err
		}
		return touch(ctx, tx, cartID)
	})
}

func (r *CartRepo) Lines(ctx context.Context, cartID int64) ([]domain.CartLine, error) {
	rows := []domain.CartLine{}
	err := r.db.SelectContext(ctx, &rows, `
	  SELECT cl.id, cl.product_id, p.name AS product_name, p.picture AS product_picture,
	         cl.quantity, cl.checked, p.subcategory_id, s.name AS subcategory_name
	  FROM cart_lines cl
	  JOIN products p ON p.id = cl.product_id
	  JOIN subcategories s ON s.id = p.subcategory_id
	  WHERE cl.cart_id = ?
	  ORDER BY cl.id
	`, cartID)
	return rows, err
}

func touch(ctx context.Context, q queryer, cartID int64) error {
	_, err := q.ExecContext(ctx, `UPDATE carts SET updated_at = CURRENT_TIMESTAMP WHERE id = ?`, cartID)
	return err
}

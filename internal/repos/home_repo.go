package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"homestock/internal/domain"
)

type HomeRepo struct{ db *sqlx.DB }

func NewHomeRepo(db *sqlx.DB) *HomeRepo { return &HomeRepo{db: db} }

func (r *HomeRepo) Get(ctx context.Context, id int64) (domain.Home, error) {
	var h domain.Home
	err := r.db.GetContext(ctx, &h, `SELECT id, name, COALESCE(created_at,'') AS created_at FROM homes WHERE id = ?`, id)
	return h, err
}

func (r *HomeRepo) Exists(ctx context.Context, id int64) (bool, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM homes WHERE id = ?`, id); err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListForUser returns every household the user holds a permission on.
func (r *HomeRepo) ListForUser(ctx context.Context, userID int64) ([]domain.Home, error) {
	out := []domain.Home{}
	err := r.db.SelectContext(ctx, &out, `
		SELECT h.id, h.name, COALESCE(h.created_at,'') AS created_at
		FROM homes h
		JOIN permissions p ON p.home_id = h.id
		WHERE p.user_id = ?
		ORDER BY h.name, h.id
	`, userID)
	return out, err
}

// Create inserts the household and its owner permission together.
func (r *HomeRepo) Create(ctx context.Context, name string, ownerID int64) (int64, error) {
	var id int64
	err := inTx(ctx, r.db, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `INSERT INTO homes(name, created_at) VALUES (?, CURRENT_TIMESTAMP)`, name)
		if err != nil {
			return err
		}
		if id, err = res.LastInsertId(); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `INSERT INTO permissions(home_id, user_id, type) VALUES (?, ?, ?)`,
			id, ownerID, domain.PermOwner)
		return err
	})
	return id, err
}

// Delete removes the household; everything scoped to it cascades.
func (r *HomeRepo) Delete(ctx context.Context, id int64) error {
	return mustAffect(r.db.ExecContext(ctx, `DELETE FROM homes WHERE id = ?`, id))
}

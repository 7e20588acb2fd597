package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"homestock/internal/domain"
)

type PermissionRepo struct{ db *sqlx.DB }

func NewPermissionRepo(db *sqlx.DB) *PermissionRepo { return &PermissionRepo{db: db} }

// Get returns sql.ErrNoRows when the user has no permission on the household.
func (r *PermissionRepo) Get(ctx context.Context, homeID, userID int64) (domain.Permission, error) {
	var p domain.Permission
	err := r.db.GetContext(ctx, &p, `
		SELECT id, home_id, user_id, type FROM permissions WHERE home_id = ? AND user_id = ?
	`, homeID, userID)
	return p, err
}

func (r *PermissionRepo) ListByHome(ctx context.Context, homeID int64) ([]domain.Permission, error) {
	out := []domain.Permission{}
	err := r.db.SelectContext(ctx, &out, `
		SELECT id, home_id, user_id, type FROM permissions WHERE home_id = ? ORDER BY id
	`, homeID)
	return out, err
}

func (r *PermissionRepo) HomeIDs(ctx context.Context, userID int64) ([]int64, error) {
	ids := []int64{}
	err := r.db.SelectContext(ctx, &ids, `SELECT home_id FROM permissions WHERE user_id = ? ORDER BY home_id`, userID)
	return ids, err
}

package repos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"homestock/internal/domain"
)

type InviteRepo struct{ db *sqlx.DB }

func NewInviteRepo(db *sqlx.DB) *InviteRepo { return &InviteRepo{db: db} }

type inviteRow struct {
	ID        int64  `db:"id"`
	Code      string `db:"code"`
	HomeID    int64  `db:"home_id"`
	Type      string `db:"type"`
	ExpiresAt int64  `db:"expires_at"`
}

func (r inviteRow) link() domain.InviteLink {
	return domain.InviteLink{
		ID:        r.ID,
		Code:      r.Code,
		HomeID:    r.HomeID,
		Type:      domain.PermissionType(r.Type),
		ExpiresAt: time.Unix(r.ExpiresAt, 0).UTC(),
	}
}

func (r *InviteRepo) Create(ctx context.Context, code string, homeID int64, typ domain.PermissionType, createdBy int64, expiresAt time.Time) (domain.InviteLink, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO invite_links(code, home_id, type, created_by, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`, code, homeID, typ, createdBy, expiresAt.Unix())
	if err != nil {
		return domain.InviteLink{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.InviteLink{}, err
	}
	return inviteRow{ID: id, Code: code, HomeID: homeID, Type: string(typ), ExpiresAt: expiresAt.Unix()}.link(), nil
}

// Redeem checks the code and grants its permission to userID in one
// transaction. The link is single use and is removed on success.
func (r *InviteRepo) Redeem(ctx context.Context, code string, userID int64, now time.Time) (domain.Permission, error) {
	var perm domain.Permission
	err := inTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var row inviteRow
		if err := tx.GetContext(ctx, &row, `
			SELECT id, code, home_id, type, expires_at FROM invite_links WHERE code = ?
		`, code); err != nil {
			if IsNoRows(err) {
				return domain.NotFound("invite link", code)
			}
			return err
		}
		if now.Unix() >= row.ExpiresAt {
			return domain.Expired("invite link has expired")
		}

		var n int
		if err := tx.GetContext(ctx, &n, `
			SELECT COUNT(*) FROM permissions WHERE home_id = ? AND user_id = ?
		`, row.HomeID, userID); err != nil {
			return err
		}
		if n > 0 {
			return domain.Conflict("user %d already has access to home %d", userID, row.HomeID)
		}

		res, err := tx.ExecContext(ctx, `INSERT INTO permissions(home_id, user_id, type) VALUES (?, ?, ?)`,
			row.HomeID, userID, row.Type)
		if err != nil {
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM invite_links WHERE id = ?`, row.ID); err != nil {
			return err
		}
		perm = domain.Permission{ID: id, HomeID: row.HomeID, UserID: userID, Type: domain.PermissionType(row.Type)}
		return nil
	})
	return perm, err
}

// PurgeExpired deletes links whose expiry has passed and reports how many went.
func (r *InviteRepo) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM invite_links WHERE expires_at <= ?`, now.Unix())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

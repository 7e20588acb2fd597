package repos

import (
	"context"

	"homestock/internal/domain"

	"github.com/jmoiron/sqlx"
)

type UserRepo struct{ DB *sqlx.DB }

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{DB: db} }

func (r *UserRepo) Create(ctx context.Context, email, name, hash string) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `INSERT INTO users(email,name,password_hash) VALUES(?,?,?)`, email, name, hash)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *UserRepo) ByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := r.DB.GetContext(ctx, &u, `SELECT id,email,name,password_hash FROM users WHERE LOWER(email)=LOWER(?)`, email)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) ByID(ctx context.Context, id int64) (*domain.User, error) {
	var u domain.User
	err := r.DB.GetContext(ctx, &u, `SELECT id,email,name,password_hash FROM users WHERE id=?`, id)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) BindSession(ctx context.Context, sid string, userID int64) error {
	_, err := r.DB.ExecContext(ctx, `INSERT INTO sessions(id,user_id,last_seen)
                          VALUES(?,?,CURRENT_TIMESTAMP)
                          ON CONFLICT(id) DO UPDATE SET user_id=excluded.user_id,last_seen=CURRENT_TIMESTAMP`, sid, userID)
	return err
}

func (r *UserRepo) SessionUser(ctx context.Context, sid string) (*domain.User, error) {
	var u domain.User
	err := r.DB.GetContext(ctx, &u, `
      SELECT u.id,u.email,u.name,u.password_hash
      FROM sessions s
      JOIN users u ON u.id=s.user_id
      WHERE s.id=?`, sid)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) UnbindSession(ctx context.Context, sid string) error {
	_, err := r.DB.ExecContext(ctx, `UPDATE sessions SET user_id=NULL,last_seen=CURRENT_TIMESTAMP WHERE id=?`, sid)
	return err
}

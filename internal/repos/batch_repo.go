package repos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/jmoiron/sqlx"

	"homestock/internal/domain"
)

type BatchRepo struct{ db *sqlx.DB }

func NewBatchRepo(db *sqlx.DB) *BatchRepo { return &BatchRepo{db: db} }

type batchRow struct {
	ID             int64          `db:"id"`
	ProductID      int64          `db:"product_id"`
	HomeID         int64          `db:"home_id"`
	ExpirationDate sql.NullString `db:"expiration_date"`
	ProductName    string         `db:"product_name"`
	ProductPicture string         `db:"product_picture"`
}

func (r batchRow) batch() (domain.Batch, error) {
	exp, err := scanDate(r.ExpirationDate)
	if err != nil {
		return domain.Batch{}, fmt.Errorf("batch %d: bad expiration date %q: %w", r.ID, r.ExpirationDate.String, err)
	}
	return domain.Batch{
		ID:             r.ID,
		ProductID:      r.ProductID,
		HomeID:         r.HomeID,
		ExpirationDate: exp,
		ProductName:    r.ProductName,
		ProductPicture: r.ProductPicture,
	}, nil
}

// fefoOrder is the canonical consumption order: soonest expiry first,
// undated units last, oldest row first among equals.
const fefoOrder = `b.expiration_date IS NULL, b.expiration_date, b.id`

const batchSelect = `
	SELECT b.id, b.product_id, b.home_id, b.expiration_date,
	       p.name AS product_name, p.picture AS product_picture
	FROM batches b
	JOIN products p ON p.id = b.product_id`

// BatchFilter narrows List. Zero values mean "no filter".
type BatchFilter struct {
	HomeIDs   []int64
	ProductID int64
	ExpiresBy *civil.Date
}

// List returns batches in FEFO order.
func (r *BatchRepo) List(ctx context.Context, f BatchFilter) ([]domain.Batch, error) {
	var (
		where []string
		args  []any
	)
	if len(f.HomeIDs) > 0 {
		where = append(where, `b.home_id IN (?)`)
		args = append(args, f.HomeIDs)
	}
	if f.ProductID != 0 {
		where = append(where, `b.product_id = ?`)
		args = append(args, f.ProductID)
	}
	if f.ExpiresBy != nil {
		where = append(where, `b.expiration_date IS NOT NULL AND b.expiration_date <= ?`)
		args = append(args, dateArg(f.ExpiresBy))
	}
	q := batchSelect
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, ` AND `)
	}
	q += ` ORDER BY ` + fefoOrder

	if len(f.HomeIDs) > 0 {
		var err error
		q, args, err = sqlx.In(q, args...)
		if err != nil {
			return nil, err
		}
	}

	var rows []batchRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(q), args...); err != nil {
		return nil, err
	}
	out := make([]domain.Batch, 0, len(rows))
	for _, row := range rows {
		b, err := row.batch()
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

// Get returns sql.ErrNoRows when the batch does not exist.
func (r *BatchRepo) Get(ctx context.Context, id int64) (domain.Batch, error) {
	var row batchRow
	if err := r.db.GetContext(ctx, &row, batchSelect+` WHERE b.id = ?`, id); err != nil {
		return domain.Batch{}, err
	}
	return row.batch()
}

func (r *BatchRepo) Count(ctx context.Context, productID int64) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM batches WHERE product_id = ?`, productID)
	return n, err
}

func (r *BatchRepo) Create(ctx context.Context, productID, homeID int64, exp *civil.Date) (int64, error) {
	return insertBatch(ctx, r.db, productID, homeID, exp)
}

// CreateMany inserts quantity rows in one transaction; either all of them
// exist afterwards or none do.
func (r *BatchRepo) CreateMany(ctx context.Context, productID, homeID int64, quantity int, exp *civil.Date) ([]int64, error) {
	if quantity < 1 || quantity > domain.MaxBulkQuantity {
		return nil, domain.Invalid("quantity must be between 1 and %d, got %d", domain.MaxBulkQuantity, quantity)
	}
	var ids []int64
	err := inTx(ctx, r.db, func(tx *sqlx.Tx) error {
		for i := 0; i < quantity; i++ {
			id, err := insertBatch(ctx, tx, productID, homeID, exp)
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func insertBatch(ctx context.Context, q queryer, productID, homeID int64, exp *civil.Date) (int64, error) {
	res, err := q.ExecContext(ctx, `
		INSERT INTO batches(product_id, home_id, expiration_date, created_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
	`, productID, homeID, dateArg(exp))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// UpdateExpiration returns sql.ErrNoRows when the batch does not exist.
func (r *BatchRepo) UpdateExpiration(ctx context.Context, id int64, exp *civil.Date) error {
	return mustAffect(r.db.ExecContext(ctx,
		`UPDATE batches SET expiration_date = ? WHERE id = ?`, dateArg(exp), id))
}

// Delete returns sql.ErrNoRows when the batch does not exist.
func (r *BatchRepo) Delete(ctx context.Context, id int64) error {
	return mustAffect(r.db.ExecContext(ctx, `DELETE FROM batches WHERE id = ?`, id))
}

// Consume deletes the first quantity batches of a product in FEFO order.
// Selection and deletion share one transaction and the delete is guarded by
// the captured id list: if fewer rows disappear than were selected, another
// consumer got there first and nothing is deleted.
func (r *BatchRepo) Consume(ctx context.Context, productID, homeID int64, quantity int) error {
	return inTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var ids []int64
		if err := tx.SelectContext(ctx, &ids, `
			SELECT b.id FROM batches b
			WHERE b.product_id = ? AND b.home_id = ?
			ORDER BY `+fefoOrder+`
			LIMIT ?
		`, productID, homeID, quantity); err != nil {
			return err
		}
		if len(ids) < quantity {
			return domain.InsufficientStock(len(ids), quantity)
		}

		query, args, err := sqlx.In(`DELETE FROM batches WHERE id IN (?) AND product_id = ? AND home_id = ?`,
			ids, productID, homeID)
		if err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, tx.Rebind(query), args...)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if int(n) != quantity {
			var left int
			if err := tx.GetContext(ctx, &left,
				`SELECT COUNT(*) FROM batches WHERE product_id = ? AND home_id = ?`, productID, homeID); err != nil {
				return err
			}
			// left still excludes our own n deletes; the rollback restores them.
			return domain.InsufficientStock(left+int(n), quantity)
		}
		return nil
	})
}

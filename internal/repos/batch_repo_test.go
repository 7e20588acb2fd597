package repos_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homestock/internal/domain"
	"homestock/internal/repos"
)

func memdb(t *testing.T) *sqlx.DB {
	t.Helper()
	return seeded(t, ":memory:")
}

// filedb opens a database file, so every pooled connection is a real
// concurrent writer.
func filedb(t *testing.T) *sqlx.DB {
	t.Helper()
	return seeded(t, filepath.Join(t.TempDir(), "homestock.db"))
}

func seeded(t *testing.T, dsn string) *sqlx.DB {
	t.Helper()
	db, err := repos.OpenDB(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	fixtures := `
	INSERT INTO homes(id,name) VALUES (1,'Flat'),(2,'Cabin');
	INSERT INTO categories(id,home_id,name) VALUES (1,1,'Dairy'),(2,2,'Dairy');
	INSERT INTO subcategories(id,category_id,name) VALUES (1,1,'Milk'),(2,2,'Milk');
	INSERT INTO products(id,home_id,subcategory_id,name,picture) VALUES
	  (10,1,1,'Milk','milk.jpg'),
	  (11,1,1,'Yoghurt','yoghurt.jpg'),
	  (20,2,2,'Milk','milk.jpg');
	`
	_, err = db.Exec(fixtures)
	require.NoError(t, err)
	return db
}

func date(y int, m time.Month, d int) *civil.Date {
	return &civil.Date{Year: y, Month: m, Day: d}
}

func TestBatchRepo_ListIsFEFOOrdered(t *testing.T) {
	ctx := context.Background()
	r := repos.NewBatchRepo(memdb(t))

	_, err := r.Create(ctx, 10, 1, nil)
	require.NoError(t, err)
	_, err = r.Create(ctx, 10, 1, date(2026, 5, 20))
	require.NoError(t, err)
	_, err = r.Create(ctx, 10, 1, date(2026, 5, 1))
	require.NoError(t, err)
	_, err = r.Create(ctx, 10, 1, nil)
	require.NoError(t, err)
	_, err = r.Create(ctx, 10, 1, date(2026, 5, 1))
	require.NoError(t, err)

	got, err := r.List(ctx, repos.BatchFilter{ProductID: 10})
	require.NoError(t, err)
	require.Len(t, got, 5)

	var ids []int64
	for _, b := range got {
		ids = append(ids, b.ID)
	}
	assert.Equal(t, []int64{3, 5, 2, 1, 4}, ids)
	assert.Equal(t, "Milk", got[0].ProductName)
	assert.Equal(t, "milk.jpg", got[0].ProductPicture)
	assert.Nil(t, got[4].ExpirationDate)
}

func TestBatchRepo_ListFiltersHomes(t *testing.T) {
	ctx := context.Background()
	r := repos.NewBatchRepo(memdb(t))
	_, err := r.Create(ctx, 10, 1, nil)
	require.NoError(t, err)
	_, err = r.Create(ctx, 20, 2, nil)
	require.NoError(t, err)

	all, err := r.List(ctx, repos.BatchFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	cabin, err := r.List(ctx, repos.BatchFilter{HomeIDs: []int64{2}})
	require.NoError(t, err)
	require.Len(t, cabin, 1)
	assert.Equal(t, int64(20), cabin[0].ProductID)
}

func TestBatchRepo_CreateManyIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	r := repos.NewBatchRepo(memdb(t))

	ids, err := r.CreateMany(ctx, 10, 1, 5, date(2026, 6, 1))
	require.NoError(t, err)
	assert.Len(t, ids, 5)

	_, err = r.CreateMany(ctx, 999, 1, 5, nil)
	require.Error(t, err)

	n, err := r.Count(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	n, err = r.Count(ctx, 999)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestBatchRepo_CreateManyRejectsOversizedQuantity(t *testing.T) {
	ctx := context.Background()
	r := repos.NewBatchRepo(memdb(t))

	for _, qty := range []int{0, domain.MaxBulkQuantity + 1, 1 << 50} {
		_, err := r.CreateMany(ctx, 10, 1, qty, nil)
		assert.True(t, domain.IsCode(err, domain.CodeInvalid), "quantity %d", qty)
	}
	n, err := r.Count(ctx, 10)
	require.NoError(t, err)
	assert.Zero(t, n)

	ids, err := r.CreateMany(ctx, 10, 1, domain.MaxBulkQuantity, nil)
	require.NoError(t, err)
	assert.Len(t, ids, domain.MaxBulkQuantity)
}

func TestBatchRepo_UpdateAndDeleteMissing(t *testing.T) {
	ctx := context.Background()
	r := repos.NewBatchRepo(memdb(t))

	assert.True(t, repos.IsNoRows(r.UpdateExpiration(ctx, 42, nil)))
	assert.True(t, repos.IsNoRows(r.Delete(ctx, 42)))

	id, err := r.Create(ctx, 10, 1, nil)
	require.NoError(t, err)
	require.NoError(t, r.UpdateExpiration(ctx, id, date(2027, 1, 2)))
	b, err := r.Get(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, b.ExpirationDate)
	assert.Equal(t, "2027-01-02", b.ExpirationDate.String())

	require.NoError(t, r.Delete(ctx, id))
	_, err = r.Get(ctx, id)
	assert.True(t, repos.IsNoRows(err))
}

func TestBatchRepo_ConsumeTakesEarliestFirst(t *testing.T) {
	ctx := context.Background()
	r := repos.NewBatchRepo(memdb(t))

	undated, _ := r.Create(ctx, 10, 1, nil)
	late, _ := r.Create(ctx, 10, 1, date(2026, 9, 1))
	early, _ := r.Create(ctx, 10, 1, date(2026, 8, 1))

	require.NoError(t, r.Consume(ctx, 10, 1, 1))
	left, err := r.List(ctx, repos.BatchFilter{ProductID: 10})
	require.NoError(t, err)
	require.Len(t, left, 2)
	assert.Equal(t, late, left[0].ID)
	assert.Equal(t, undated, left[1].ID)

	_, err = r.Get(ctx, early)
	assert.True(t, repos.IsNoRows(err))
}

func TestBatchRepo_ConsumeInsufficientLeavesStock(t *testing.T) {
	ctx := context.Background()
	r := repos.NewBatchRepo(memdb(t))
	_, err := r.Create(ctx, 10, 1, nil)
	require.NoError(t, err)

	err = r.Consume(ctx, 10, 1, 2)
	require.Error(t, err)
	var de *domain.Error
	require.ErrorAs(t, err, &de)
	assert.Equal(t, domain.CodeInsufficientStock, de.Code)
	assert.Equal(t, 1, de.Available)
	assert.Equal(t, 2, de.Requested)

	n, err := r.Count(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestBatchRepo_ConsumeIsScopedToHome(t *testing.T) {
	ctx := context.Background()
	r := repos.NewBatchRepo(memdb(t))
	_, err := r.Create(ctx, 10, 1, nil)
	require.NoError(t, err)

	err = r.Consume(ctx, 10, 2, 1)
	assert.True(t, domain.IsCode(err, domain.CodeInsufficientStock))
}

func TestBatchRepo_ConcurrentConsumersNeverOverdraw(t *testing.T) {
	ctx := context.Background()
	r := repos.NewBatchRepo(filedb(t))
	_, err := r.CreateMany(ctx, 10, 1, 20, nil)
	require.NoError(t, err)

	// 8 consumers want 3 each; only 6 can be served from 20 units.
	errs := consumeConcurrently(ctx, r, 8, 3)

	var served int
	for _, err := range errs {
		if err == nil {
			served++
			continue
		}
		assert.True(t, domain.IsCode(err, domain.CodeInsufficientStock), "unexpected error: %v", err)
	}
	assert.Equal(t, 6, served)
	n, err := r.Count(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestBatchRepo_ConcurrentConsumersWithEnoughStockAllSucceed(t *testing.T) {
	ctx := context.Background()
	r := repos.NewBatchRepo(filedb(t))
	_, err := r.CreateMany(ctx, 10, 1, 40, nil)
	require.NoError(t, err)

	for _, err := range consumeConcurrently(ctx, r, 8, 5) {
		assert.NoError(t, err)
	}
	n, err := r.Count(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func consumeConcurrently(ctx context.Context, r *repos.BatchRepo, workers, qty int) []error {
	var (
		wg    sync.WaitGroup
		start = make(chan struct{})
		errs  = make([]error, workers)
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			errs[i] = r.Consume(ctx, 10, 1, qty)
		}(i)
	}
	close(start)
	wg.Wait()
	return errs
}

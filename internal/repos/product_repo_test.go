package repos_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homestock/internal/repos"
)

func TestProductRepo_DeleteKeepsReferencedProducts(t *testing.T) {
	ctx := context.Background()
	db := memdb(t)
	products := repos.NewProductRepo(db)
	batches := repos.NewBatchRepo(db)
	carts := repos.NewCartRepo(db)

	// A batch lands after any earlier reference check; the delete must not
	// cascade it away.
	_, err := batches.Create(ctx, 10, 1, nil)
	require.NoError(t, err)
	assert.True(t, repos.IsNoRows(products.Delete(ctx, 10)))
	n, err := batches.Count(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	cart, err := carts.EnsureCart(ctx, 1)
	require.NoError(t, err)
	require.NoError(t, carts.AddLine(ctx, cart.ID, 11, 2))
	assert.True(t, repos.IsNoRows(products.Delete(ctx, 11)))
	lines, err := carts.Lines(ctx, cart.ID)
	require.NoError(t, err)
	assert.Len(t, lines, 1)

	require.NoError(t, products.Delete(ctx, 20))
	_, err = products.Get(ctx, 20)
	assert.True(t, repos.IsNoRows(err))
}

func TestCategoryRepo_DeleteKeepsNonEmptyParents(t *testing.T) {
	ctx := context.Background()
	cats := repos.NewCategoryRepo(memdb(t))

	assert.True(t, repos.IsNoRows(cats.DeleteSubcategory(ctx, 1)))
	assert.True(t, repos.IsNoRows(cats.Delete(ctx, 1)))

	_, err := cats.GetSubcategory(ctx, 1)
	require.NoError(t, err)
	_, err = cats.Get(ctx, 1)
	require.NoError(t, err)
}

package repos_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homestock/internal/repos"
)

func TestCartRepo_EnsureCartIsLazyAndStable(t *testing.T) {
	ctx := context.Background()
	r := repos.NewCartRepo(memdb(t))

	_, err := r.ByHome(ctx, 1)
	assert.True(t, repos.IsNoRows(err))

	first, err := r.EnsureCart(ctx, 1)
	require.NoError(t, err)
	second, err := r.EnsureCart(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, int64(1), first.HomeID)
}

func TestCartRepo_AddLineIncrements(t *testing.T) {
	ctx := context.Background()
	r := repos.NewCartRepo(memdb(t))
	cart, err := r.EnsureCart(ctx, 1)
	require.NoError(t, err)

	require.NoError(t, r.AddLine(ctx, cart.ID, 10, 2))
	require.NoError(t, r.AddLine(ctx, cart.ID, 10, 1))

	lines, err := r.Lines(ctx, cart.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 3, lines[0].Quantity)
	assert.False(t, lines[0].Checked)
	assert.Equal(t, "Milk", lines[0].SubcategoryName)
}

func TestCartRepo_PatchAndClear(t *testing.T) {
	ctx := context.Background()
	r := repos.NewCartRepo(memdb(t))
	cart, err := r.EnsureCart(ctx, 1)
	require.NoError(t, err)
	require.NoError(t, r.AddLine(ctx, cart.ID, 10, 2))
	require.NoError(t, r.AddLine(ctx, cart.ID, 11, 4))

	lines, err := r.Lines(ctx, cart.ID)
	require.NoError(t, err)
	milk := lines[0].ID

	checked := true
	require.NoError(t, r.UpdateLine(ctx, cart.ID, milk, repos.LinePatch{Checked: &checked}))
	lines, err = r.Lines(ctx, cart.ID)
	require.NoError(t, err)
	assert.True(t, lines[0].Checked)
	assert.Equal(t, 2, lines[0].Quantity)

	other, err := r.EnsureCart(ctx, 2)
	require.NoError(t, err)
	assert.True(t, repos.IsNoRows(r.UpdateLine(ctx, other.ID, milk, repos.LinePatch{Checked: &checked})))
	assert.True(t, repos.IsNoRows(r.RemoveLine(ctx, other.ID, milk)))

	require.NoError(t, r.Clear(ctx, cart.ID, true))
	lines, err = r.Lines(ctx, cart.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, int64(11), lines[0].ProductID)

	require.NoError(t, r.Clear(ctx, cart.ID, false))
	lines, err = r.Lines(ctx, cart.ID)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

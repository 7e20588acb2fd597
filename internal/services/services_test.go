package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"homestock/internal/repos"
	"homestock/internal/services"
)

var now = time.Date(2026, time.March, 10, 9, 30, 0, 0, time.UTC)

type stack struct {
	db      *sqlx.DB
	clock   services.Clock
	auth    *services.AuthService
	homes   *services.HomeService
	access  *services.AccessService
	catalog *services.CatalogService
	batches *services.BatchService
	stock   *services.StockService
	cart    *services.CartService
	invites *services.InviteService
}

func newStack(t *testing.T) *stack {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	clock := services.FixedClock(now)
	homeRepo := repos.NewHomeRepo(db)
	prodRepo := repos.NewProductRepo(db)
	cartRepo := repos.NewCartRepo(db)
	batchSvc := services.NewBatchService(repos.NewBatchRepo(db), prodRepo, homeRepo, clock)

	return &stack{
		db:      db,
		clock:   clock,
		auth:    services.NewAuthService(repos.NewUserRepo(db)),
		homes:   services.NewHomeService(homeRepo),
		access:  services.NewAccessService(repos.NewPermissionRepo(db)),
		catalog: services.NewCatalogService(homeRepo, repos.NewCategoryRepo(db), prodRepo),
		batches: batchSvc,
		stock:   services.NewStockService(batchSvc, prodRepo, cartRepo, homeRepo),
		cart:    services.NewCartService(cartRepo, prodRepo, homeRepo),
		invites: services.NewInviteService(repos.NewInviteRepo(db), homeRepo, clock),
	}
}

// household holds the ids created by seedHome.
type household struct {
	ownerID int64
	homeID  int64
	subID   int64
}

func (s *stack) seedHome(t *testing.T, email string) household {
	t.Helper()
	ctx := context.Background()
	u, err := s.auth.Register(ctx, email, "Owner", "Passw0rd!")
	require.NoError(t, err)
	h, err := s.homes.Create(ctx, "Flat of "+email, u.ID)
	require.NoError(t, err)
	cat, err := s.catalog.CreateCategory(ctx, h.ID, "Pantry")
	require.NoError(t, err)
	sub, err := s.catalog.CreateSubcategory(ctx, cat.ID, "Pasta")
	require.NoError(t, err)
	return household{ownerID: u.ID, homeID: h.ID, subID: sub.ID}
}

func (s *stack) product(t *testing.T, hh household, name string) services.ProductView {
	t.Helper()
	p, err := s.catalog.CreateProduct(context.Background(), services.ProductInput{
		HomeID:        hh.homeID,
		SubcategoryID: hh.subID,
		Name:          name,
		Picture:       name + ".png",
	})
	require.NoError(t, err)
	return p
}

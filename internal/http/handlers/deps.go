package handlers

import (
	"github.com/jmoiron/sqlx"

	"homestock/internal/repos"
	"homestock/internal/services"
)

type Deps struct {
	Auth    *services.AuthService
	Access  *services.AccessService
	Invites *services.InviteService

	AuthHandler     *AuthHandler
	HomeHandler     *HomeHandler
	CategoryHandler *CategoryHandler
	ProductHandler  *ProductHandler
	BatchHandler    *BatchHandler
	CartHandler     *CartHandler
	InviteHandler   *InviteHandler
}

func NewDeps(db *sqlx.DB, clock services.Clock) *Deps {
	userRepo := repos.NewUserRepo(db)
	homeRepo := repos.NewHomeRepo(db)
	permRepo := repos.NewPermissionRepo(db)
	catRepo := repos.NewCategoryRepo(db)
	prodRepo := repos.NewProductRepo(db)
	batchRepo := repos.NewBatchRepo(db)
	cartRepo := repos.NewCartRepo(db)
	inviteRepo := repos.NewInviteRepo(db)

	authSvc := services.NewAuthService(userRepo)
	accessSvc := services.NewAccessService(permRepo)
	homeSvc := services.NewHomeService(homeRepo)
	catalogSvc := services.NewCatalogService(homeRepo, catRepo, prodRepo)
	batchSvc := services.NewBatchService(batchRepo, prodRepo, homeRepo, clock)
	stockSvc := services.NewStockService(batchSvc, prodRepo, cartRepo, homeRepo)
	cartSvc := services.NewCartService(cartRepo, prodRepo, homeRepo)
	inviteSvc := services.NewInviteService(inviteRepo, homeRepo, clock)

	return &Deps{
		Auth:    authSvc,
		Access:  accessSvc,
		Invites: inviteSvc,

		AuthHandler:     &AuthHandler{Auth: authSvc},
		HomeHandler:     &HomeHandler{Homes: homeSvc, Access: accessSvc},
		CategoryHandler: &CategoryHandler{Catalog: catalogSvc, Access: accessSvc},
		ProductHandler:  &ProductHandler{Catalog: catalogSvc, Stock: stockSvc, Access: accessSvc},
		BatchHandler:    &BatchHandler{Batches: batchSvc, Catalog: catalogSvc, Access: accessSvc},
		CartHandler:     &CartHandler{Cart: cartSvc, Stock: stockSvc, Access: accessSvc},
		InviteHandler:   &InviteHandler{Invites: inviteSvc, Access: accessSvc},
	}
}

package services

import (
	"context"
	"fmt"

	"homestock/internal/repos"
)

type StockView struct {
	ProductID     int64       `json:"productId"`
	TotalQuantity int         `json:"totalQuantity"`
	Batches       []BatchView `json:"batches"`
}

// StockService derives stock figures from the batch rows. Nothing here is
// cached; every call reads the live rows.
type StockService struct {
	Batches  *BatchService
	Products *repos.ProductRepo
	Carts    *repos.CartRepo
	Homes    *repos.HomeRepo
}

func NewStockService(batches *BatchService, products *repos.ProductRepo, carts *repos.CartRepo, homes *repos.HomeRepo) *StockService {
	return &StockService{Batches: batches, Products: products, Carts: carts, Homes: homes}
}

func (s *StockService) GetStock(ctx context.Context, productID int64) (StockView, error) {
	bs, err := s.Batches.ListByProduct(ctx, productID)
	if err != nil {
		return StockView{}, err
	}
	return StockView{ProductID: productID, TotalQuantity: len(bs), Batches: bs}, nil
}

// Suggestions lists the household's products that need buying and are not
// on its cart yet.
func (s *StockService) Suggestions(ctx context.Context, homeID int64) ([]ProductView, error) {
	if err := s.Batches.home(ctx, homeID); err != nil {
		return nil, err
	}
	cart, err := s.Carts.EnsureCart(ctx, homeID)
	if err != nil {
		return nil, fmt.Errorf("ensure cart for home %d: %w", homeID, err)
	}
	ps, err := s.Products.ListMissingFromCart(ctx, homeID, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("list products missing from cart: %w", err)
	}
	out := []ProductView{}
	for _, p := range ps {
		if v := productView(p); v.NeedsToBuy {
			out = append(out, v)
		}
	}
	return out, nil
}

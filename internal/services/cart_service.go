package services

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"homestock/internal/domain"
	"homestock/internal/repos"
)

// CartView is returned by every cart read and mutation, recomputed from the
// stored lines each time.
type CartView struct {
	ID             int64             `json:"id"`
	HomeID         int64             `json:"homeId"`
	Products       []domain.CartLine `json:"products"`
	TotalItems     int               `json:"totalItems"`
	UncheckedItems int               `json:"uncheckedItems"`
}

type LinePatch struct {
	Quantity *int  `json:"quantity"`
	Checked  *bool `json:"checked"`
}

type CartService struct {
	Carts    *repos.CartRepo
	Products *repos.ProductRepo
	Homes    *repos.HomeRepo
}

func NewCartService(carts *repos.CartRepo, products *repos.ProductRepo, homes *repos.HomeRepo) *CartService {
	return &CartService{Carts: carts, Products: products, Homes: homes}
}

// GetOrCreate returns the household's cart, creating an empty one on first access.
func (s *CartService) GetOrCreate(ctx context.Context, homeID int64) (CartView, error) {
	ok, err := s.Homes.Exists(ctx, homeID)
	if err != nil {
		return CartView{}, fmt.Errorf("look up home %d: %w", homeID, err)
	}
	if !ok {
		return CartView{}, domain.NotFound("home", homeID)
	}
	c, err := s.Carts.EnsureCart(ctx, homeID)
	if err != nil {
		return CartView{}, fmt.Errorf("ensure cart for home %d: %w", homeID, err)
	}
	return s.view(ctx, c)
}

// AddProduct puts qty units of a product on the cart. A product already on
// the cart gets its quantity increased instead of a second line.
func (s *CartService) AddProduct(ctx context.Context, homeID, productID int64, qty int) (out CartView, err error) {
	ctx, span := startSpan(ctx, "cart.add_product",
		attribute.Int64("home.id", homeID),
		attribute.Int64("product.id", productID),
		attribute.Int("quantity", qty))
	defer func() { endSpan(span, err) }()

	if qty < 1 {
		return CartView{}, domain.Invalid("quantity must be at least 1, got %d", qty)
	}
	p, err := s.Products.Get(ctx, productID)
	if err != nil {
		if repos.IsNoRows(err) {
			return CartView{}, domain.NotFoundf("product %d not found in home %d", productID, homeID)
		}
		return CartView{}, fmt.Errorf("look up product %d: %w", productID, err)
	}
	if p.HomeID != homeID {
		return CartView{}, domain.NotFoundf("product %d not found in home %d", productID, homeID)
	}
	c, err := s.Carts.EnsureCart(ctx, homeID)
	if err != nil {
		return CartView{}, fmt.Errorf("ensure cart for home %d: %w", homeID, err)
	}
	if err := s.Carts.AddLine(ctx, c.ID, productID, qty); err != nil {
		return CartView{}, fmt.Errorf("add product %d to cart %d: %w", productID, c.ID, err)
	}
	return s.view(ctx, c)
}

func (s *CartService) UpdateLine(ctx context.Context, homeID, lineID int64, patch LinePatch) (out CartView, err error) {
	ctx, span := startSpan(ctx, "cart.update_line",
		attribute.Int64("home.id", homeID),
		attribute.Int64("line.id", lineID))
	defer func() { endSpan(span, err) }()

	if patch.Quantity != nil && *patch.Quantity < 1 {
		return CartView{}, domain.Invalid("quantity must be at least 1, got %d", *patch.Quantity)
	}
	c, err := s.cart(ctx, homeID)
	if err != nil {
		return CartView{}, err
	}
	if err := s.Carts.UpdateLine(ctx, c.ID, lineID, repos.LinePatch(patch)); err != nil {
		if repos.IsNoRows(err) {
			return CartView{}, domain.NotFound("cart line", lineID)
		}
		return CartView{}, fmt.Errorf("update cart line %d: %w", lineID, err)
	}
	return s.view(ctx, c)
}

func (s *CartService) RemoveLine(ctx context.Context, homeID, lineID int64) (out CartView, err error) {
	ctx, span := startSpan(ctx, "cart.remove_line",
		attribute.Int64("home.id", homeID),
		attribute.Int64("line.id", lineID))
	defer func() { endSpan(span, err) }()

	c, err := s.cart(ctx, homeID)
	if err != nil {
		return CartView{}, err
	}
	if err := s.Carts.RemoveLine(ctx, c.ID, lineID); err != nil {
		if repos.IsNoRows(err) {
			return CartView{}, domain.NotFound("cart line", lineID)
		}
		return CartView{}, fmt.Errorf("remove cart line %d: %w", lineID, err)
	}
	return s.view(ctx, c)
}

// Clear empties the cart, or only its checked lines. The cart itself stays.
func (s *CartService) Clear(ctx context.Context, homeID int64, onlyChecked bool) (out CartView, err error) {
	ctx, span := startSpan(ctx, "cart.clear",
		attribute.Int64("home.id", homeID),
		attribute.Bool("only_checked", onlyChecked))
	defer func() { endSpan(span, err) }()

	c, err := s.cart(ctx, homeID)
	if err != nil {
		return CartView{}, err
	}
	if err := s.Carts.Clear(ctx, c.ID, onlyChecked); err != nil {
		return CartView{}, fmt.Errorf("clear cart %d: %w", c.ID, err)
	}
	return s.view(ctx, c)
}

// cart loads an existing cart without creating one.
func (s *CartService) cart(ctx context.Context, homeID int64) (domain.Cart, error) {
	c, err := s.Carts.ByHome(ctx, homeID)
	if err != nil {
		if repos.IsNoRows(err) {
			return domain.Cart{}, domain.NotFound("cart for home", homeID)
		}
		return domain.Cart{}, fmt.Errorf("load cart for home %d: %w", homeID, err)
	}
	return c, nil
}

func (s *CartService) view(ctx context.Context, c domain.Cart) (CartView, error) {
	lines, err := s.Carts.Lines(ctx, c.ID)
	if err != nil {
		return CartView{}, fmt.Errorf("load cart lines: %w", err)
	}
	v := CartView{ID: c.ID, HomeID: c.HomeID, Products: lines}
	for _, l := range lines {
		v.TotalItems += l.Quantity
		if !l.Checked {
			v.UncheckedItems += l.Quantity
		}
	}
	return v, nil
}

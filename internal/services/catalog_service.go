package services

import (
	"context"
	"fmt"

	"homestock/internal/domain"
	"homestock/internal/repos"
)

// ProductView is what every product read returns. StockCount and NeedsToBuy
// come from the live batch rows at read time.
type ProductView struct {
	ID              int64    `json:"id"`
	HomeID          int64    `json:"homeId"`
	SubcategoryID   int64    `json:"subcategoryId"`
	SubcategoryName string   `json:"subcategoryName"`
	Name            string   `json:"name"`
	Picture         string   `json:"picture"`
	Mass            *float64 `json:"mass"`
	Liquid          *float64 `json:"liquid"`
	StockCount      int      `json:"stockCount"`
	NeedsToBuy      bool     `json:"needsToBuy"`
}

func productView(p domain.Product) ProductView {
	return ProductView{
		ID:              p.ID,
		HomeID:          p.HomeID,
		SubcategoryID:   p.SubcategoryID,
		SubcategoryName: p.SubcategoryName,
		Name:            p.Name,
		Picture:         p.Picture,
		Mass:            p.Mass,
		Liquid:          p.Liquid,
		StockCount:      p.StockCount,
		NeedsToBuy:      domain.NeedsToBuy(p.StockCount),
	}
}

func productViews(ps []domain.Product) []ProductView {
	out := make([]ProductView, 0, len(ps))
	for _, p := range ps {
		out = append(out, productView(p))
	}
	return out
}

type ProductInput struct {
	HomeID        int64    `json:"homeId"`
	SubcategoryID int64    `json:"subcategoryId"`
	Name          string   `json:"name"`
	Picture       string   `json:"picture"`
	Mass          *float64 `json:"mass"`
	Liquid        *float64 `json:"liquid"`
}

// ProductPatch changes only the fields that are set.
type ProductPatch struct {
	SubcategoryID *int64   `json:"subcategoryId"`
	Name          *string  `json:"name"`
	Picture       *string  `json:"picture"`
	Mass          *float64 `json:"mass"`
	Liquid        *float64 `json:"liquid"`
}

type CatalogService struct {
	Homes    *repos.HomeRepo
	Cats     *repos.CategoryRepo
	Products *repos.ProductRepo
}

func NewCatalogService(homes *repos.HomeRepo, cats *repos.CategoryRepo, products *repos.ProductRepo) *CatalogService {
	return &CatalogService{Homes: homes, Cats: cats, Products: products}
}

// ---------- Categories ----------

func (s *CatalogService) ListCategories(ctx context.Context, homeID int64) ([]domain.Category, error) {
	if err := s.requireHome(ctx, homeID); err != nil {
		return nil, err
	}
	return s.Cats.ListByHome(ctx, homeID)
}

func (s *CatalogService) GetCategory(ctx context.Context, id int64) (domain.Category, error) {
	c, err := s.Cats.Get(ctx, id)
	if err != nil {
		if repos.IsNoRows(err) {
			return domain.Category{}, domain.NotFound("category", id)
		}
		return domain.Category{}, fmt.Errorf("get category %d: %w", id, err)
	}
	return c, nil
}

func (s *CatalogService) CreateCategory(ctx context.Context, homeID int64, name string) (domain.Category, error) {
	if err := s.requireHome(ctx, homeID); err != nil {
		return domain.Category{}, err
	}
	id, err := s.Cats.Create(ctx, homeID, name)
	if err != nil {
		return domain.Category{}, fmt.Errorf("create category: %w", err)
	}
	return domain.Category{ID: id, HomeID: homeID, Name: name}, nil
}

func (s *CatalogService) DeleteCategory(ctx context.Context, id int64) error {
	if _, err := s.GetCategory(ctx, id); err != nil {
		return err
	}
	err := s.Cats.Delete(ctx, id)
	if err == nil || !repos.IsNoRows(err) {
		return wrapDelete("category", id, err)
	}
	if _, err := s.GetCategory(ctx, id); err != nil {
		return err
	}
	n, err := s.Cats.CountSubcategories(ctx, id)
	if err != nil {
		return fmt.Errorf("count subcategories: %w", err)
	}
	return domain.Conflict("category %d still has %d subcategories", id, n)
}

// ---------- Subcategories ----------

func (s *CatalogService) ListSubcategories(ctx context.Context, categoryID int64) ([]domain.Subcategory, error) {
	if _, err := s.GetCategory(ctx, categoryID); err != nil {
		return nil, err
	}
	return s.Cats.ListSubcategories(ctx, categoryID)
}

func (s *CatalogService) GetSubcategory(ctx context.Context, id int64) (domain.Subcategory, error) {
	sub, err := s.Cats.GetSubcategory(ctx, id)
	if err != nil {
		if repos.IsNoRows(err) {
			return domain.Subcategory{}, domain.NotFound("subcategory", id)
		}
		return domain.Subcategory{}, fmt.Errorf("get subcategory %d: %w", id, err)
	}
	return sub, nil
}

func (s *CatalogService) CreateSubcategory(ctx context.Context, categoryID int64, name string) (domain.Subcategory, error) {
	c, err := s.GetCategory(ctx, categoryID)
	if err != nil {
		return domain.Subcategory{}, err
	}
	id, err := s.Cats.CreateSubcategory(ctx, categoryID, name)
	if err != nil {
		return domain.Subcategory{}, fmt.Errorf("create subcategory: %w", err)
	}
	return domain.Subcategory{ID: id, CategoryID: categoryID, HomeID: c.HomeID, Name: name}, nil
}

func (s *CatalogService) DeleteSubcategory(ctx context.Context, id int64) error {
	if _, err := s.GetSubcategory(ctx, id); err != nil {
		return err
	}
	err := s.Cats.DeleteSubcategory(ctx, id)
	if err == nil || !repos.IsNoRows(err) {
		return wrapDelete("subcategory", id, err)
	}
	if _, err := s.GetSubcategory(ctx, id); err != nil {
		return err
	}
	n, err := s.Cats.CountProducts(ctx, id)
	if err != nil {
		return fmt.Errorf("count products: %w", err)
	}
	return domain.Conflict("subcategory %d still has %d products", id, n)
}

// ---------- Products ----------

func (s *CatalogService) GetProduct(ctx context.Context, id int64) (ProductView, error) {
	p, err := s.Products.Get(ctx, id)
	if err != nil {
		if repos.IsNoRows(err) {
			return ProductView{}, domain.NotFound("product", id)
		}
		return ProductView{}, fmt.Errorf("get product %d: %w", id, err)
	}
	return productView(p), nil
}

func (s *CatalogService) ListProductsByHome(ctx context.Context, homeID int64) ([]ProductView, error) {
	if err := s.requireHome(ctx, homeID); err != nil {
		return nil, err
	}
	ps, err := s.Products.ListByHome(ctx, homeID)
	if err != nil {
		return nil, fmt.Errorf("list products for home %d: %w", homeID, err)
	}
	return productViews(ps), nil
}

func (s *CatalogService) ListProductsBySubcategory(ctx context.Context, subID int64) ([]ProductView, error) {
	if _, err := s.GetSubcategory(ctx, subID); err != nil {
		return nil, err
	}
	ps, err := s.Products.ListBySubcategory(ctx, subID)
	if err != nil {
		return nil, fmt.Errorf("list products for subcategory %d: %w", subID, err)
	}
	return productViews(ps), nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, in ProductInput) (ProductView, error) {
	if in.Name == "" {
		return ProductView{}, domain.Invalid("product name is required")
	}
	if err := s.requireHome(ctx, in.HomeID); err != nil {
		return ProductView{}, err
	}
	if err := s.subcategoryInHome(ctx, in.SubcategoryID, in.HomeID); err != nil {
		return ProductView{}, err
	}
	id, err := s.Products.Create(ctx, repos.ProductInput(in))
	if err != nil {
		return ProductView{}, fmt.Errorf("create product: %w", err)
	}
	return s.GetProduct(ctx, id)
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id int64, patch ProductPatch) (ProductView, error) {
	cur, err := s.GetProduct(ctx, id)
	if err != nil {
		return ProductView{}, err
	}
	in := repos.ProductInput{
		HomeID:        cur.HomeID,
		SubcategoryID: cur.SubcategoryID,
		Name:          cur.Name,
		Picture:       cur.Picture,
		Mass:          cur.Mass,
		Liquid:        cur.Liquid,
	}
	if patch.SubcategoryID != nil {
		if err := s.subcategoryInHome(ctx, *patch.SubcategoryID, cur.HomeID); err != nil {
			return ProductView{}, err
		}
		in.SubcategoryID = *patch.SubcategoryID
	}
	if patch.Name != nil {
		if *patch.Name == "" {
			return ProductView{}, domain.Invalid("product name is required")
		}
		in.Name = *patch.Name
	}
	if patch.Picture != nil {
		in.Picture = *patch.Picture
	}
	if patch.Mass != nil {
		in.Mass = patch.Mass
	}
	if patch.Liquid != nil {
		in.Liquid = patch.Liquid
	}
	if err := s.Products.Update(ctx, id, in); err != nil {
		if repos.IsNoRows(err) {
			return ProductView{}, domain.NotFound("product", id)
		}
		return ProductView{}, fmt.Errorf("update product %d: %w", id, err)
	}
	return s.GetProduct(ctx, id)
}

// DeleteProduct refuses while any batch or cart line still references the product.
func (s *CatalogService) DeleteProduct(ctx context.Context, id int64) error {
	if _, err := s.GetProduct(ctx, id); err != nil {
		return err
	}
	err := s.Products.Delete(ctx, id)
	if err == nil || !repos.IsNoRows(err) {
		return wrapDelete("product", id, err)
	}
	// Nothing deleted: either someone else removed it or it is referenced.
	if _, err := s.GetProduct(ctx, id); err != nil {
		return err
	}
	batches, lines, err := s.Products.References(ctx, id)
	if err != nil {
		return fmt.Errorf("count product references: %w", err)
	}
	return domain.Conflict("product %d is still referenced by %d batches and %d cart lines", id, batches, lines)
}

func wrapDelete(kind string, id int64, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("delete %s %d: %w", kind, id, err)
}

func (s *CatalogService) requireHome(ctx context.Context, homeID int64) error {
	ok, err := s.Homes.Exists(ctx, homeID)
	if err != nil {
		return fmt.Errorf("look up home %d: %w", homeID, err)
	}
	if !ok {
		return domain.NotFound("home", homeID)
	}
	return nil
}

func (s *CatalogService) subcategoryInHome(ctx context.Context, subID, homeID int64) error {
	sub, err := s.GetSubcategory(ctx, subID)
	if err != nil {
		return err
	}
	if sub.HomeID != homeID {
		return domain.NotFoundf("subcategory %d not found in home %d", subID, homeID)
	}
	return nil
}

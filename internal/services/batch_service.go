package services

import (
	"context"
	"fmt"

	"cloud.google.com/go/civil"
	"go.opentelemetry.io/otel/attribute"

	"homestock/internal/domain"
	"homestock/internal/repos"
)

type ProductRef struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// BatchView is a batch annotated with its expiration status as of today.
type BatchView struct {
	ID             int64       `json:"id"`
	ProductID      int64       `json:"productId"`
	HomeID         int64       `json:"homeId"`
	ExpirationDate *civil.Date `json:"expirationDate"`
	Product        ProductRef  `json:"product"`
	domain.Expiry
	Status string `json:"status"`
}

type BatchInput struct {
	ProductID      int64       `json:"productId"`
	HomeID         int64       `json:"homeId"`
	ExpirationDate *civil.Date `json:"expirationDate"`
}

type BulkBatchInput struct {
	ProductID      int64       `json:"productId"`
	HomeID         int64       `json:"homeId"`
	Quantity       int         `json:"quantity"`
	ExpirationDate *civil.Date `json:"expirationDate"`
}

type ConsumeInput struct {
	ProductID int64 `json:"productId"`
	HomeID    int64 `json:"homeId"`
	Quantity  int   `json:"quantity"`
}

type BatchService struct {
	Batches  *repos.BatchRepo
	Products *repos.ProductRepo
	Homes    *repos.HomeRepo
	Clock    Clock
}

func NewBatchService(batches *repos.BatchRepo, products *repos.ProductRepo, homes *repos.HomeRepo, clock Clock) *BatchService {
	return &BatchService{Batches: batches, Products: products, Homes: homes, Clock: clock}
}

func (s *BatchService) view(b domain.Batch, today civil.Date) BatchView {
	e := domain.Classify(b.ExpirationDate, today)
	return BatchView{
		ID:             b.ID,
		ProductID:      b.ProductID,
		HomeID:         b.HomeID,
		ExpirationDate: b.ExpirationDate,
		Product:        ProductRef{ID: b.ProductID, Name: b.ProductName, Picture: b.ProductPicture},
		Expiry:         e,
		Status:         e.Status(),
	}
}

func (s *BatchService) views(bs []domain.Batch, keep func(domain.Expiry) bool) []BatchView {
	today := s.Clock.Today()
	out := make([]BatchView, 0, len(bs))
	for _, b := range bs {
		v := s.view(b, today)
		if keep != nil && !keep(v.Expiry) {
			continue
		}
		out = append(out, v)
	}
	return out
}

// ListAll lists batches in FEFO order, limited to homeIDs when any are given.
// A non-nil expiresBy keeps only dated batches expiring on or before it.
func (s *BatchService) ListAll(ctx context.Context, expiresBy *civil.Date, homeIDs ...int64) ([]BatchView, error) {
	bs, err := s.Batches.List(ctx, repos.BatchFilter{HomeIDs: homeIDs, ExpiresBy: expiresBy})
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	return s.views(bs, nil), nil
}

func (s *BatchService) ListByProduct(ctx context.Context, productID int64) ([]BatchView, error) {
	if _, err := s.product(ctx, productID); err != nil {
		return nil, err
	}
	bs, err := s.Batches.List(ctx, repos.BatchFilter{ProductID: productID})
	if err != nil {
		return nil, fmt.Errorf("list batches for product %d: %w", productID, err)
	}
	return s.views(bs, nil), nil
}

func (s *BatchService) ListExpired(ctx context.Context, homeID int64) ([]BatchView, error) {
	return s.listHome(ctx, homeID, func(e domain.Expiry) bool { return e.IsExpired })
}

func (s *BatchService) ListExpiringSoon(ctx context.Context, homeID int64) ([]BatchView, error) {
	return s.listHome(ctx, homeID, func(e domain.Expiry) bool { return e.ExpiringSoon })
}

func (s *BatchService) listHome(ctx context.Context, homeID int64, keep func(domain.Expiry) bool) ([]BatchView, error) {
	if err := s.home(ctx, homeID); err != nil {
		return nil, err
	}
	bs, err := s.Batches.List(ctx, repos.BatchFilter{HomeIDs: []int64{homeID}})
	if err != nil {
		return nil, fmt.Errorf("list batches for home %d: %w", homeID, err)
	}
	return s.views(bs, keep), nil
}

func (s *BatchService) Get(ctx context.Context, id int64) (BatchView, error) {
	b, err := s.Batches.Get(ctx, id)
	if err != nil {
		if repos.IsNoRows(err) {
			return BatchView{}, domain.NotFound("batch", id)
		}
		return BatchView{}, fmt.Errorf("get batch %d: %w", id, err)
	}
	return s.view(b, s.Clock.Today()), nil
}

func (s *BatchService) Create(ctx context.Context, in BatchInput) (BatchView, error) {
	if err := s.productInHome(ctx, in.ProductID, in.HomeID); err != nil {
		return BatchView{}, err
	}
	id, err := s.Batches.Create(ctx, in.ProductID, in.HomeID, in.ExpirationDate)
	if err != nil {
		return BatchView{}, fmt.Errorf("create batch: %w", err)
	}
	return s.Get(ctx, id)
}

// CreateMany adds Quantity units sharing one expiration date. Either every
// unit is stored or none is.
func (s *BatchService) CreateMany(ctx context.Context, in BulkBatchInput) (out []BatchView, err error) {
	ctx, span := startSpan(ctx, "batches.create_many",
		attribute.Int64("product.id", in.ProductID),
		attribute.Int64("home.id", in.HomeID),
		attribute.Int("quantity", in.Quantity))
	defer func() { endSpan(span, err) }()

	if in.Quantity < 1 || in.Quantity > domain.MaxBulkQuantity {
		return nil, domain.Invalid("quantity must be between 1 and %d, got %d", domain.MaxBulkQuantity, in.Quantity)
	}
	if err := s.productInHome(ctx, in.ProductID, in.HomeID); err != nil {
		return nil, err
	}
	ids, err := s.Batches.CreateMany(ctx, in.ProductID, in.HomeID, in.Quantity, in.ExpirationDate)
	if err != nil {
		return nil, fmt.Errorf("create %d batches: %w", in.Quantity, err)
	}

	all, err := s.Batches.List(ctx, repos.BatchFilter{ProductID: in.ProductID})
	if err != nil {
		return nil, fmt.Errorf("reload batches: %w", err)
	}
	created := make(map[int64]bool, len(ids))
	for _, id := range ids {
		created[id] = true
	}
	out = make([]BatchView, 0, len(ids))
	today := s.Clock.Today()
	for _, b := range all {
		if created[b.ID] {
			out = append(out, s.view(b, today))
		}
	}
	return out, nil
}

// Update changes the expiration date, the only mutable batch field.
func (s *BatchService) Update(ctx context.Context, id int64, exp *civil.Date) (BatchView, error) {
	if err := s.Batches.UpdateExpiration(ctx, id, exp); err != nil {
		if repos.IsNoRows(err) {
			return BatchView{}, domain.NotFound("batch", id)
		}
		return BatchView{}, fmt.Errorf("update batch %d: %w", id, err)
	}
	return s.Get(ctx, id)
}

// Remove deletes exactly one unit.
func (s *BatchService) Remove(ctx context.Context, id int64) error {
	if err := s.Batches.Delete(ctx, id); err != nil {
		if repos.IsNoRows(err) {
			return domain.NotFound("batch", id)
		}
		return fmt.Errorf("delete batch %d: %w", id, err)
	}
	return nil
}

// Consume removes Quantity units of a product, soonest expiry first. It
// deletes all of them or, when stock is short, none.
func (s *BatchService) Consume(ctx context.Context, in ConsumeInput) (err error) {
	ctx, span := startSpan(ctx, "batches.consume",
		attribute.Int64("product.id", in.ProductID),
		attribute.Int64("home.id", in.HomeID),
		attribute.Int("quantity", in.Quantity))
	defer func() { endSpan(span, err) }()

	if in.Quantity < 1 {
		return domain.Invalid("quantity must be at least 1, got %d", in.Quantity)
	}
	if err := s.Batches.Consume(ctx, in.ProductID, in.HomeID, in.Quantity); err != nil {
		if domain.ErrorCode(err) != "" {
			return err
		}
		return fmt.Errorf("consume product %d: %w", in.ProductID, err)
	}
	return nil
}

func (s *BatchService) home(ctx context.Context, homeID int64) error {
	ok, err := s.Homes.Exists(ctx, homeID)
	if err != nil {
		return fmt.Errorf("look up home %d: %w", homeID, err)
	}
	if !ok {
		return domain.NotFound("home", homeID)
	}
	return nil
}

func (s *BatchService) product(ctx context.Context, productID int64) (domain.Product, error) {
	p, err := s.Products.Get(ctx, productID)
	if err != nil {
		if repos.IsNoRows(err) {
			return domain.Product{}, domain.NotFound("product", productID)
		}
		return domain.Product{}, fmt.Errorf("look up product %d: %w", productID, err)
	}
	return p, nil
}

func (s *BatchService) productInHome(ctx context.Context, productID, homeID int64) error {
	if err := s.home(ctx, homeID); err != nil {
		return err
	}
	p, err := s.product(ctx, productID)
	if err != nil {
		return err
	}
	if p.HomeID != homeID {
		return domain.NotFoundf("product %d not found in home %d", productID, homeID)
	}
	return nil
}

package services

import (
	"context"
	"fmt"

	"homestock/internal/domain"
	"homestock/internal/repos"
)

type HomeService struct {
	Homes *repos.HomeRepo
}

func NewHomeService(homes *repos.HomeRepo) *HomeService { return &HomeService{Homes: homes} }

// Create makes a household owned by ownerID.
func (s *HomeService) Create(ctx context.Context, name string, ownerID int64) (domain.Home, error) {
	if name == "" {
		return domain.Home{}, domain.Invalid("home name is required")
	}
	id, err := s.Homes.Create(ctx, name, ownerID)
	if err != nil {
		return domain.Home{}, fmt.Errorf("create home: %w", err)
	}
	return s.Get(ctx, id)
}

func (s *HomeService) Get(ctx context.Context, id int64) (domain.Home, error) {
	h, err := s.Homes.Get(ctx, id)
	if err != nil {
		if repos.IsNoRows(err) {
			return domain.Home{}, domain.NotFound("home", id)
		}
		return domain.Home{}, fmt.Errorf("get home %d: %w", id, err)
	}
	return h, nil
}

func (s *HomeService) ListForUser(ctx context.Context, userID int64) ([]domain.Home, error) {
	hs, err := s.Homes.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list homes for user %d: %w", userID, err)
	}
	return hs, nil
}

// Delete drops the household and everything scoped to it.
func (s *HomeService) Delete(ctx context.Context, id int64) error {
	if err := s.Homes.Delete(ctx, id); err != nil {
		if repos.IsNoRows(err) {
			return domain.NotFound("home", id)
		}
		return fmt.Errorf("delete home %d: %w", id, err)
	}
	return nil
}

package services

import (
	"context"
	"fmt"

	"homestock/internal/domain"
	"homestock/internal/repos"
)

// AccessService answers whether a user may act on a household.
type AccessService struct {
	Perms *repos.PermissionRepo
}

func NewAccessService(perms *repos.PermissionRepo) *AccessService {
	return &AccessService{Perms: perms}
}

// Require fails with Forbidden when the user holds no permission on the
// household, or only read access and write is requested.
func (s *AccessService) Require(ctx context.Context, userID, homeID int64, write bool) (domain.Permission, error) {
	p, err := s.Perms.Get(ctx, homeID, userID)
	if err != nil {
		if repos.IsNoRows(err) {
			return domain.Permission{}, domain.Forbidden(fmt.Sprintf("no access to home %d", homeID))
		}
		return domain.Permission{}, fmt.Errorf("load permission: %w", err)
	}
	if write && !p.Type.CanWrite() {
		return domain.Permission{}, domain.Forbidden(fmt.Sprintf("read-only access to home %d", homeID))
	}
	return p, nil
}

func (s *AccessService) RequireOwner(ctx context.Context, userID, homeID int64) error {
	p, err := s.Require(ctx, userID, homeID, false)
	if err != nil {
		return err
	}
	if p.Type != domain.PermOwner {
		return domain.Forbidden(fmt.Sprintf("only the owner of home %d may do this", homeID))
	}
	return nil
}

// HomeIDs lists every household the user can see.
func (s *AccessService) HomeIDs(ctx context.Context, userID int64) ([]int64, error) {
	ids, err := s.Perms.HomeIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list home ids for user %d: %w", userID, err)
	}
	return ids, nil
}

func (s *AccessService) Members(ctx context.Context, homeID int64) ([]domain.Permission, error) {
	return s.Perms.ListByHome(ctx, homeID)
}

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"homestock/internal/domain"
	applog "homestock/internal/log"
	"homestock/internal/repos"
)

type InviteService struct {
	Invites *repos.InviteRepo
	Homes   *repos.HomeRepo
	Clock   Clock
}

func NewInviteService(invites *repos.InviteRepo, homes *repos.HomeRepo, clock Clock) *InviteService {
	return &InviteService{Invites: invites, Homes: homes, Clock: clock}
}

// Create issues a single-use code granting typ on the household for InviteTTL.
func (s *InviteService) Create(ctx context.Context, homeID int64, typ domain.PermissionType, createdBy int64) (domain.InviteLink, error) {
	if typ != domain.PermRead && typ != domain.PermReadWrite {
		return domain.InviteLink{}, domain.Invalid("invite type must be read or read-write, got %q", typ)
	}
	ok, err := s.Homes.Exists(ctx, homeID)
	if err != nil {
		return domain.InviteLink{}, fmt.Errorf("look up home %d: %w", homeID, err)
	}
	if !ok {
		return domain.InviteLink{}, domain.NotFound("home", homeID)
	}
	link, err := s.Invites.Create(ctx, uuid.NewString(), homeID, typ, createdBy, s.Clock.Now().Add(domain.InviteTTL))
	if err != nil {
		return domain.InviteLink{}, fmt.Errorf("create invite: %w", err)
	}
	return link, nil
}

func (s *InviteService) Redeem(ctx context.Context, code string, userID int64) (domain.Permission, error) {
	p, err := s.Invites.Redeem(ctx, code, userID, s.Clock.Now())
	if err != nil {
		if domain.ErrorCode(err) != "" {
			return domain.Permission{}, err
		}
		return domain.Permission{}, fmt.Errorf("redeem invite: %w", err)
	}
	return p, nil
}

func (s *InviteService) PurgeExpired(ctx context.Context) (int64, error) {
	return s.Invites.PurgeExpired(ctx, s.Clock.Now())
}

// RunSweeper purges expired links every interval until ctx is done.
func (s *InviteService) RunSweeper(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := s.PurgeExpired(ctx)
			if err != nil {
				applog.Error(nil, "invite.purge", err, nil)
				continue
			}
			if n > 0 {
				applog.Info(nil, "invite.purge", map[string]any{"purged": n})
			}
		}
	}
}

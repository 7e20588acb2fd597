package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homestock/internal/domain"
	"homestock/internal/repos"
	"homestock/internal/services"
)

func TestInviteService_RedeemGrantsAccess(t *testing.T) {
	ctx := context.Background()
	s := newStack(t)
	hh := s.seedHome(t, "owner@example.com")
	guest, err := s.auth.Register(ctx, "guest@example.com", "Guest", "Passw0rd!")
	require.NoError(t, err)

	_, err = s.access.Require(ctx, guest.ID, hh.homeID, false)
	assert.True(t, domain.IsCode(err, domain.CodeForbidden))

	link, err := s.invites.Create(ctx, hh.homeID, domain.PermRead, hh.ownerID)
	require.NoError(t, err)
	assert.Equal(t, now.Add(domain.InviteTTL).Unix(), link.ExpiresAt.Unix())
	assert.NotEmpty(t, link.Code)

	perm, err := s.invites.Redeem(ctx, link.Code, guest.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PermRead, perm.Type)

	_, err = s.access.Require(ctx, guest.ID, hh.homeID, false)
	require.NoError(t, err)
	_, err = s.access.Require(ctx, guest.ID, hh.homeID, true)
	assert.True(t, domain.IsCode(err, domain.CodeForbidden), "read permission cannot write")
	assert.True(t, domain.IsCode(s.access.RequireOwner(ctx, guest.ID, hh.homeID), domain.CodeForbidden))
	require.NoError(t, s.access.RequireOwner(ctx, hh.ownerID, hh.homeID))

	_, err = s.invites.Redeem(ctx, link.Code, guest.ID)
	assert.True(t, domain.IsCode(err, domain.CodeNotFound), "links are single use")

	ids, err := s.access.HomeIDs(ctx, guest.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{hh.homeID}, ids)
}

func TestInviteService_RedeemFailures(t *testing.T) {
	ctx := context.Background()
	s := newStack(t)
	hh := s.seedHome(t, "owner@example.com")
	guest, err := s.auth.Register(ctx, "guest@example.com", "Guest", "Passw0rd!")
	require.NoError(t, err)

	_, err = s.invites.Redeem(ctx, "nope", guest.ID)
	assert.True(t, domain.IsCode(err, domain.CodeNotFound))

	_, err = s.invites.Create(ctx, hh.homeID, domain.PermOwner, hh.ownerID)
	assert.True(t, domain.IsCode(err, domain.CodeInvalid))
	_, err = s.invites.Create(ctx, 999, domain.PermRead, hh.ownerID)
	assert.True(t, domain.IsCode(err, domain.CodeNotFound))

	self, err := s.invites.Create(ctx, hh.homeID, domain.PermReadWrite, hh.ownerID)
	require.NoError(t, err)
	_, err = s.invites.Redeem(ctx, self.Code, hh.ownerID)
	assert.True(t, domain.IsCode(err, domain.CodeConflict))

	link, err := s.invites.Create(ctx, hh.homeID, domain.PermReadWrite, hh.ownerID)
	require.NoError(t, err)
	later := services.NewInviteService(repos.NewInviteRepo(s.db), repos.NewHomeRepo(s.db),
		services.FixedClock(now.Add(domain.InviteTTL+time.Minute)))
	_, err = later.Redeem(ctx, link.Code, guest.ID)
	assert.True(t, domain.IsCode(err, domain.CodeExpired))

	n, err := later.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	s := newStack(t)

	u, err := s.auth.Register(ctx, "Ada@example.com", "Ada", "Passw0rd!")
	require.NoError(t, err)
	_, err = s.auth.Register(ctx, "ada@example.com", "Ada", "Passw0rd!")
	assert.True(t, domain.IsCode(err, domain.CodeConflict))

	_, err = s.auth.Login(ctx, "sid-1", "ada@example.com", "wrong")
	assert.True(t, domain.IsCode(err, domain.CodeUnauthorized))

	got, err := s.auth.Login(ctx, "sid-1", "ada@example.com", "Passw0rd!")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	cur, err := s.auth.CurrentUser(ctx, "sid-1")
	require.NoError(t, err)
	assert.Equal(t, u.ID, cur.ID)

	require.NoError(t, s.auth.Logout(ctx, "sid-1"))
	_, err = s.auth.CurrentUser(ctx, "sid-1")
	assert.Error(t, err)
}

func TestHomeService_Lifecycle(t *testing.T) {
	ctx := context.Background()
	s := newStack(t)
	hh := s.seedHome(t, "owner@example.com")

	homes, err := s.homes.ListForUser(ctx, hh.ownerID)
	require.NoError(t, err)
	require.Len(t, homes, 1)

	_, err = s.homes.Create(ctx, "", hh.ownerID)
	assert.True(t, domain.IsCode(err, domain.CodeInvalid))

	require.NoError(t, s.homes.Delete(ctx, hh.homeID))
	_, err = s.homes.Get(ctx, hh.homeID)
	assert.True(t, domain.IsCode(err, domain.CodeNotFound))
	assert.True(t, domain.IsCode(s.homes.Delete(ctx, hh.homeID), domain.CodeNotFound))
}

func TestInviteService_SweeperPurgesUntilCancelled(t *testing.T) {
	s := newStack(t)
	hh := s.seedHome(t, "owner@example.com")
	_, err := s.invites.Create(context.Background(), hh.homeID, domain.PermRead, hh.ownerID)
	require.NoError(t, err)

	later := services.NewInviteService(repos.NewInviteRepo(s.db), repos.NewHomeRepo(s.db),
		services.FixedClock(now.Add(domain.InviteTTL+time.Hour)))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		later.RunSweeper(ctx, 5*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool {
		var n int
		if err := s.db.Get(&n, `SELECT COUNT(*) FROM invite_links`); err != nil {
			return false
		}
		return n == 0
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper did not stop after cancel")
	}
}

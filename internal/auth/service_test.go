package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/salon-scheduler/internal/cache"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
	"github.com/BruksfildServices01/salon-scheduler/internal/testutil"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	gdb := testutil.NewDB(t)
	svc := NewService(gdb, newTestManager(), NewBlacklist(gdb, cache.NewMemory()))
	return svc, gdb
}

func TestLoginOwnerAndClient(t *testing.T) {
	svc, gdb := newTestService(t)
	ctx := context.Background()

	salon := testutil.Salon(t, gdb, "Salon A")
	client := testutil.Client(t, gdb, salon.ID, "Maria", "11999999999", 0)

	res, err := svc.Login(ctx, " SALON.A@example.com ", testutil.Password)
	require.NoError(t, err)
	assert.Equal(t, models.RoleOwner, res.Identity.Role)
	assert.Equal(t, salon.ID, res.Identity.SalonID)

	res, err = svc.Login(ctx, *client.Email, testutil.Password)
	require.NoError(t, err)
	assert.Equal(t, models.RoleClient, res.Identity.Role)
	assert.Equal(t, client.ID, res.Identity.UserID)
}

func TestLoginDoesNotRevealUnknownEmail(t *testing.T) {
	svc, gdb := newTestService(t)
	ctx := context.Background()
	testutil.Salon(t, gdb, "Salon A")

	_, errUnknown := svc.Login(ctx, "nobody@example.com", "x")
	_, errWrong := svc.Login(ctx, "salon.a@example.com", "x")

	assert.Equal(t, errUnknown, errWrong)
	assert.True(t, httperr.IsBusiness(errUnknown, "invalid_credentials"))
}

func TestLoginGating(t *testing.T) {
	svc, gdb := newTestService(t)
	ctx := context.Background()

	unpaid := testutil.Salon(t, gdb, "Unpaid")
	require.NoError(t, gdb.Model(unpaid).Update("subscription_paid", false).Error)

	_, err := svc.Login(ctx, unpaid.Email, testutil.Password)
	assert.True(t, httperr.IsBusiness(err, "subscription_pending"))

	inactive := testutil.Salon(t, gdb, "Closed")
	require.NoError(t, gdb.Model(inactive).Update("active", false).Error)

	_, err = svc.Login(ctx, inactive.Email, testutil.Password)
	assert.True(t, httperr.IsBusiness(err, "salon_inactive"))

	// admins have no subscription
	admin := testutil.Admin(t, gdb)
	res, err := svc.Login(ctx, admin.Email, testutil.Password)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, res.Identity.Role)
}

func TestResolveRejectsBlacklistedToken(t *testing.T) {
	svc, gdb := newTestService(t)
	ctx := context.Background()
	testutil.Salon(t, gdb, "Salon A")

	res, err := svc.Login(ctx, "salon.a@example.com", testutil.Password)
	require.NoError(t, err)

	id, err := svc.Resolve(ctx, res.Tokens.AccessToken)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, id, res.Tokens.RefreshToken))

	_, err = svc.Resolve(ctx, res.Tokens.AccessToken)
	assert.True(t, httperr.IsBusiness(err, "token_revoked"))

	_, err = svc.Refresh(ctx, res.Tokens.RefreshToken)
	assert.True(t, httperr.IsBusiness(err, "token_revoked"))
}

func TestBlacklistWithoutCacheHitsDatabase(t *testing.T) {
	gdb := testutil.NewDB(t)
	ctx := context.Background()

	bl := NewBlacklist(gdb, nil)
	require.NoError(t, bl.Revoke(ctx, "tok", time.Now().Add(time.Hour)))
	// revoking twice is a no-op
	require.NoError(t, bl.Revoke(ctx, "tok", time.Now().Add(time.Hour)))

	revoked, err := bl.IsRevoked(ctx, "tok")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = bl.IsRevoked(ctx, "other")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, bl.Revoke(ctx, "old", time.Now().Add(-time.Hour)))
	n, err := bl.PurgeExpired(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestResolveRoleMismatchIsHardFailure(t *testing.T) {
	svc, gdb := newTestService(t)
	ctx := context.Background()

	salon := testutil.Salon(t, gdb, "Salon A")
	client := testutil.Client(t, gdb, salon.ID, "Maria", "", 0)
	require.Equal(t, salon.ID, client.ID, "fixture relies on colliding ids")

	// an owner token can never reach admin rights
	forged, err := svc.tokens.IssueAccess(salon.ID, models.RoleAdmin, salon.ID)
	require.NoError(t, err)
	_, err = svc.Resolve(ctx, forged)
	assert.True(t, httperr.IsBusiness(err, "invalid_token"))

	// a client id that does not exist is not retried as an owner
	ghost, err := svc.tokens.IssueAccess(999, models.RoleClient, salon.ID)
	require.NoError(t, err)
	_, err = svc.Resolve(ctx, ghost)
	assert.True(t, httperr.IsBusiness(err, "user_not_found"))

	// the client token resolves as a client, never as the owner with the same id
	tok, err := svc.tokens.IssueAccess(client.ID, models.RoleClient, salon.ID)
	require.NoError(t, err)
	id, err := svc.Resolve(ctx, tok)
	require.NoError(t, err)
	assert.True(t, id.IsClient())
	assert.Equal(t, client.ID, id.Client.ID)

	// refresh tokens are not accepted as access tokens
	pair, err := svc.tokens.Issue(salon.ID, models.RoleOwner, salon.ID)
	require.NoError(t, err)
	_, err = svc.Resolve(ctx, pair.RefreshToken)
	assert.True(t, httperr.IsBusiness(err, "invalid_token"))
}

func TestRefreshIssuesAccessToken(t *testing.T) {
	svc, gdb := newTestService(t)
	ctx := context.Background()
	testutil.Salon(t, gdb, "Salon A")

	res, err := svc.Login(ctx, "salon.a@example.com", testutil.Password)
	require.NoError(t, err)

	access, err := svc.Refresh(ctx, res.Tokens.RefreshToken)
	require.NoError(t, err)

	id, err := svc.Resolve(ctx, access)
	require.NoError(t, err)
	assert.True(t, id.IsOwner())
}

func TestChangePasswordClearsTempFlags(t *testing.T) {
	svc, gdb := newTestService(t)
	ctx := context.Background()

	salon := testutil.Salon(t, gdb, "Salon A")
	require.NoError(t, gdb.Model(salon).Updates(map[string]any{
		"has_temp_password": true,
		"is_first_login":    true,
	}).Error)
	require.NoError(t, gdb.First(salon, salon.ID).Error)

	id := salonIdentity(salon)
	err := svc.ChangePassword(ctx, id, "wrong", "novaSenha1")
	assert.True(t, httperr.IsBusiness(err, "wrong_password"))

	require.NoError(t, svc.ChangePassword(ctx, id, testutil.Password, "novaSenha1"))

	var reloaded models.Salon
	require.NoError(t, gdb.First(&reloaded, salon.ID).Error)
	assert.False(t, reloaded.HasTempPassword)
	assert.False(t, reloaded.IsFirstLogin)
	assert.True(t, CheckPassword(reloaded.PasswordHash, "novaSenha1"))
}

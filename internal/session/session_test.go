package session

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"rescue-console/internal/model"
	"rescue-console/internal/storage"
	"rescue-console/internal/token"
	"rescue-console/internal/token/tokentest"
)

func newState(t *testing.T, now time.Time) (*State, *token.Store) {
	t.Helper()
	tokens := token.NewStore(storage.NewMemory())
	return NewState(tokens, func() time.Time { return now }), tokens
}

func TestMissingToken(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	state, _ := newState(t, time.Now())
	require.False(t, state.IsAuthenticated(ctx))
	require.Equal(t, model.RoleMedic, state.Role(ctx))
	require.Equal(t, "", state.UserID(ctx))
	require.False(t, state.IsAdmin(ctx))

	info := state.Snapshot(ctx)
	require.False(t, info.Authenticated)
	require.Nil(t, info.ExpiresAt)
}

func TestExpiryBoundary(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	now := time.Unix(1_800_000_000, 0)

	state, tokens := newState(t, now)

	require.NoError(t, tokens.Set(ctx, tokentest.Mint(t, jwt.MapClaims{"exp": now.Unix() + 300})))
	require.True(t, state.IsAuthenticated(ctx))

	require.NoError(t, tokens.Set(ctx, tokentest.Mint(t, jwt.MapClaims{"exp": now.Unix() - 60})))
	require.False(t, state.IsAuthenticated(ctx))

	// exp equal to now is already expired
	require.NoError(t, tokens.Set(ctx, tokentest.Mint(t, jwt.MapClaims{"exp": now.Unix()})))
	require.False(t, state.IsAuthenticated(ctx))

	require.NoError(t, tokens.Set(ctx, tokentest.Mint(t, jwt.MapClaims{"exp": now.Unix() + 1})))
	require.True(t, state.IsAuthenticated(ctx))
}

func TestRoleAndUser(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	state, tokens := newState(t, time.Now())

	require.NoError(t, tokens.Set(ctx, tokentest.Valid(t, time.Hour, "Technical", 12)))
	require.Equal(t, model.RoleTechnical, state.Role(ctx))
	require.Equal(t, "12", state.UserID(ctx))
	require.False(t, state.IsAdmin(ctx))

	require.NoError(t, tokens.Set(ctx, tokentest.Valid(t, time.Hour, "", "e-9")))
	require.Equal(t, model.RoleMedic, state.Role(ctx))
	require.Equal(t, "e-9", state.UserID(ctx))

	require.NoError(t, tokens.Set(ctx, tokentest.Valid(t, time.Hour, "Administrator", nil)))
	require.True(t, state.IsAdmin(ctx))
	require.Equal(t, "", state.UserID(ctx))
}

func TestExpiredTokenStillReportsClaims(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	state, tokens := newState(t, time.Now())
	require.NoError(t, tokens.Set(ctx, tokentest.Expired(t)))

	require.False(t, state.IsAuthenticated(ctx))
	require.Equal(t, model.RoleTechnical, state.Role(ctx))
	require.Equal(t, "7", state.UserID(ctx))
}

func TestGarbledTokenDegrades(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	state, tokens := newState(t, time.Now())
	require.NoError(t, tokens.Set(ctx, "not-a-token"))

	require.NotPanics(t, func() {
		require.False(t, state.IsAuthenticated(ctx))
		require.Equal(t, model.RoleMedic, state.Role(ctx))
		require.Equal(t, "", state.UserID(ctx))
		require.False(t, state.IsAdmin(ctx))
	})
}

func TestSnapshotMatchesAccessors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	state, tokens := newState(t, time.Now())
	require.NoError(t, tokens.Set(ctx, tokentest.Valid(t, 10*time.Minute, "Administrator", "3")))

	info := state.Snapshot(ctx)
	require.Equal(t, state.IsAuthenticated(ctx), info.Authenticated)
	require.Equal(t, state.Role(ctx), info.Role)
	require.Equal(t, state.UserID(ctx), info.UserID)
	require.Equal(t, state.IsAdmin(ctx), info.IsAdmin)
	require.NotNil(t, info.ExpiresAt)
}

package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/salon-scheduler/internal/auth"
	"github.com/BruksfildServices01/salon-scheduler/internal/cache"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
	"github.com/BruksfildServices01/salon-scheduler/internal/testutil"
	"github.com/BruksfildServices01/salon-scheduler/internal/timezone"
	"github.com/BruksfildServices01/salon-scheduler/internal/usecase/salon"
)

func TestAddAndRun(t *testing.T) {
	s := NewScheduler(time.UTC, zap.NewNop())

	calls := 0
	require.NoError(t, s.Add(Job{
		Name: "count",
		Spec: "@every 1h",
		Task: func(ctx context.Context) (int64, error) {
			calls++
			_, hasDeadline := ctx.Deadline()
			assert.True(t, hasDeadline)
			return 3, nil
		},
	}))

	n, err := s.Run(context.Background(), "count")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.Equal(t, 1, calls)

	assert.Error(t, s.Add(Job{Name: "count", Spec: "@hourly", Task: nil}))
	assert.Error(t, s.Add(Job{Name: "bad", Spec: "not a spec"}))

	_, err = s.Run(context.Background(), "missing")
	assert.Error(t, err)
}

func TestRunReportsTaskError(t *testing.T) {
	s := NewScheduler(time.UTC, zap.NewNop())
	boom := errors.New("boom")
	require.NoError(t, s.Add(Job{
		Name: "fail",
		Spec: "@hourly",
		Task: func(context.Context) (int64, error) { return 0, boom },
	}))

	_, err := s.Run(context.Background(), "fail")
	assert.ErrorIs(t, err, boom)
}

func TestStartStop(t *testing.T) {
	s := NewScheduler(time.UTC, zap.NewNop())
	s.Start()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}

func TestRegisterMaintenanceJobs(t *testing.T) {
	db := testutil.NewDB(t)
	bl := auth.NewBlacklist(db, cache.NewMemory())
	salons := salon.NewService(db, nil, timezone.NewSystemClock("UTC"), zap.NewNop())

	s := NewScheduler(time.UTC, zap.NewNop())
	require.NoError(t, Register(s, Deps{Blacklist: bl, Salons: salons}))

	ctx := context.Background()
	require.NoError(t, bl.Revoke(ctx, "old-token", time.Now().Add(-time.Hour)))
	require.NoError(t, bl.Revoke(ctx, "live-token", time.Now().Add(time.Hour)))

	n, err := s.Run(ctx, PurgeBlacklist)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	var left int64
	db.Model(&models.TokenBlacklist{}).Count(&left)
	assert.Equal(t, int64(1), left)

	_, err = s.Run(ctx, OverdueSubscription)
	require.NoError(t, err)

	_, err = s.Run(ctx, NoShows)
	assert.Error(t, err, "not registered without a dependency")
}

package services

import (
	"context"
	"testing"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PublicAI01/publicai-staking/internal/types"
)

func TestAdminOps_OwnerGate(t *testing.T) {
	tests := []struct {
		name         string
		caller       string
		deposit      math.Uint
		expectedCode types.ErrorCode
	}{
		{
			name:         "non-owner rejected",
			caller:       "mallory.node0",
			deposit:      math.OneUint(),
			expectedCode: types.Unauthorized,
		},
		{
			name:         "owner without confirmation deposit rejected",
			caller:       testOwner,
			deposit:      math.ZeroUint(),
			expectedCode: types.Unauthorized,
		},
		{
			name:         "owner with oversized deposit rejected",
			caller:       testOwner,
			deposit:      math.NewUint(5),
			expectedCode: types.Unauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			ctx := context.Background()

			terr := env.svc.SetStakePaused(ctx, tt.caller, tt.deposit, true)
			require.NotNil(t, terr)
			assert.Equal(t, tt.expectedCode, terr.ErrorCode)

			params, err := env.db.GetGlobalParams(ctx)
			require.NoError(t, err)
			assert.False(t, params.StakePaused)
		})
	}
}

func TestAdminOps_UpdateParams(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	deposit := math.OneUint()

	require.Nil(t, env.svc.SetStakePaused(ctx, testOwner, deposit, true))
	require.Nil(t, env.svc.SetLockDuration(ctx, testOwner, deposit, 7200))
	require.Nil(t, env.svc.SetRequiredStakeAmount(ctx, testOwner, deposit, math.NewUint(2_000_000)))

	params, terr := env.svc.GetGlobalParams(ctx)
	require.Nil(t, terr)
	assert.True(t, params.StakePaused)
	assert.Equal(t, int64(7200), params.LockDurationSecs)
	assert.Equal(t, "2000000", params.RequiredStakeAmount)
}

func TestAdminOps_ZeroLockDurationAllowed(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// zero disables the lock window; only negatives are malformed
	require.Nil(t, env.svc.SetLockDuration(ctx, testOwner, math.OneUint(), 0))

	params, terr := env.svc.GetGlobalParams(ctx)
	require.Nil(t, terr)
	assert.Equal(t, int64(0), params.LockDurationSecs)
}

func TestAdminOps_InvalidValues(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	deposit := math.OneUint()

	terr := env.svc.SetLockDuration(ctx, testOwner, deposit, -1)
	require.NotNil(t, terr)
	assert.Equal(t, types.ValidationError, terr.ErrorCode)

	terr = env.svc.SetRequiredStakeAmount(ctx, testOwner, deposit, math.ZeroUint())
	require.NotNil(t, terr)
	assert.Equal(t, types.PolicyViolation, terr.ErrorCode)

	terr = env.svc.UpdateOwner(ctx, testOwner, deposit, "")
	require.NotNil(t, terr)
	assert.Equal(t, types.ValidationError, terr.ErrorCode)
}

func TestAdminOps_OwnershipTransfer(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	deposit := math.OneUint()
	newOwner := "new-owner.publicai"

	require.Nil(t, env.svc.UpdateOwner(ctx, testOwner, deposit, newOwner))

	// the old owner lost the admin surface, the new one gained it
	terr := env.svc.SetStakePaused(ctx, testOwner, deposit, true)
	require.NotNil(t, terr)
	assert.Equal(t, types.Unauthorized, terr.ErrorCode)

	require.Nil(t, env.svc.SetStakePaused(ctx, newOwner, deposit, true))
}

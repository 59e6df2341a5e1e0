package services

import (
	"context"
	"errors"
	"testing"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PublicAI01/publicai-staking/internal/db"
	"github.com/PublicAI01/publicai-staking/internal/types"
	"github.com/PublicAI01/publicai-staking/testutil"
)

func TestInitiateWithdrawal_BeforeLockElapsed(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	account := testutil.RandomAccount()
	env.stake(t, account)

	// one second short of the unlock boundary
	env.advance(testLockDuration - 1)
	_, terr := env.svc.InitiateWithdrawal(ctx, account, math.OneUint())
	require.NotNil(t, terr)
	assert.Equal(t, types.PolicyViolation, terr.ErrorCode)

	// nothing moved: record intact, account operable, no transfer submitted
	record, err := env.db.GetStakeRecord(ctx, account)
	require.NoError(t, err)
	assert.Equal(t, testStakeAmount, record.Amount)

	state, err := env.db.GetOperationState(ctx, account)
	require.NoError(t, err)
	assert.Equal(t, types.StateIdle, state)
	assert.Nil(t, env.token.LastCall())
}

func TestInitiateWithdrawal_AtUnlockBoundary(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	account := testutil.RandomAccount()
	env.stake(t, account)

	env.advance(testLockDuration)
	amount, terr := env.svc.InitiateWithdrawal(ctx, account, math.OneUint())
	require.Nil(t, terr)
	assert.Equal(t, testStakeAmount, amount.String())

	// optimistic removal happened, intent saved, transfer in flight
	_, err := env.db.GetStakeRecord(ctx, account)
	assert.True(t, db.IsNotFoundError(err))

	intent, err := env.db.GetPendingWithdrawal(ctx, account)
	require.NoError(t, err)
	assert.Equal(t, testStakeAmount, intent.Amount)

	call := env.token.LastCall()
	require.NotNil(t, call)
	assert.Equal(t, account, call.Recipient)
	assert.Equal(t, intent.RequestID, call.RequestID)
	assert.True(t, call.Amount.Equal(amount))

	state, err := env.db.GetOperationState(ctx, account)
	require.NoError(t, err)
	assert.Equal(t, types.StateUnstaking, state)

	// counters untouched until settlement
	stats, err := env.db.GetOverallStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, testStakeAmount, stats.TotalStakedUint().String())
	assert.Equal(t, int64(1), stats.TotalAccounts)
}

func TestInitiateWithdrawal_Rejections(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	account := testutil.RandomAccount()
	env.stake(t, account)
	env.advance(testLockDuration)

	t.Run("missing caller", func(t *testing.T) {
		_, terr := env.svc.InitiateWithdrawal(ctx, "", math.OneUint())
		require.NotNil(t, terr)
		assert.Equal(t, types.ValidationError, terr.ErrorCode)
	})

	t.Run("missing confirmation deposit", func(t *testing.T) {
		_, terr := env.svc.InitiateWithdrawal(ctx, account, math.ZeroUint())
		require.NotNil(t, terr)
		assert.Equal(t, types.Unauthorized, terr.ErrorCode)
	})

	t.Run("oversized confirmation deposit", func(t *testing.T) {
		_, terr := env.svc.InitiateWithdrawal(ctx, account, math.NewUint(2))
		require.NotNil(t, terr)
		assert.Equal(t, types.Unauthorized, terr.ErrorCode)
	})

	t.Run("no stake", func(t *testing.T) {
		_, terr := env.svc.InitiateWithdrawal(ctx, "nobody.node0", math.OneUint())
		require.NotNil(t, terr)
		assert.Equal(t, types.NotFound, terr.ErrorCode)
	})

	t.Run("operation in progress", func(t *testing.T) {
		other := testutil.RandomAccount()
		env.stake(t, other)
		env.advance(testLockDuration)
		require.NoError(t, env.db.UpdateOperationState(
			ctx, other, types.QualifiedStatesForStakeStart(), types.StateStaking,
		))

		_, terr := env.svc.InitiateWithdrawal(ctx, other, math.OneUint())
		require.NotNil(t, terr)
		assert.Equal(t, types.StateConflict, terr.ErrorCode)
	})
}

func TestInitiateWithdrawal_TransferSubmitFailureRollsBack(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	account := testutil.RandomAccount()
	env.stake(t, account)
	startTime := env.clock.Unix()

	env.advance(testLockDuration)
	env.token.Err = errors.New("ledger unreachable")

	_, terr := env.svc.InitiateWithdrawal(ctx, account, math.OneUint())
	require.NotNil(t, terr)
	assert.Equal(t, types.InternalServiceError, terr.ErrorCode)

	// the initiation is fully compensated inline
	record, err := env.db.GetStakeRecord(ctx, account)
	require.NoError(t, err)
	assert.Equal(t, testStakeAmount, record.Amount)
	assert.Equal(t, startTime, record.StartTime)

	_, err = env.db.GetPendingWithdrawal(ctx, account)
	assert.True(t, db.IsNotFoundError(err))

	state, err := env.db.GetOperationState(ctx, account)
	require.NoError(t, err)
	assert.Equal(t, types.StateIdle, state)
}

func TestFinalizeWithdrawal_Commit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	account := testutil.RandomAccount()
	env.stake(t, account)
	env.advance(testLockDuration)

	_, terr := env.svc.InitiateWithdrawal(ctx, account, math.OneUint())
	require.Nil(t, terr)
	requestID := env.token.LastCall().RequestID

	terr = env.svc.FinalizeWithdrawal(ctx, &types.SettlementEvent{
		RequestID: requestID,
		Account:   account,
		Success:   true,
	})
	require.Nil(t, terr)

	stats, err := env.db.GetOverallStats(ctx)
	require.NoError(t, err)
	assert.True(t, stats.TotalStakedUint().IsZero())
	assert.Equal(t, int64(0), stats.TotalAccounts)

	_, err = env.db.GetPendingWithdrawal(ctx, account)
	assert.True(t, db.IsNotFoundError(err))

	state, err := env.db.GetOperationState(ctx, account)
	require.NoError(t, err)
	assert.Equal(t, types.StateIdle, state)
}

func TestFinalizeWithdrawal_RollbackRestoresRecord(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	account := testutil.RandomAccount()
	env.stake(t, account)
	startTime := env.clock.Unix()
	env.advance(testLockDuration)

	_, terr := env.svc.InitiateWithdrawal(ctx, account, math.OneUint())
	require.Nil(t, terr)
	requestID := env.token.LastCall().RequestID

	terr = env.svc.FinalizeWithdrawal(ctx, &types.SettlementEvent{
		RequestID: requestID,
		Account:   account,
		Success:   false,
	})
	require.Nil(t, terr)

	// the exact prior record is back, including the lock clock
	record, err := env.db.GetStakeRecord(ctx, account)
	require.NoError(t, err)
	assert.Equal(t, testStakeAmount, record.Amount)
	assert.Equal(t, startTime, record.StartTime)

	// counters were never decremented, so they stay as they were
	stats, err := env.db.GetOverallStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, testStakeAmount, stats.TotalStakedUint().String())
	assert.Equal(t, int64(1), stats.TotalAccounts)

	state, err := env.db.GetOperationState(ctx, account)
	require.NoError(t, err)
	assert.Equal(t, types.StateIdle, state)

	// a restored stake can be withdrawn again
	_, terr = env.svc.InitiateWithdrawal(ctx, account, math.OneUint())
	require.Nil(t, terr)
}

func TestFinalizeWithdrawal_DuplicateDeliveryIsIgnored(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	account := testutil.RandomAccount()
	env.stake(t, account)
	env.advance(testLockDuration)

	_, terr := env.svc.InitiateWithdrawal(ctx, account, math.OneUint())
	require.Nil(t, terr)

	ev := &types.SettlementEvent{
		RequestID: env.token.LastCall().RequestID,
		Account:   account,
		Success:   true,
	}
	require.Nil(t, env.svc.FinalizeWithdrawal(ctx, ev))
	require.Nil(t, env.svc.FinalizeWithdrawal(ctx, ev))

	// the duplicate must not decrement the counters a second time
	stats, err := env.db.GetOverallStats(ctx)
	require.NoError(t, err)
	assert.True(t, stats.TotalStakedUint().IsZero())
	assert.Equal(t, int64(0), stats.TotalAccounts)
}

func TestFinalizeWithdrawal_MismatchedRequestIDIsIgnored(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	account := testutil.RandomAccount()
	env.stake(t, account)
	env.advance(testLockDuration)

	_, terr := env.svc.InitiateWithdrawal(ctx, account, math.OneUint())
	require.Nil(t, terr)

	terr = env.svc.FinalizeWithdrawal(ctx, &types.SettlementEvent{
		RequestID: "stale-request-id",
		Account:   account,
		Success:   true,
	})
	require.Nil(t, terr)

	// the pending withdrawal is still waiting for its own outcome
	intent, err := env.db.GetPendingWithdrawal(ctx, account)
	require.NoError(t, err)
	assert.Equal(t, env.token.LastCall().RequestID, intent.RequestID)

	state, err := env.db.GetOperationState(ctx, account)
	require.NoError(t, err)
	assert.Equal(t, types.StateUnstaking, state)
}

func TestFinalizeWithdrawal_UnknownAccountIsNoop(t *testing.T) {
	env := newTestEnv(t)

	terr := env.svc.FinalizeWithdrawal(context.Background(), &types.SettlementEvent{
		RequestID: "whatever",
		Account:   "nobody.node0",
		Success:   true,
	})
	require.Nil(t, terr)
}

func TestWithdrawThenRestakeFullCycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	account := testutil.RandomAccount()
	env.stake(t, account)
	env.advance(testLockDuration)

	_, terr := env.svc.InitiateWithdrawal(ctx, account, math.OneUint())
	require.Nil(t, terr)
	require.Nil(t, env.svc.FinalizeWithdrawal(ctx, &types.SettlementEvent{
		RequestID: env.token.LastCall().RequestID,
		Account:   account,
		Success:   true,
	}))

	// the account can stake again from scratch
	env.stake(t, account)

	stats, err := env.db.GetOverallStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, testStakeAmount, stats.TotalStakedUint().String())
	assert.Equal(t, int64(1), stats.TotalAccounts)
}

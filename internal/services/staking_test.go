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

func TestHandleDeposit_ExactAmountAccepted(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	account := testutil.RandomAccount()

	unused, terr := env.svc.HandleDeposit(ctx, &TransferNotification{
		Contract: testTokenContract,
		Sender:   account,
		Amount:   math.NewUintFromString(testStakeAmount),
	})
	require.Nil(t, terr)
	assert.True(t, unused.IsZero())

	record, err := env.db.GetStakeRecord(ctx, account)
	require.NoError(t, err)
	assert.Equal(t, testStakeAmount, record.Amount)
	assert.Equal(t, env.clock.Unix(), record.StartTime)

	stats, err := env.db.GetOverallStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, testStakeAmount, stats.TotalStakedUint().String())
	assert.Equal(t, int64(1), stats.TotalAccounts)

	state, err := env.db.GetOperationState(ctx, account)
	require.NoError(t, err)
	assert.Equal(t, types.StateIdle, state)
}

func TestHandleDeposit_Rejections(t *testing.T) {
	tests := []struct {
		name         string
		notification TransferNotification
		expectedCode types.ErrorCode
	}{
		{
			name: "missing sender",
			notification: TransferNotification{
				Contract: testTokenContract,
				Amount:   math.NewUint(100),
			},
			expectedCode: types.ValidationError,
		},
		{
			name: "zero amount",
			notification: TransferNotification{
				Contract: testTokenContract,
				Sender:   "alice.node0",
				Amount:   math.ZeroUint(),
			},
			expectedCode: types.PolicyViolation,
		},
		{
			name: "wrong asset contract",
			notification: TransferNotification{
				Contract: "other-token.publicai",
				Sender:   "alice.node0",
				Amount:   math.NewUintFromString(testStakeAmount),
			},
			expectedCode: types.Unauthorized,
		},
		{
			name: "amount below required",
			notification: TransferNotification{
				Contract: testTokenContract,
				Sender:   "alice.node0",
				Amount:   math.NewUint(999_999),
			},
			expectedCode: types.PolicyViolation,
		},
		{
			name: "amount above required",
			notification: TransferNotification{
				Contract: testTokenContract,
				Sender:   "alice.node0",
				Amount:   math.NewUint(1_000_001),
			},
			expectedCode: types.PolicyViolation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			ctx := context.Background()

			unused, terr := env.svc.HandleDeposit(ctx, &tt.notification)
			require.NotNil(t, terr)
			assert.Equal(t, tt.expectedCode, terr.ErrorCode)
			// the full transfer must be returned to the sender
			assert.True(t, unused.Equal(tt.notification.Amount))

			// durable state stays untouched and the account is operable
			stats, err := env.db.GetOverallStats(ctx)
			require.NoError(t, err)
			assert.True(t, stats.TotalStakedUint().IsZero())
			assert.Equal(t, int64(0), stats.TotalAccounts)

			if tt.notification.Sender != "" {
				state, err := env.db.GetOperationState(ctx, tt.notification.Sender)
				require.NoError(t, err)
				assert.Equal(t, types.StateIdle, state)
			}
		})
	}
}

func TestHandleDeposit_PausedRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.Nil(t, env.svc.SetStakePaused(ctx, testOwner, math.OneUint(), true))

	amount := math.NewUintFromString(testStakeAmount)
	unused, terr := env.svc.HandleDeposit(ctx, &TransferNotification{
		Contract: testTokenContract,
		Sender:   "alice.node0",
		Amount:   amount,
	})
	require.NotNil(t, terr)
	assert.Equal(t, types.PolicyViolation, terr.ErrorCode)
	assert.True(t, unused.Equal(amount))
}

func TestHandleDeposit_AlreadyStakedRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	account := testutil.RandomAccount()
	env.stake(t, account)

	// any further deposit overshoots the required total
	amount := math.NewUint(1)
	unused, terr := env.svc.HandleDeposit(ctx, &TransferNotification{
		Contract: testTokenContract,
		Sender:   account,
		Amount:   amount,
	})
	require.NotNil(t, terr)
	assert.Equal(t, types.PolicyViolation, terr.ErrorCode)
	assert.True(t, unused.Equal(amount))

	record, err := env.db.GetStakeRecord(ctx, account)
	require.NoError(t, err)
	assert.Equal(t, testStakeAmount, record.Amount)
}

func TestHandleDeposit_TopUpAfterRequiredAmountRaised(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	account := testutil.RandomAccount()
	env.stake(t, account)
	firstStart := env.clock.Unix()

	require.Nil(t, env.svc.SetRequiredStakeAmount(
		ctx, testOwner, math.OneUint(), math.NewUint(1_500_000),
	))

	// a partial top-up must land exactly on the new required total
	env.advance(10)
	unused, terr := env.svc.HandleDeposit(ctx, &TransferNotification{
		Contract: testTokenContract,
		Sender:   account,
		Amount:   math.NewUint(400_000),
	})
	require.NotNil(t, terr)
	assert.Equal(t, types.PolicyViolation, terr.ErrorCode)
	assert.True(t, unused.Equal(math.NewUint(400_000)))

	unused, terr = env.svc.HandleDeposit(ctx, &TransferNotification{
		Contract: testTokenContract,
		Sender:   account,
		Amount:   math.NewUint(500_000),
	})
	require.Nil(t, terr)
	assert.True(t, unused.IsZero())

	// the completing deposit refreshes the lock clock
	record, err := env.db.GetStakeRecord(ctx, account)
	require.NoError(t, err)
	assert.Equal(t, "1500000", record.Amount)
	assert.Equal(t, firstStart+10, record.StartTime)

	stats, err := env.db.GetOverallStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1500000", stats.TotalStakedUint().String())
	assert.Equal(t, int64(1), stats.TotalAccounts)
}

func TestHandleDeposit_StatsFailureRollsBackFirstDeposit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	account := testutil.RandomAccount()

	env.db.FailNext["AddToOverallStats"] = errors.New("write concern timeout")

	amount := math.NewUintFromString(testStakeAmount)
	unused, terr := env.svc.HandleDeposit(ctx, &TransferNotification{
		Contract: testTokenContract,
		Sender:   account,
		Amount:   amount,
	})
	require.NotNil(t, terr)
	assert.Equal(t, types.InternalServiceError, terr.ErrorCode)
	assert.True(t, unused.Equal(amount))

	// the record write was undone so the ledger and counters still agree
	_, err := env.db.GetStakeRecord(ctx, account)
	assert.True(t, db.IsNotFoundError(err))

	stats, err := env.db.GetOverallStats(ctx)
	require.NoError(t, err)
	assert.True(t, stats.TotalStakedUint().IsZero())
	assert.Equal(t, int64(0), stats.TotalAccounts)

	state, err := env.db.GetOperationState(ctx, account)
	require.NoError(t, err)
	assert.Equal(t, types.StateIdle, state)

	// the account is not stuck: a retry goes through
	env.stake(t, account)
}

func TestHandleDeposit_StatsFailureRestoresPriorRecord(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	account := testutil.RandomAccount()
	env.stake(t, account)
	firstStart := env.clock.Unix()

	require.Nil(t, env.svc.SetRequiredStakeAmount(
		ctx, testOwner, math.OneUint(), math.NewUint(1_500_000),
	))

	env.advance(10)
	env.db.FailNext["AddToOverallStats"] = errors.New("write concern timeout")

	unused, terr := env.svc.HandleDeposit(ctx, &TransferNotification{
		Contract: testTokenContract,
		Sender:   account,
		Amount:   math.NewUint(500_000),
	})
	require.NotNil(t, terr)
	assert.Equal(t, types.InternalServiceError, terr.ErrorCode)
	assert.True(t, unused.Equal(math.NewUint(500_000)))

	// the pre-deposit record is back, including its lock clock
	record, err := env.db.GetStakeRecord(ctx, account)
	require.NoError(t, err)
	assert.Equal(t, testStakeAmount, record.Amount)
	assert.Equal(t, firstStart, record.StartTime)

	stats, err := env.db.GetOverallStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, testStakeAmount, stats.TotalStakedUint().String())
	assert.Equal(t, int64(1), stats.TotalAccounts)

	state, err := env.db.GetOperationState(ctx, account)
	require.NoError(t, err)
	assert.Equal(t, types.StateIdle, state)

	// the top-up succeeds once the counters are writable again
	unused, terr = env.svc.HandleDeposit(ctx, &TransferNotification{
		Contract: testTokenContract,
		Sender:   account,
		Amount:   math.NewUint(500_000),
	})
	require.Nil(t, terr)
	assert.True(t, unused.IsZero())
}

func TestHandleDeposit_ConflictsWithInFlightOperation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	account := testutil.RandomAccount()

	require.NoError(t, env.db.UpdateOperationState(
		ctx, account, types.QualifiedStatesForUnstakeStart(), types.StateUnstaking,
	))

	amount := math.NewUintFromString(testStakeAmount)
	unused, terr := env.svc.HandleDeposit(ctx, &TransferNotification{
		Contract: testTokenContract,
		Sender:   account,
		Amount:   amount,
	})
	require.NotNil(t, terr)
	assert.Equal(t, types.StateConflict, terr.ErrorCode)
	assert.True(t, unused.Equal(amount))
}

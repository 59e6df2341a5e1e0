//go:build integration

package db_test

import (
	"sync"
	"testing"
	"time"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PublicAI01/publicai-staking/internal/db"
	"github.com/PublicAI01/publicai-staking/internal/db/model"
)

func TestOverallStats(t *testing.T) {
	ctx := t.Context()
	t.Cleanup(func() {
		resetDatabase(t)
	})

	t.Run("missing document reads as zero", func(t *testing.T) {
		stats, err := testDB.GetOverallStats(ctx)
		require.NoError(t, err)
		assert.True(t, stats.TotalStakedUint().IsZero())
		assert.Equal(t, int64(0), stats.TotalAccounts)
	})

	t.Run("add and subtract", func(t *testing.T) {
		amount := math.NewUintFromString("1000000000000000000000000")

		require.NoError(t, testDB.AddToOverallStats(ctx, amount, 1))
		require.NoError(t, testDB.AddToOverallStats(ctx, amount, 1))

		stats, err := testDB.GetOverallStats(ctx)
		require.NoError(t, err)
		assert.Equal(t, amount.MulUint64(2).String(), stats.TotalStakedUint().String())
		assert.Equal(t, int64(2), stats.TotalAccounts)

		require.NoError(t, testDB.SubtractFromOverallStats(ctx, amount, 1))

		stats, err = testDB.GetOverallStats(ctx)
		require.NoError(t, err)
		assert.Equal(t, amount.String(), stats.TotalStakedUint().String())
		assert.Equal(t, int64(1), stats.TotalAccounts)
	})

	t.Run("concurrent increments apply exactly once each", func(t *testing.T) {
		resetDatabase(t)

		const workers = 20
		amount := math.NewUint(1000)

		var wg sync.WaitGroup
		wg.Add(workers)
		for i := 0; i < workers; i++ {
			go func() {
				defer wg.Done()
				assert.NoError(t, testDB.AddToOverallStats(ctx, amount, 1))
			}()
		}
		wg.Wait()

		stats, err := testDB.GetOverallStats(ctx)
		require.NoError(t, err)
		assert.Equal(t, amount.MulUint64(workers).String(), stats.TotalStakedUint().String())
		assert.Equal(t, int64(workers), stats.TotalAccounts)
	})
}

func TestPendingWithdrawals(t *testing.T) {
	ctx := t.Context()
	t.Cleanup(func() {
		resetDatabase(t)
	})

	intent := model.NewPendingWithdrawalDocument(
		"alice.node0", "req-1", math.NewUint(1_000_000), 1_700_000_000, time.Now(),
	)

	t.Run("save and get", func(t *testing.T) {
		require.NoError(t, testDB.SavePendingWithdrawal(ctx, intent))

		actual, err := testDB.GetPendingWithdrawal(ctx, "alice.node0")
		require.NoError(t, err)
		assert.Equal(t, intent.RequestID, actual.RequestID)
		assert.Equal(t, intent.Amount, actual.Amount)
		assert.Equal(t, intent.StartTime, actual.StartTime)
	})

	t.Run("second intent for the same account is rejected", func(t *testing.T) {
		duplicate := model.NewPendingWithdrawalDocument(
			"alice.node0", "req-2", math.NewUint(1_000_000), 1_700_000_000, time.Now(),
		)
		err := testDB.SavePendingWithdrawal(ctx, duplicate)
		assert.True(t, db.IsDuplicateKeyError(err))
	})

	t.Run("delete is one-shot", func(t *testing.T) {
		require.NoError(t, testDB.DeletePendingWithdrawal(ctx, "alice.node0"))

		err := testDB.DeletePendingWithdrawal(ctx, "alice.node0")
		assert.True(t, db.IsNotFoundError(err))

		_, err = testDB.GetPendingWithdrawal(ctx, "alice.node0")
		assert.True(t, db.IsNotFoundError(err))
	})
}

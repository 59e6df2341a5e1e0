package services

import (
	"context"
	"testing"
	"time"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/PublicAI01/publicai-staking/internal/config"
	"github.com/PublicAI01/publicai-staking/testutil"
)

const (
	testOwner         = "owner.publicai"
	testTokenContract = "token.publicai"
	testStakeAmount   = "1000000"
	testLockDuration  = int64(3600)
)

type testEnv struct {
	svc   *Service
	db    *testutil.MockDB
	token *testutil.MockTokenClient

	// clock is the frozen ledger time; tests move it forward explicitly.
	clock time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := &config.Config{
		Staking: config.StakingConfig{
			Owner:               testOwner,
			TokenContract:       testTokenContract,
			RequiredStakeAmount: testStakeAmount,
			LockDurationSecs:    testLockDuration,
		},
	}

	env := &testEnv{
		db:    testutil.NewMockDB(),
		token: testutil.NewMockTokenClient(),
		clock: time.Unix(1_700_000_000, 0),
	}
	env.svc = NewService(cfg, env.db, env.token)
	env.svc.now = func() time.Time { return env.clock }

	require.NoError(t, env.svc.Init(context.Background()))
	return env
}

func (e *testEnv) advance(secs int64) {
	e.clock = e.clock.Add(time.Duration(secs) * time.Second)
}

// stake runs a full required-amount deposit for the account and requires it
// to be accepted.
func (e *testEnv) stake(t *testing.T, account string) {
	t.Helper()

	unused, terr := e.svc.HandleDeposit(context.Background(), &TransferNotification{
		Contract: testTokenContract,
		Sender:   account,
		Amount:   math.NewUintFromString(testStakeAmount),
	})
	require.Nil(t, terr)
	require.True(t, unused.IsZero())
}

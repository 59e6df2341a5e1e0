package db

import (
	"context"
	"time"

	"cosmossdk.io/math"

	"github.com/PublicAI01/publicai-staking/internal/db/model"
	"github.com/PublicAI01/publicai-staking/internal/observability/metrics"
	"github.com/PublicAI01/publicai-staking/internal/types"
)

type DbWithMetrics struct {
	db DbInterface
}

func NewDbWithMetrics(db DbInterface) *DbWithMetrics {
	return &DbWithMetrics{db: db}
}

func (d *DbWithMetrics) Ping(ctx context.Context) error {
	return d.db.Ping(ctx)
}

func (d *DbWithMetrics) GetStakeRecord(ctx context.Context, account string) (result *model.StakeRecordDocument, err error) {
	//nolint:errcheck
	d.run("GetStakeRecord", func() error {
		result, err = d.db.GetStakeRecord(ctx, account)
		return err
	})
	return
}

func (d *DbWithMetrics) UpsertStakeRecord(ctx context.Context, record *model.StakeRecordDocument) error {
	return d.run("UpsertStakeRecord", func() error {
		return d.db.UpsertStakeRecord(ctx, record)
	})
}

func (d *DbWithMetrics) DeleteStakeRecord(ctx context.Context, account string) error {
	return d.run("DeleteStakeRecord", func() error {
		return d.db.DeleteStakeRecord(ctx, account)
	})
}

func (d *DbWithMetrics) FindStakeRecords(ctx context.Context, offset, limit int64) (result []model.StakeRecordDocument, err error) {
	//nolint:errcheck
	d.run("FindStakeRecords", func() error {
		result, err = d.db.FindStakeRecords(ctx, offset, limit)
		return err
	})
	return
}

func (d *DbWithMetrics) GetOperationState(ctx context.Context, account string) (result types.OperationState, err error) {
	//nolint:errcheck
	d.run("GetOperationState", func() error {
		result, err = d.db.GetOperationState(ctx, account)
		return err
	})
	return
}

func (d *DbWithMetrics) UpdateOperationState(
	ctx context.Context,
	account string,
	qualifiedPreviousStates []types.OperationState,
	newState types.OperationState,
) error {
	return d.run("UpdateOperationState", func() error {
		return d.db.UpdateOperationState(ctx, account, qualifiedPreviousStates, newState)
	})
}

func (d *DbWithMetrics) InitGlobalParams(ctx context.Context, params *model.GlobalParamsDocument) error {
	return d.run("InitGlobalParams", func() error {
		return d.db.InitGlobalParams(ctx, params)
	})
}

func (d *DbWithMetrics) GetGlobalParams(ctx context.Context) (result *model.GlobalParamsDocument, err error) {
	//nolint:errcheck
	d.run("GetGlobalParams", func() error {
		result, err = d.db.GetGlobalParams(ctx)
		return err
	})
	return
}

func (d *DbWithMetrics) SetStakePaused(ctx context.Context, paused bool) error {
	return d.run("SetStakePaused", func() error {
		return d.db.SetStakePaused(ctx, paused)
	})
}

func (d *DbWithMetrics) SetLockDuration(ctx context.Context, lockDurationSecs int64) error {
	return d.run("SetLockDuration", func() error {
		return d.db.SetLockDuration(ctx, lockDurationSecs)
	})
}

func (d *DbWithMetrics) SetRequiredStakeAmount(ctx context.Context, amount string) error {
	return d.run("SetRequiredStakeAmount", func() error {
		return d.db.SetRequiredStakeAmount(ctx, amount)
	})
}

func (d *DbWithMetrics) SetOwner(ctx context.Context, owner string) error {
	return d.run("SetOwner", func() error {
		return d.db.SetOwner(ctx, owner)
	})
}

func (d *DbWithMetrics) GetOverallStats(ctx context.Context) (result *model.OverallStatsDocument, err error) {
	//nolint:errcheck
	d.run("GetOverallStats", func() error {
		result, err = d.db.GetOverallStats(ctx)
		return err
	})
	return
}

func (d *DbWithMetrics) AddToOverallStats(ctx context.Context, amount math.Uint, accountsDelta int64) error {
	return d.run("AddToOverallStats", func() error {
		return d.db.AddToOverallStats(ctx, amount, accountsDelta)
	})
}

func (d *DbWithMetrics) SubtractFromOverallStats(ctx context.Context, amount math.Uint, accountsDelta int64) error {
	return d.run("SubtractFromOverallStats", func() error {
		return d.db.SubtractFromOverallStats(ctx, amount, accountsDelta)
	})
}

func (d *DbWithMetrics) SavePendingWithdrawal(ctx context.Context, doc *model.PendingWithdrawalDocument) error {
	return d.run("SavePendingWithdrawal", func() error {
		return d.db.SavePendingWithdrawal(ctx, doc)
	})
}

func (d *DbWithMetrics) GetPendingWithdrawal(ctx context.Context, account string) (result *model.PendingWithdrawalDocument, err error) {
	//nolint:errcheck
	d.run("GetPendingWithdrawal", func() error {
		result, err = d.db.GetPendingWithdrawal(ctx, account)
		return err
	})
	return
}

func (d *DbWithMetrics) DeletePendingWithdrawal(ctx context.Context, account string) error {
	return d.run("DeletePendingWithdrawal", func() error {
		return d.db.DeletePendingWithdrawal(ctx, account)
	})
}

// run is private method that executes passed lambda function and send metrics data with spent time, method name
// and an error if any. It returns the error from the lambda function for convenience
func (d *DbWithMetrics) run(method string, f func() error) error {
	startTime := time.Now()
	err := f()
	duration := time.Since(startTime)

	metrics.RecordDbLatency(duration, method, err != nil)
	return err
}

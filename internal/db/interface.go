package db

import (
	"context"

	"cosmossdk.io/math"

	"github.com/PublicAI01/publicai-staking/internal/db/model"
	"github.com/PublicAI01/publicai-staking/internal/types"
)

type DbInterface interface {
	Ping(ctx context.Context) error

	GetStakeRecord(ctx context.Context, account string) (*model.StakeRecordDocument, error)
	UpsertStakeRecord(ctx context.Context, record *model.StakeRecordDocument) error
	DeleteStakeRecord(ctx context.Context, account string) error
	FindStakeRecords(ctx context.Context, offset, limit int64) ([]model.StakeRecordDocument, error)

	GetOperationState(ctx context.Context, account string) (types.OperationState, error)
	UpdateOperationState(
		ctx context.Context,
		account string,
		qualifiedPreviousStates []types.OperationState,
		newState types.OperationState,
	) error

	InitGlobalParams(ctx context.Context, params *model.GlobalParamsDocument) error
	GetGlobalParams(ctx context.Context) (*model.GlobalParamsDocument, error)
	SetStakePaused(ctx context.Context, paused bool) error
	SetLockDuration(ctx context.Context, lockDurationSecs int64) error
	SetRequiredStakeAmount(ctx context.Context, amount string) error
	SetOwner(ctx context.Context, owner string) error

	GetOverallStats(ctx context.Context) (*model.OverallStatsDocument, error)
	AddToOverallStats(ctx context.Context, amount math.Uint, accountsDelta int64) error
	SubtractFromOverallStats(ctx context.Context, amount math.Uint, accountsDelta int64) error

	SavePendingWithdrawal(ctx context.Context, doc *model.PendingWithdrawalDocument) error
	GetPendingWithdrawal(ctx context.Context, account string) (*model.PendingWithdrawalDocument, error)
	DeletePendingWithdrawal(ctx context.Context, account string) error
}

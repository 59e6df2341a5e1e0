package services

import (
	"context"
	"fmt"

	"cosmossdk.io/math"
	"github.com/rs/zerolog/log"

	"github.com/PublicAI01/publicai-staking/internal/db"
	"github.com/PublicAI01/publicai-staking/internal/db/model"
	"github.com/PublicAI01/publicai-staking/internal/observability/metrics"
	"github.com/PublicAI01/publicai-staking/internal/types"
)

// TransferNotification is the inbound deposit event from the token ledger:
// Sender transferred Amount to the staking ledger's custody.
type TransferNotification struct {
	Contract string
	Sender   string
	Amount   math.Uint
	Memo     string
}

// HandleDeposit applies one deposit notification to the ledger. The returned
// amount is the unused part of the transfer: zero when the deposit was
// accepted (custody taken), the full amount when it was rejected and the
// asset must be returned to the sender. No partial acceptance exists.
//
// The operation is synchronous; every error path leaves the stake record,
// the operation state and the aggregate counters unchanged.
func (s *Service) HandleDeposit(
	ctx context.Context, n *TransferNotification,
) (math.Uint, *types.Error) {
	unused := n.Amount

	if n.Sender == "" {
		return unused, types.NewValidationFailedError(
			fmt.Errorf("deposit notification missing sender"),
		)
	}
	if n.Amount.IsZero() {
		return unused, types.NewPolicyViolationError(
			fmt.Errorf("deposit amount must be greater than 0"),
		)
	}
	if n.Contract != s.cfg.Staking.TokenContract {
		return unused, types.NewUnauthorizedError(
			fmt.Errorf("only transfers of %s can be staked, got %s",
				s.cfg.Staking.TokenContract, n.Contract),
		)
	}

	params, err := s.db.GetGlobalParams(ctx)
	if err != nil {
		return unused, types.NewInternalServiceError(
			fmt.Errorf("failed to get global params: %w", err),
		)
	}
	if params.StakePaused {
		return unused, types.NewPolicyViolationError(fmt.Errorf("stake paused"))
	}

	// Acquire the per-account lock. A concurrent deposit or withdrawal on
	// the same account loses here and nothing has been mutated yet.
	if err := s.db.UpdateOperationState(
		ctx, n.Sender, types.QualifiedStatesForStakeStart(), types.StateStaking,
	); err != nil {
		if db.IsStateConflictError(err) {
			metrics.RecordDeposit(false)
			return unused, types.NewStateConflictError(
				fmt.Errorf("stake or unstake operation already in progress for %s", n.Sender),
			)
		}
		return unused, types.NewInternalServiceError(
			fmt.Errorf("failed to start stake operation: %w", err),
		)
	}

	currentTime := s.nowUnix()

	baseAmount := math.ZeroUint()
	record, err := s.db.GetStakeRecord(ctx, n.Sender)
	if err != nil && !db.IsNotFoundError(err) {
		s.releaseLock(ctx, n.Sender, types.QualifiedStatesForStakeRelease())
		return unused, types.NewInternalServiceError(
			fmt.Errorf("failed to get stake record: %w", err),
		)
	}
	if record != nil {
		baseAmount = record.AmountUint()
	}

	// Deposits must land exactly on the required total, in one or more
	// increments. Anything else is rejected and the transfer returned.
	requiredAmount := params.RequiredStakeAmountUint()
	if !baseAmount.Add(n.Amount).Equal(requiredAmount) {
		s.releaseLock(ctx, n.Sender, types.QualifiedStatesForStakeRelease())
		metrics.RecordDeposit(false)
		return unused, types.NewPolicyViolationError(
			fmt.Errorf("deposit of %s does not reach the required stake amount %s exactly (current %s)",
				n.Amount, requiredAmount, baseAmount),
		)
	}

	accountsDelta := int64(0)
	if baseAmount.IsZero() {
		accountsDelta = 1
	}

	newRecord := model.NewStakeRecordDocument(
		n.Sender, baseAmount.Add(n.Amount), currentTime,
	)
	if err := s.db.UpsertStakeRecord(ctx, newRecord); err != nil {
		s.releaseLock(ctx, n.Sender, types.QualifiedStatesForStakeRelease())
		return unused, types.NewInternalServiceError(
			fmt.Errorf("failed to save stake record: %w", err),
		)
	}

	if err := s.db.AddToOverallStats(ctx, n.Amount, accountsDelta); err != nil {
		// The record write and the counter update must land together; undo
		// the record so the aggregates never disagree with the ledger, then
		// free the account for a clean retry.
		s.rollbackDeposit(ctx, n.Sender, record)
		return unused, types.NewInternalServiceError(
			fmt.Errorf("failed to update overall stats: %w", err),
		)
	}

	s.releaseLock(ctx, n.Sender, types.QualifiedStatesForStakeRelease())

	log.Ctx(ctx).Info().
		Str("account", n.Sender).
		Str("amount", n.Amount.String()).
		Int64("start_time", currentTime).
		Msg("Stake deposit accepted")
	metrics.RecordDeposit(true)

	return math.ZeroUint(), nil
}

// rollbackDeposit undoes the record upsert of a deposit whose counter update
// failed: the prior record, or its absence, is restored and the lock
// released. Every durable structure is back to its pre-call state.
func (s *Service) rollbackDeposit(
	ctx context.Context, account string, prior *model.StakeRecordDocument,
) {
	if prior == nil {
		if err := s.db.DeleteStakeRecord(ctx, account); err != nil && !db.IsNotFoundError(err) {
			log.Ctx(ctx).Error().
				Err(err).
				Str("account", account).
				Msg("Failed to remove stake record during deposit rollback")
		}
	} else if err := s.db.UpsertStakeRecord(ctx, prior); err != nil {
		log.Ctx(ctx).Error().
			Err(err).
			Str("account", account).
			Msg("Failed to restore stake record during deposit rollback")
	}
	s.releaseLock(ctx, account, types.QualifiedStatesForStakeRelease())
}

// releaseLock returns the account to Idle. A failure here is logged rather
// than returned: the caller's operation has already settled one way or the
// other, and surfacing a lock-release error would misreport it.
func (s *Service) releaseLock(
	ctx context.Context, account string, qualified []types.OperationState,
) {
	if err := s.db.UpdateOperationState(
		ctx, account, qualified, types.StateIdle,
	); err != nil {
		log.Ctx(ctx).Error().
			Err(err).
			Str("account", account).
			Msg("Failed to release operation lock back to idle")
	}
}

package services

import (
	"context"
	"fmt"

	"cosmossdk.io/math"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/PublicAI01/publicai-staking/internal/db"
	"github.com/PublicAI01/publicai-staking/internal/db/model"
	"github.com/PublicAI01/publicai-staking/internal/observability/metrics"
	"github.com/PublicAI01/publicai-staking/internal/types"
)

// InitiateWithdrawal starts the two-phase withdrawal of the caller's full
// principal. On success the stake record is already removed (optimistic
// removal) and an asynchronous transfer is in flight; the returned amount is
// what the caller will receive if settlement commits. The aggregate counters
// are not touched until the settlement event arrives.
func (s *Service) InitiateWithdrawal(
	ctx context.Context, caller string, attachedDeposit math.Uint,
) (math.Uint, *types.Error) {
	zero := math.ZeroUint()

	if caller == "" {
		return zero, types.NewValidationFailedError(fmt.Errorf("missing caller account"))
	}
	// The one-unit confirmation deposit is the explicit-intent signal
	// required on every state-mutating user call.
	if !attachedDeposit.Equal(math.OneUint()) {
		return zero, types.NewUnauthorizedError(
			fmt.Errorf("unstake requires an attached deposit of exactly 1"),
		)
	}

	record, err := s.db.GetStakeRecord(ctx, caller)
	if err != nil {
		if db.IsNotFoundError(err) {
			return zero, types.NewNotFoundError(
				fmt.Errorf("no stake found for this account"),
			)
		}
		return zero, types.NewInternalServiceError(
			fmt.Errorf("failed to get stake record: %w", err),
		)
	}

	params, err := s.db.GetGlobalParams(ctx)
	if err != nil {
		return zero, types.NewInternalServiceError(
			fmt.Errorf("failed to get global params: %w", err),
		)
	}

	// Timing is checked before any state mutation so a too-early attempt is
	// trivially retryable.
	currentTime := s.nowUnix()
	if terr := checkLockElapsed(record, params.LockDurationSecs, currentTime); terr != nil {
		return zero, terr
	}

	if err := s.db.UpdateOperationState(
		ctx, caller, types.QualifiedStatesForUnstakeStart(), types.StateUnstaking,
	); err != nil {
		if db.IsStateConflictError(err) {
			metrics.RecordWithdrawalInitiated(false)
			return zero, types.NewStateConflictError(
				fmt.Errorf("stake or unstake operation already in progress for %s", caller),
			)
		}
		return zero, types.NewInternalServiceError(
			fmt.Errorf("failed to start unstake operation: %w", err),
		)
	}

	// Re-read under the lock: the record is now the authoritative snapshot
	// that the optimistic removal and a possible rollback are based on.
	record, err = s.db.GetStakeRecord(ctx, caller)
	if err != nil {
		s.releaseLock(ctx, caller, types.QualifiedStatesForSettlement())
		if db.IsNotFoundError(err) {
			return zero, types.NewNotFoundError(
				fmt.Errorf("no stake found for this account"),
			)
		}
		return zero, types.NewInternalServiceError(
			fmt.Errorf("failed to get stake record: %w", err),
		)
	}
	// A deposit completing between the first read and the lock acquisition
	// refreshes start_time, so the timing check repeats on the snapshot.
	if terr := checkLockElapsed(record, params.LockDurationSecs, currentTime); terr != nil {
		s.releaseLock(ctx, caller, types.QualifiedStatesForSettlement())
		return zero, terr
	}

	totalPayout := record.AmountUint()
	requestID := uuid.New().String()

	intent := model.NewPendingWithdrawalDocument(
		caller, requestID, totalPayout, record.StartTime, s.now(),
	)
	if err := s.db.SavePendingWithdrawal(ctx, intent); err != nil {
		s.releaseLock(ctx, caller, types.QualifiedStatesForSettlement())
		return zero, types.NewInternalServiceError(
			fmt.Errorf("failed to save pending withdrawal: %w", err),
		)
	}

	// Optimistic removal: reads now see a zero balance for this account
	// while the operation state is Unstaking.
	if err := s.db.DeleteStakeRecord(ctx, caller); err != nil {
		s.rollbackInitiation(ctx, caller, record)
		return zero, types.NewInternalServiceError(
			fmt.Errorf("failed to remove stake record: %w", err),
		)
	}

	if err := s.token.Transfer(ctx, requestID, caller, totalPayout); err != nil {
		// The transfer request never reached the ledger, so no settlement
		// event will arrive; compensate inline instead of suspending.
		log.Ctx(ctx).Error().
			Err(err).
			Str("account", caller).
			Str("request_id", requestID).
			Msg("Failed to submit withdrawal transfer, rolling back")
		s.rollbackInitiation(ctx, caller, record)
		metrics.RecordWithdrawalInitiated(false)
		return zero, types.NewInternalServiceError(
			fmt.Errorf("failed to submit withdrawal transfer: %w", err),
		)
	}

	log.Ctx(ctx).Info().
		Str("account", caller).
		Str("amount", totalPayout.String()).
		Str("request_id", requestID).
		Msg("Unstake operation started, awaiting settlement")
	metrics.RecordWithdrawalInitiated(true)

	return totalPayout, nil
}

// FinalizeWithdrawal reconciles the ledger with the outcome of the external
// transfer. It runs at most once per initiated withdrawal: the pending
// intent document is the guard, and a duplicate or stale settlement event
// finds no matching intent and is ignored. It is reachable only from the
// settlement queue consumer, never from the HTTP surface.
func (s *Service) FinalizeWithdrawal(
	ctx context.Context, ev *types.SettlementEvent,
) *types.Error {
	intent, err := s.db.GetPendingWithdrawal(ctx, ev.Account)
	if err != nil {
		if db.IsNotFoundError(err) {
			log.Ctx(ctx).Debug().
				Str("account", ev.Account).
				Str("request_id", ev.RequestID).
				Msg("No pending withdrawal for settlement event, already finalized")
			return nil
		}
		return types.NewInternalServiceError(
			fmt.Errorf("failed to get pending withdrawal: %w", err),
		)
	}
	if intent.RequestID != ev.RequestID {
		log.Ctx(ctx).Warn().
			Str("account", ev.Account).
			Str("event_request_id", ev.RequestID).
			Str("pending_request_id", intent.RequestID).
			Msg("Settlement event does not match the pending withdrawal, ignoring")
		return nil
	}

	if ev.Success {
		// Commit: the record is already gone, only the aggregates move.
		if err := s.db.SubtractFromOverallStats(ctx, intent.AmountUint(), 1); err != nil {
			return types.NewInternalServiceError(
				fmt.Errorf("failed to update overall stats: %w", err),
			)
		}
		log.Ctx(ctx).Info().
			Str("account", ev.Account).
			Str("amount", intent.Amount).
			Msg("Withdrawal settled, principal transferred")
	} else {
		// Rollback: restore the exact prior record, counters untouched
		// because the optimistic removal never decremented them.
		restored := &model.StakeRecordDocument{
			Account:   ev.Account,
			Amount:    intent.Amount,
			StartTime: intent.StartTime,
		}
		if err := s.db.UpsertStakeRecord(ctx, restored); err != nil {
			return types.NewInternalServiceError(
				fmt.Errorf("failed to restore stake record: %w", err),
			)
		}
		log.Ctx(ctx).Warn().
			Str("account", ev.Account).
			Str("amount", intent.Amount).
			Msg("Withdrawal transfer failed, stake record restored")
	}

	if err := s.db.DeletePendingWithdrawal(ctx, ev.Account); err != nil && !db.IsNotFoundError(err) {
		return types.NewInternalServiceError(
			fmt.Errorf("failed to delete pending withdrawal: %w", err),
		)
	}

	// Either branch releases the lock; the account must never be left
	// permanently unable to operate.
	s.releaseLock(ctx, ev.Account, types.QualifiedStatesForSettlement())
	metrics.RecordSettlement(ev.Success)

	return nil
}

// rollbackInitiation undoes a partially initiated withdrawal before any
// settlement event can exist: restores the record, drops the intent and
// releases the lock.
func (s *Service) rollbackInitiation(
	ctx context.Context, account string, record *model.StakeRecordDocument,
) {
	if err := s.db.UpsertStakeRecord(ctx, record); err != nil {
		log.Ctx(ctx).Error().
			Err(err).
			Str("account", account).
			Msg("Failed to restore stake record during rollback")
	}
	if err := s.db.DeletePendingWithdrawal(ctx, account); err != nil && !db.IsNotFoundError(err) {
		log.Ctx(ctx).Error().
			Err(err).
			Str("account", account).
			Msg("Failed to delete pending withdrawal during rollback")
	}
	s.releaseLock(ctx, account, types.QualifiedStatesForSettlement())
}

func checkLockElapsed(
	record *model.StakeRecordDocument, lockDurationSecs, currentTime int64,
) *types.Error {
	unlockTime := record.StartTime + lockDurationSecs
	if currentTime < unlockTime {
		return types.NewPolicyViolationError(
			fmt.Errorf("it is not yet time to unstake: unlocks at %d, now %d",
				unlockTime, currentTime),
		)
	}
	return nil
}

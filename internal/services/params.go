package services

import (
	"context"
	"fmt"

	"cosmossdk.io/math"
	"github.com/rs/zerolog/log"

	"github.com/PublicAI01/publicai-staking/internal/db/model"
	"github.com/PublicAI01/publicai-staking/internal/types"
)

// requireOwner guards the admin surface: the one-unit confirmation deposit
// must be attached and the caller must be the stored owner. The current
// params are returned so the caller does not have to re-read them.
func (s *Service) requireOwner(
	ctx context.Context, caller string, attachedDeposit math.Uint,
) (*model.GlobalParamsDocument, *types.Error) {
	if !attachedDeposit.Equal(math.OneUint()) {
		return nil, types.NewUnauthorizedError(
			fmt.Errorf("admin operations require an attached deposit of exactly 1"),
		)
	}

	params, err := s.db.GetGlobalParams(ctx)
	if err != nil {
		return nil, types.NewInternalServiceError(
			fmt.Errorf("failed to get global params: %w", err),
		)
	}
	if caller != params.Owner {
		return nil, types.NewUnauthorizedError(
			fmt.Errorf("only the owner can perform this operation"),
		)
	}

	return params, nil
}

// SetStakePaused pauses or resumes acceptance of new deposits. In-flight
// withdrawals are unaffected.
func (s *Service) SetStakePaused(
	ctx context.Context, caller string, attachedDeposit math.Uint, paused bool,
) *types.Error {
	if _, terr := s.requireOwner(ctx, caller, attachedDeposit); terr != nil {
		return terr
	}

	if err := s.db.SetStakePaused(ctx, paused); err != nil {
		return types.NewInternalServiceError(
			fmt.Errorf("failed to set stake paused: %w", err),
		)
	}

	log.Ctx(ctx).Info().Bool("paused", paused).Msg("Stake paused updated")
	return nil
}

func (s *Service) SetLockDuration(
	ctx context.Context, caller string, attachedDeposit math.Uint, lockDurationSecs int64,
) *types.Error {
	if _, terr := s.requireOwner(ctx, caller, attachedDeposit); terr != nil {
		return terr
	}
	if lockDurationSecs < 0 {
		return types.NewValidationFailedError(
			fmt.Errorf("lock duration cannot be negative"),
		)
	}

	if err := s.db.SetLockDuration(ctx, lockDurationSecs); err != nil {
		return types.NewInternalServiceError(
			fmt.Errorf("failed to set lock duration: %w", err),
		)
	}

	log.Ctx(ctx).Info().Int64("lock_duration_secs", lockDurationSecs).Msg("Lock duration updated")
	return nil
}

func (s *Service) SetRequiredStakeAmount(
	ctx context.Context, caller string, attachedDeposit math.Uint, amount math.Uint,
) *types.Error {
	if _, terr := s.requireOwner(ctx, caller, attachedDeposit); terr != nil {
		return terr
	}
	if amount.IsZero() {
		return types.NewPolicyViolationError(
			fmt.Errorf("required stake amount must be greater than 0"),
		)
	}

	if err := s.db.SetRequiredStakeAmount(ctx, amount.String()); err != nil {
		return types.NewInternalServiceError(
			fmt.Errorf("failed to set required stake amount: %w", err),
		)
	}

	log.Ctx(ctx).Info().Str("amount", amount.String()).Msg("Required stake amount updated")
	return nil
}

func (s *Service) UpdateOwner(
	ctx context.Context, caller string, attachedDeposit math.Uint, newOwner string,
) *types.Error {
	params, terr := s.requireOwner(ctx, caller, attachedDeposit)
	if terr != nil {
		return terr
	}
	if newOwner == "" {
		return types.NewValidationFailedError(
			fmt.Errorf("new owner cannot be empty"),
		)
	}

	if err := s.db.SetOwner(ctx, newOwner); err != nil {
		return types.NewInternalServiceError(
			fmt.Errorf("failed to set owner: %w", err),
		)
	}

	log.Ctx(ctx).Info().
		Str("old_owner", params.Owner).
		Str("new_owner", newOwner).
		Msg("Owner updated")
	return nil
}

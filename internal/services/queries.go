package services

import (
	"context"
	"fmt"

	"github.com/PublicAI01/publicai-staking/internal/db"
	"github.com/PublicAI01/publicai-staking/internal/db/model"
	"github.com/PublicAI01/publicai-staking/internal/types"
)

// DefaultSearchLimit is the page size used when the caller does not supply one.
const DefaultSearchLimit = 50

// UserStakeInfo is the derived staking view for one account. Staked is true
// iff the recorded amount reaches the currently required stake amount.
type UserStakeInfo struct {
	Staked    bool   `json:"staked"`
	Amount    string `json:"amount"`
	StartTime int64  `json:"start_time"`
}

// GetStakeInfo returns the raw stake record for an account.
func (s *Service) GetStakeInfo(
	ctx context.Context, account string,
) (*model.StakeRecordDocument, *types.Error) {
	record, err := s.db.GetStakeRecord(ctx, account)
	if err != nil {
		if db.IsNotFoundError(err) {
			return nil, types.NewNotFoundError(
				fmt.Errorf("no stake record found for %s", account),
			)
		}
		return nil, types.NewInternalServiceError(
			fmt.Errorf("failed to get stake record: %w", err),
		)
	}
	return record, nil
}

// UserStaked never fails on unknown accounts: it returns the zero view with
// staked=false, matching the read-only query contract.
func (s *Service) UserStaked(
	ctx context.Context, account string,
) (*UserStakeInfo, *types.Error) {
	info := &UserStakeInfo{
		Staked:    false,
		Amount:    "0",
		StartTime: 0,
	}

	record, err := s.db.GetStakeRecord(ctx, account)
	if err != nil {
		if db.IsNotFoundError(err) {
			return info, nil
		}
		return nil, types.NewInternalServiceError(
			fmt.Errorf("failed to get stake record: %w", err),
		)
	}

	params, err := s.db.GetGlobalParams(ctx)
	if err != nil {
		return nil, types.NewInternalServiceError(
			fmt.Errorf("failed to get global params: %w", err),
		)
	}

	info.Staked = record.AmountUint().GTE(params.RequiredStakeAmountUint())
	info.Amount = record.Amount
	info.StartTime = record.StartTime
	return info, nil
}

// SearchStakeInfos returns one page of the ledger ordered by account.
// A non-positive limit falls back to DefaultSearchLimit.
func (s *Service) SearchStakeInfos(
	ctx context.Context, offset, limit int64,
) ([]model.StakeRecordDocument, *types.Error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	records, err := s.db.FindStakeRecords(ctx, offset, limit)
	if err != nil {
		return nil, types.NewInternalServiceError(
			fmt.Errorf("failed to find stake records: %w", err),
		)
	}
	return records, nil
}

// GetOverallStats returns the aggregate counters.
func (s *Service) GetOverallStats(
	ctx context.Context,
) (*model.OverallStatsDocument, *types.Error) {
	stats, err := s.db.GetOverallStats(ctx)
	if err != nil {
		return nil, types.NewInternalServiceError(
			fmt.Errorf("failed to get overall stats: %w", err),
		)
	}
	return stats, nil
}

// GetGlobalParams returns the current staking policy and owner identity.
func (s *Service) GetGlobalParams(
	ctx context.Context,
) (*model.GlobalParamsDocument, *types.Error) {
	params, err := s.db.GetGlobalParams(ctx)
	if err != nil {
		return nil, types.NewInternalServiceError(
			fmt.Errorf("failed to get global params: %w", err),
		)
	}
	return params, nil
}

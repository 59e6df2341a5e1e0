package services

import (
	"context"
	"fmt"
	"time"

	"github.com/PublicAI01/publicai-staking/internal/clients/tokenclient"
	"github.com/PublicAI01/publicai-staking/internal/config"
	"github.com/PublicAI01/publicai-staking/internal/db"
	"github.com/PublicAI01/publicai-staking/internal/db/model"
)

type Service struct {
	cfg   *config.Config
	db    db.DbInterface
	token tokenclient.TokenInterface

	// now is injectable for deterministic lock-duration tests.
	now func() time.Time
}

func NewService(
	cfg *config.Config,
	db db.DbInterface,
	token tokenclient.TokenInterface,
) *Service {
	return &Service{
		cfg:   cfg,
		db:    db,
		token: token,
		now:   time.Now,
	}
}

// Init seeds the global parameters from config on first start. An already
// initialized ledger keeps its stored parameters; owner admin calls are the
// only way to change them afterwards.
func (s *Service) Init(ctx context.Context) error {
	params := &model.GlobalParamsDocument{
		Owner:               s.cfg.Staking.Owner,
		RequiredStakeAmount: s.cfg.Staking.RequiredStakeAmountUint().String(),
		LockDurationSecs:    s.cfg.Staking.LockDurationSecs,
		StakePaused:         false,
	}
	if err := s.db.InitGlobalParams(ctx, params); err != nil {
		return fmt.Errorf("failed to init global params: %w", err)
	}
	return nil
}

// nowUnix returns the current ledger time in unix seconds.
func (s *Service) nowUnix() int64 {
	return s.now().Unix()
}

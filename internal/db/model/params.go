package model

import "cosmossdk.io/math"

const GlobalParamsCollection = "global_params"

// GlobalParamsID is the _id of the singleton parameters document.
const GlobalParamsID = "global_params"

// GlobalParamsDocument holds the owner identity and the staking policy knobs.
// Seeded from config on first start, afterwards mutated only through
// owner-authorized admin calls.
type GlobalParamsDocument struct {
	ID                  string `bson:"_id"`
	Owner               string `bson:"owner"`
	RequiredStakeAmount string `bson:"required_stake_amount"`
	LockDurationSecs    int64  `bson:"lock_duration_secs"`
	StakePaused         bool   `bson:"stake_paused"`
}

func (d *GlobalParamsDocument) RequiredStakeAmountUint() math.Uint {
	return math.NewUintFromString(d.RequiredStakeAmount)
}
